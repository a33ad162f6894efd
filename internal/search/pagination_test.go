package search

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// labels 将分页项转成便于比较的字符串
func labels(p Pagination) []string {
	out := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		switch item.Kind {
		case ItemEllipsis:
			out = append(out, "...")
		case ItemCurrent:
			out = append(out, "["+strconv.Itoa(item.Number)+"]")
		default:
			out = append(out, strconv.Itoa(item.Number))
		}
	}
	return out
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	t.Run("nothing for a single page", func(tt *testing.T) {
		assert.True(tt, Paginate(1, 1).Empty())
		assert.True(tt, Paginate(1, 0).Empty())
	})

	t.Run("window centred on the current page", func(tt *testing.T) {
		p := Paginate(5, 10)
		assert.Equal(tt, []string{"1", "...", "3", "4", "[5]", "6", "7", "...", "10"}, labels(p))
		assert.Equal(tt, 4, p.Prev)
		assert.Equal(tt, 6, p.Next)
	})

	t.Run("first page has no previous and no leading ellipsis", func(tt *testing.T) {
		p := Paginate(1, 10)
		assert.Equal(tt, 0, p.Prev)
		assert.Equal(tt, []string{"[1]", "2", "3", "...", "10"}, labels(p))
	})

	t.Run("last page disables next", func(tt *testing.T) {
		p := Paginate(10, 10)
		assert.Equal(tt, 0, p.Next)
		assert.Equal(tt, 9, p.Prev)
		assert.Equal(tt, []string{"1", "...", "8", "9", "[10]"}, labels(p))
	})

	t.Run("no ellipsis when the window touches the edge page", func(tt *testing.T) {
		assert.Equal(tt, []string{"1", "2", "[3]", "4", "5"}, labels(Paginate(3, 5)))
		assert.Equal(tt, []string{"1", "2", "3", "[4]", "5", "6"}, labels(Paginate(4, 6)))
	})

	t.Run("out of range current page is clamped", func(tt *testing.T) {
		p := Paginate(40, 4)
		assert.Equal(tt, 4, p.Current)
		assert.Equal(tt, []string{"1", "2", "3", "[4]"}, labels(p))

		assert.Equal(tt, 1, Paginate(-2, 4).Current)
	})

	t.Run("exactly one current item", func(tt *testing.T) {
		for total := 2; total <= 12; total++ {
			for cur := 1; cur <= total; cur++ {
				current := 0
				for _, item := range Paginate(cur, total).Items {
					if item.Kind == ItemCurrent {
						current++
						assert.Equal(tt, cur, item.Number)
					}
				}
				assert.Equal(tt, 1, current, "cur=%d total=%d", cur, total)
			}
		}
	})
}
