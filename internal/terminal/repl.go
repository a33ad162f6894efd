package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"magnet-search-web/internal/search"
)

var log = logging.Logger("terminal")

// ErrQuit 用户退出
var ErrQuit = errors.New("quit")

const helpText = `/ <关键词>        搜索
n / p              下一页 / 上一页
g <页码>           跳转到指定页
s <字段> <顺序>    排序，字段 date|size|files，顺序 asc|desc
o <序号>           打开第 N 个结果
r                  重新搜索
h                  帮助
q                  退出`

// REPL 交互式搜索，每行一条命令
type REPL struct {
	ctrl   *search.Controller
	view   *View
	out    io.Writer
	prompt string
}

// NewREPL 创建交互式会话，view 须为 ctrl 所使用的视图
func NewREPL(ctrl *search.Controller, view *View, out io.Writer) *REPL {
	return &REPL{
		ctrl:   ctrl,
		view:   view,
		out:    out,
		prompt: "> ",
	}
}

// Run 逐行读取命令直到输入结束、ctx 结束或用户退出
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, r.prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := r.Exec(ctx, scanner.Text())
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case err != nil:
			r.view.alert.Fprintln(r.out, err)
		}
	}
}

// Exec 执行一条命令
func (r *REPL) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "/") {
		return searched(r.ctrl.SubmitSearch(ctx, strings.TrimPrefix(line, "/")))
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "q", "quit", "exit":
		return ErrQuit
	case "h", "help", "?":
		fmt.Fprintln(r.out, helpText)
		return nil
	case "r":
		return searched(r.ctrl.Search(ctx))
	case "n", "p":
		p := r.view.Pagination()
		target := p.Next
		if fields[0] == "p" {
			target = p.Prev
		}
		if target == 0 {
			return errors.New("没有更多页")
		}
		_, err := r.ctrl.GoToPage(ctx, target)
		return searched(err)
	case "g":
		if len(fields) != 2 {
			return errors.New("用法: g <页码>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Errorf("无效页码 %q", fields[1])
		}
		_, err = r.ctrl.GoToPage(ctx, n)
		return searched(err)
	case "s":
		if len(fields) != 3 {
			return errors.New("用法: s <字段> <顺序>")
		}
		return searched(r.ctrl.SelectSort(ctx, fields[1], fields[2]))
	case "o":
		if len(fields) != 2 {
			return errors.New("用法: o <序号>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Errorf("无效序号 %q", fields[1])
		}
		return r.ctrl.ActivateCard(ctx, n-1)
	default:
		return errors.Errorf("未知命令 %q，输入 h 查看帮助", fields[0])
	}
}

// searched 搜索失败已由视图显示，这里只记录日志
func searched(err error) error {
	if err != nil && !errors.Is(err, search.ErrSuperseded) {
		log.Debugf("搜索失败: %v", err)
	}
	return nil
}
