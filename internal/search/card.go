package search

import (
	"net/url"
	"strconv"
	"time"

	"magnet-search-web/internal/locale"
	"magnet-search-web/internal/models"
)

const bytesPerGB = 1073741824

// ActivationDelay 卡片点击后到跳转详情页之间的反馈延迟
const ActivationDelay = 150 * time.Millisecond

// Card 一条搜索结果的展示数据，Name 为原始文本，由视图负责转义
type Card struct {
	Name      string
	InfoHash  string
	FileCount int
	Size      string
	Date      string
}

// NewCard 将搜索结果转换为卡片
func NewCard(t models.TorrentSummary, loc *locale.Locale) Card {
	return Card{
		Name:      t.Name,
		InfoHash:  t.InfoHash,
		FileCount: t.FileCount,
		Size:      FormatGB(t.TotalSize),
		Date:      loc.FormatDate(t.CreateDate),
	}
}

// DetailURL 详情页地址
func (c Card) DetailURL() string {
	return DetailURL(c.InfoHash)
}

// MagnetURL 磁力链接
func (c Card) MagnetURL() string {
	return MagnetURL(c.InfoHash)
}

// FormatGB 将字节数格式化为保留两位小数的 GB 数值
func FormatGB(bytes int64) string {
	return strconv.FormatFloat(float64(bytes)/bytesPerGB, 'f', 2, 64)
}

// DetailURL 返回种子详情页地址 /torrent/<info_hash>
func DetailURL(infoHash string) string {
	return "/torrent/" + url.PathEscape(infoHash)
}

// MagnetURL 返回 magnet:?xt=urn:btih:<info_hash>
func MagnetURL(infoHash string) string {
	return "magnet:?xt=urn:btih:" + url.QueryEscape(infoHash)
}
