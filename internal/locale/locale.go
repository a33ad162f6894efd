// Package locale 根据 Accept-Language 选择界面语言，提供日期格式与界面文案
package locale

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// 界面文案的键，英文原文即为键
const (
	MsgResultStats  = "Found %d results, page %d"
	MsgNoResults    = "No results found"
	MsgSearchFailed = "Search failed: %v"
	MsgLoading      = "Loading..."
	MsgPrevious     = "Previous"
	MsgNext         = "Next"
	MsgFileCount    = "Files: %d"
	MsgDetails      = "Details"
	MsgMagnet       = "Magnet link"
	MsgUnknownDate  = "Unknown date"
	MsgTip          = "Click a card to open its details"
	MsgSearch       = "Search"
	MsgPlaceholder  = "Search torrents..."
	MsgSortNewest   = "Newest"
	MsgSortOldest   = "Oldest"
	MsgSortLargest  = "Largest"
	MsgSortSmallest = "Smallest"
	MsgSortFiles    = "Most files"
	MsgFiles        = "Files"
	MsgNotFound     = "Torrent not found"
	MsgTitle        = "Magnet Search"
)

var chinese = map[string]string{
	MsgResultStats:  "找到 %d 个结果，第 %d 页",
	MsgNoResults:    "未找到相关结果",
	MsgSearchFailed: "搜索出错: %v",
	MsgLoading:      "加载中...",
	MsgPrevious:     "上一页",
	MsgNext:         "下一页",
	MsgFileCount:    "文件数: %d",
	MsgDetails:      "查看详情",
	MsgMagnet:       "磁力链接",
	MsgUnknownDate:  "未知时间",
	MsgTip:          "点击卡片查看详情",
	MsgSearch:       "搜索",
	MsgPlaceholder:  "搜索种子...",
	MsgSortNewest:   "最新",
	MsgSortOldest:   "最早",
	MsgSortLargest:  "最大",
	MsgSortSmallest: "最小",
	MsgSortFiles:    "文件最多",
	MsgFiles:        "文件列表",
	MsgNotFound:     "未找到该种子",
	MsgTitle:        "磁力搜索",
}

// 支持的语言，第一个为缺省语言
var supported = []struct {
	tag        language.Tag
	dateLayout string
}{
	{language.SimplifiedChinese, "2006/1/2"},
	{language.AmericanEnglish, "1/2/2006"},
}

var (
	matcher  language.Matcher
	messages catalog.Catalog
)

func init() {
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		tags = append(tags, s.tag)
	}
	matcher = language.NewMatcher(tags)

	builder := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	for key, msg := range chinese {
		if err := builder.SetString(language.SimplifiedChinese, key, msg); err != nil {
			panic(err)
		}
	}
	messages = builder
}

// Locale 一种界面语言
type Locale struct {
	Tag        language.Tag
	dateLayout string
	printer    *message.Printer
}

func newLocale(index int) *Locale {
	s := supported[index]
	return &Locale{
		Tag:        s.tag,
		dateLayout: s.dateLayout,
		printer:    message.NewPrinter(s.tag, message.Catalog(messages)),
	}
}

// Default 返回缺省语言（简体中文）
func Default() *Locale {
	return newLocale(0)
}

// Match 根据 Accept-Language、语言标签（如 "en-US"、"zh-CN"）或 POSIX 取值（如 "en_US.UTF-8"）选择语言
func Match(preferences ...string) *Locale {
	var tags []language.Tag
	for _, pref := range preferences {
		parsed, _, err := language.ParseAcceptLanguage(posixLocale(pref))
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return Default()
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default()
	}
	return newLocale(index)
}

// posixLocale 将 LANG 形式的 en_US.UTF-8、zh_CN@stroke 转为 en-US、zh-CN，C 与 POSIX 视为未设置
func posixLocale(s string) string {
	if strings.ContainsAny(s, ",;") {
		return s
	}
	s, _, _ = strings.Cut(strings.TrimSpace(s), ".")
	s, _, _ = strings.Cut(s, "@")
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}

// Sprintf 按当前语言格式化文案
func (l *Locale) Sprintf(key string, args ...interface{}) string {
	return l.printer.Sprintf(key, args...)
}

// T 返回不带参数的文案
func (l *Locale) T(key string) string {
	return l.printer.Sprintf(key)
}

// FormatDate 按当前语言格式化日期
func (l *Locale) FormatDate(t time.Time) string {
	if t.IsZero() {
		return l.T(MsgUnknownDate)
	}
	return t.Format(l.dateLayout)
}
