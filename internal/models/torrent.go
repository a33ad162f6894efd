package models

import (
	"time"
)

// TorrentFile 表示种子中的一个文件
type TorrentFile struct {
	Path   string `json:"path" bson:"path"`
	Length int64  `json:"length" bson:"length"`
}

// TorrentSummary 表示搜索结果中的一个种子
type TorrentSummary struct {
	Name       string        `json:"name" bson:"name"`
	InfoHash   string        `json:"info_hash" bson:"info_hash"`
	FileCount  int           `json:"file_count" bson:"file_count"`
	TotalSize  int64         `json:"total_size" bson:"total_size"`
	CreateDate time.Time     `json:"create_date" bson:"create_date"`
	Files      []TorrentFile `json:"files,omitempty" bson:"files,omitempty"`
}

// SearchResponse 表示 /api/search 的响应
type SearchResponse struct {
	Results []TorrentSummary `json:"results"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// TotalPages 返回总页数，每页数量无效时为0
func (r *SearchResponse) TotalPages() int {
	if r.Total <= 0 || r.PerPage <= 0 {
		return 0
	}
	return int((r.Total + int64(r.PerPage) - 1) / int64(r.PerPage))
}
