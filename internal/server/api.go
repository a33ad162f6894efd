package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"

	"magnet-search-web/internal/database"
	"magnet-search-web/internal/search"
)

// apiSearchQuery /api/search 的查询参数
type apiSearchQuery struct {
	Query string `query:"q" mod:"trim"`
	Page  string `query:"page" mod:"trim"`
	Sort  string `query:"sort" mod:"trim,lcase" validate:"omitempty,oneof=date size files"`
	Order string `query:"order" mod:"trim,lcase" default:"desc" validate:"oneof=asc desc"`
}

// apiSearchHandler 处理API搜索请求
func (s *Server) apiSearchHandler(w http.ResponseWriter, r *http.Request) {
	var params apiSearchQuery
	if err := s.binder.bindQuery(r, &params); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := database.SearchTorrents(r.Context(), s.db, database.SearchRequest{
		Query:    params.Query,
		Sort:     params.Sort,
		Order:    params.Order,
		Page:     search.CoercePage(params.Page),
		PageSize: s.pageSize,
	})
	if err != nil {
		s.writeError(w, errors.Wrap(err, "搜索失败"))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// apiTorrentHandler 处理单个种子查询
func (s *Server) apiTorrentHandler(w http.ResponseWriter, r *http.Request) {
	torrent, err := database.GetTorrentByInfoHash(r.Context(), s.db, r.PathValue("infoHash"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, torrent)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var bindErr *bindError
	switch {
	case errors.As(err, &bindErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": bindErr.msg})
	case errors.Is(err, database.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		log.Errorf("%+v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("写入响应失败: %v", err)
	}
}
