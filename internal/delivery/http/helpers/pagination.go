package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"explorewithme/internal/domain"
)

// List windows default to the first ten rows; size is capped.
const (
	DefaultFrom = 0
	DefaultSize = 10
	MaxSize     = 100
)

// ParsePagination reads the from/size window from the query string. A negative from or a
// non-positive size is rejected with 400. Sizes above MaxSize are capped.
func ParsePagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	q := r.URL.Query()
	params := domain.PaginationParams{From: DefaultFrom, Size: DefaultSize}
	if s := q.Get("from"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("from must be a non-negative integer, got %q", s))
			return params, false
		}
		params.From = v
	}
	if s := q.Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("size must be a positive integer, got %q", s))
			return params, false
		}
		params.Size = min(v, MaxSize)
	}
	return params, true
}

// PaginationMeta describes the window returned by a list endpoint.
// swagger:model PaginationMeta
type PaginationMeta struct {
	From    int  `json:"from"`
	Size    int  `json:"size"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

func NewPaginationMeta(params domain.PaginationParams, total int) PaginationMeta {
	return PaginationMeta{
		From:    params.From,
		Size:    params.Size,
		Total:   total,
		HasMore: params.From+params.Size < total,
	}
}
