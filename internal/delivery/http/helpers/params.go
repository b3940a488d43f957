package helpers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// QueryTimeLayout is the space-separated form accepted next to RFC 3339. It is read as UTC.
const QueryTimeLayout = "2006-01-02 15:04:05"

// PathID parses the named path value as a positive int64. On failure it writes a
// 400 and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	return parseID(w, name, r.PathValue(name))
}

// QueryID is PathID for a query parameter.
func QueryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	return parseID(w, name, r.URL.Query().Get(name))
}

func parseID(w http.ResponseWriter, name, raw string) (int64, bool) {
	if raw == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing "+name)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}

// QueryIDs collects positive ids from a query parameter given repeatedly, comma-separated,
// or both. An absent parameter yields nil.
func QueryIDs(w http.ResponseWriter, r *http.Request, name string) ([]int64, bool) {
	var ids []int64
	for _, raw := range queryList(r, name) {
		id, ok := parseID(w, name, raw)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// QueryTime parses an optional RFC 3339 or QueryTimeLayout timestamp. An absent parameter
// yields nil.
func QueryTime(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse(QueryTimeLayout, raw)
	}
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest,
			fmt.Sprintf("%s must be RFC 3339 or %q", name, QueryTimeLayout))
		return nil, false
	}
	t = t.UTC()
	return &t, true
}

func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
