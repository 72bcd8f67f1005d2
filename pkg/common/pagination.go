package common

import (
	"net/http"
	"strconv"
)

// maxPageSize caps requested limits
const maxPageSize = 500

// PageParams represents limit/offset pagination parameters from a
// request. Nil fields mean the parameter was absent.
type PageParams struct {
	Limit          *int
	Offset         *int
	IncludeDeleted bool
}

// ExtractPageParams extracts pagination parameters from request
func ExtractPageParams(r *http.Request) PageParams {
	var params PageParams

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			if v > maxPageSize {
				v = maxPageSize
			}
			params.Limit = &v
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			params.Offset = &v
		}
	}

	params.IncludeDeleted = r.URL.Query().Get("include_deleted") == "true"

	return params
}
