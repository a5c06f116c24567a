package validators

import (
	"net/http"
	"strconv"

	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/pagination"
)

// PaginationParams reads limit and cursor query parameters.
func PaginationParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}

	rawLimit := r.URL.Query().Get("limit")
	if rawLimit == "" {
		return params, nil
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit < 0 {
		return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer")
	}
	params.Limit = limit
	return params, nil
}
