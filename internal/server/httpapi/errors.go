package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tenantive/jobboard/internal/common"
)

// apiError is the wire shape of every error response.
type apiError struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

var (
	errInvalidTenant = apiError{
		Status: strconv.Itoa(http.StatusBadRequest),
		Code:   "1",
		Title:  "Invalid tenant id",
		Detail: "The given tenant-id doesn't exist in the system.",
	}
	errRelationExists = apiError{
		Status: strconv.Itoa(http.StatusBadRequest),
		Code:   "2",
		Title:  "Relation exists",
		Detail: "The given relation already exists in the system.",
	}
	errInvalidID = apiError{
		Status: strconv.Itoa(http.StatusNotFound),
		Code:   "3",
		Title:  "Invalid id value",
		Detail: "Given id does not exist.",
	}
	errInternal = apiError{
		Status: strconv.Itoa(http.StatusInternalServerError),
		Code:   "0",
		Title:  "Internal error",
		Detail: "The request could not be processed.",
	}
)

// classify maps a service error to its response. Unclassified errors come
// back as the internal error without leaking storage detail to the client.
func classify(err error) (int, apiError) {
	switch {
	case errors.Is(err, common.ErrInvalidTenantID):
		return http.StatusBadRequest, errInvalidTenant
	case errors.Is(err, common.ErrRelationExists):
		return http.StatusBadRequest, errRelationExists
	case errors.Is(err, common.ErrInvalidReference), errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, errInvalidID
	default:
		return http.StatusInternalServerError, errInternal
	}
}
