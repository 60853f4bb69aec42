package http

import (
	"net/http"
	"strconv"

	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
)

// UserIDHeader carries the authenticated caller identity. Authentication
// itself happens upstream; the service trusts this header.
const UserIDHeader = "X-User-ID"

func ExtractUserID(r *http.Request) (string, error) {
	userID := r.Header.Get(UserIDHeader)
	if userID == "" {
		return "", apperrors.InvalidInput("missing " + UserIDHeader + " header")
	}
	return userID, nil
}

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}
