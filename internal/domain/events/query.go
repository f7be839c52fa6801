package events

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	// maxWindowValue bounds page and limit individually so their
	// product (the offset) always fits in an int64.
	maxWindowValue = 1<<31 - 1
)

// QueryError reports an invalid listing parameter.
type QueryError struct {
	Field   string
	Message string
}

func (e QueryError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// allowedSortFields is the closed mapping of caller-visible sort keys.
// Unknown keys are rejected rather than silently falling back so sort
// behavior stays observable.
var allowedSortFields = map[string]bool{
	"name":     true,
	"date":     true,
	"location": true,
	"status":   true,
}

// ParseListQuery normalizes listing parameters into a ListQuery.
// Page values below 1 clamp to 1 and limit values below 1 substitute
// the default; values past maxWindowValue are rejected. A page is
// never unbounded and an offset is never negative.
func ParseListQuery(values url.Values) (ListQuery, error) {
	query := ListQuery{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Sort:  "date",
		Order: "asc",
	}

	page, err := parsePositiveInt(values, "page", DefaultPage)
	if err != nil {
		return query, err
	}
	query.Page = page

	limit, err := parsePositiveInt(values, "limit", DefaultLimit)
	if err != nil {
		return query, err
	}
	query.Limit = limit

	if sort := strings.TrimSpace(values.Get("sort")); sort != "" {
		if !allowedSortFields[sort] {
			return query, QueryError{Field: "sort", Message: "unsupported sort field"}
		}
		query.Sort = sort
	}

	if order := strings.TrimSpace(values.Get("order")); order != "" {
		switch order {
		case "asc", "desc":
			query.Order = order
		default:
			return query, QueryError{Field: "order", Message: "must be asc or desc"}
		}
	}

	query.Search = strings.TrimSpace(values.Get("search"))

	if status := strings.TrimSpace(values.Get("status")); status != "" {
		if !IsAllowedStatus(status) {
			return query, QueryError{Field: "status", Message: "unsupported status"}
		}
		query.Status = Status(status)
	}

	return query, nil
}

func parsePositiveInt(values url.Values, field string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, QueryError{Field: field, Message: "must be a number"}
	}
	if parsed < 1 {
		return fallback, nil
	}
	if parsed > maxWindowValue {
		return 0, QueryError{Field: field, Message: "out of range"}
	}
	return parsed, nil
}
