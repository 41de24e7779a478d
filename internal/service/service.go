// Package service implements the back-office use cases on top of the
// repositories and object storage.
package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrLimitReached       = errors.New("limit reached")
	ErrInUse              = errors.New("is in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrReaderNil          = errors.New("reader is nil")
)

// Pagination bounds shared by every list.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Filters accepted by list and export use cases.
type (
	ProductFilter     = repository.ProductFilter
	OrderFilter       = repository.OrderFilter
	CustomerFilter    = repository.CustomerFilter
	TransactionFilter = repository.TransactionFilter
	UserFilter        = repository.UserFilter
	DateRange         = repository.DateRange
)

// ListResult is the service-level DTO for paginated lists.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

func pageQuery(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

// everything is the page used by exports.
var everything = repository.PageQuery{}

// translate maps repository errors onto service sentinels, prefixed by what.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s %w", what, ErrConflict)
	case errors.Is(err, repository.ErrReferenced):
		return fmt.Errorf("%s %w", what, ErrInUse)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(model.DateLayout, strings.TrimSpace(s))
}

var nowFunc = func() time.Time { return time.Now().UTC() }
