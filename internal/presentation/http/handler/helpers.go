package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/period"
)

// parseOptionalID parses an optional UUID query or body value
func parseOptionalID(field, s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperror.NewFieldError(field, "must be a valid UUID")
	}
	return &id, nil
}

// parseOptionalDate parses YYYY-MM-DD or RFC3339, returning nil for empty input
func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := period.ParseDate(s)
	if err != nil {
		return nil, apperror.NewFieldError(field, "must be a date in YYYY-MM-DD or RFC3339 format")
	}
	return &t, nil
}

// parseDateOr parses an optional date, falling back to def
func parseDateOr(field, s string, def time.Time) (time.Time, error) {
	t, err := parseOptionalDate(field, s)
	if err != nil || t == nil {
		return def, err
	}
	return *t, nil
}

// parseDateRange parses an optional start/end pair; both or neither must be given
func parseDateRange(startField, start, endField, end string) (*time.Time, *time.Time, error) {
	from, err := parseOptionalDate(startField, start)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseOptionalDate(endField, end)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, apperror.NewFieldError(endField, "must not be before "+startField)
	}
	return from, to, nil
}
