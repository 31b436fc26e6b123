// Package pgutil translates pgx errors into domain errors.
package pgutil

import (
	"errors"

	"pos-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// MapError converts no-rows and well-known constraint errors to domain
// sentinels. Other errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return domain.ErrAlreadyExists
	case codeInvalidText:
		// malformed uuid in a lookup
		return domain.ErrNotFound
	case codeForeignKeyViolation:
		return domain.Validationf("%s", pgErr.Detail)
	}
	return err
}

// IsCheckViolation reports whether err is a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeCheckViolation
}
