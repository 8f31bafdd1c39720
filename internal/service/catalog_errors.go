package service

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// lookupError maps a repository lookup failure to NOT_FOUND or INTERNAL_ERROR.
func lookupError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidText {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
}

// writeError maps constraint violations on insert, update and delete.
func writeError(err error, action, entity string) error {
	switch pqCode(err) {
	case pqUniqueViolation:
		return appErrors.Clone(appErrors.ErrConflict, entity+" already exists")
	case pqForeignKeyViolation:
		if action == "delete" {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, entity+" is still referenced")
		}
		return appErrors.Clone(appErrors.ErrValidation, entity+" references a missing record")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action+" "+entity)
}
