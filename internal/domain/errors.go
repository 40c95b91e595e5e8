package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrDocumentNotPaid     = errors.New("document is not marked paid")
	ErrAlreadyPaid         = errors.New("document is already marked paid")
	ErrInvalidEdit         = errors.New("edit does not name a known form field")
)
