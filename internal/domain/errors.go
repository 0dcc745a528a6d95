package domain

import "errors"

var (
	ErrNotFoundLocally   = errors.New("not found locally")
	ErrNoFilesAvailable  = errors.New("no files available")
	ErrNoDownloadURL     = errors.New("no download url available")
	ErrOwnershipConflict = errors.New("file already owned by another item")
	ErrTransportFailure  = errors.New("transport failure")
	ErrItemNotFound      = errors.New("item not found")
	ErrAuthRequired      = errors.New("authentication required")
	ErrGameDirNotSet     = errors.New("game directory not set")
	ErrInvalidPath       = errors.New("path escapes game directory")
	ErrInvalidConfig     = errors.New("invalid configuration")
)
