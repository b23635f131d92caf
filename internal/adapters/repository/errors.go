package repository

import "errors"

// Sentinel errors returned by stores.
var (
	ErrNotFound = errors.New("item not found")
	ErrEmptyKey = errors.New("bucket and key must not be empty")
	ErrClosed   = errors.New("store closed")
)
