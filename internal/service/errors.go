package service

import "errors"

var (
	ErrEntryNotFound = errors.New("cache entry not found")
	ErrEntryTooLarge = errors.New("cache entry exceeds size limit")
	ErrEmptyKey      = errors.New("cache key is empty")
)
