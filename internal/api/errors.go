package api

import "github.com/pkg/errors"

// ErrValidation marks malformed caller input. Never retried upstream.
var ErrValidation = errors.New("validation failed")

// ErrPersistence marks scraped data that could not be durably saved. The
// response carrying it still holds the scraped jobs.
var ErrPersistence = errors.New("persistence failed")
