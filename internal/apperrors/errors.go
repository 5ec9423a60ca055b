package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrRateSourceExhausted indicates that every configured rate endpoint failed
// for a single fetch. No partial data accompanies this error.
var ErrRateSourceExhausted = errors.New("all rate endpoints exhausted")

// ErrNoBaseCurrency indicates that no currency row carries the default flag.
// Rate reconciliation cannot proceed without a base currency.
var ErrNoBaseCurrency = errors.New("no base currency configured")
