package ir

import "errors"

// ErrNotFound is returned by ledgers when an address has no stored record.
var ErrNotFound = errors.New("record not found")
