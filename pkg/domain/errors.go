package domain

import "errors"

// ErrNodeNotFound is returned when a path or step lookup does not resolve
// to a node in the tree.
var ErrNodeNotFound = errors.New("node not found")

// ErrRecordNotFound is returned when a record ID cannot be found in the store.
var ErrRecordNotFound = errors.New("record not found")

// ErrEmptyResponse is returned when the model produced no usable content.
var ErrEmptyResponse = errors.New("empty model response")
