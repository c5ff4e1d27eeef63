package services

import "errors"

// ErrNotOwner is returned when a user tries to mutate content they do not own.
var ErrNotOwner = errors.New("not authorized to modify this resource")
