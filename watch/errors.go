package watch

import "errors"

// ErrInvalidTarget is returned when a target fails validation.
var ErrInvalidTarget = errors.New("watch: invalid target")

// ErrDuplicateTarget is returned when two targets share a name.
var ErrDuplicateTarget = errors.New("watch: duplicate target name")
