package seis

import "errors"

// ErrMisaligned indicates components with different sampling or length.
var ErrMisaligned = errors.New("seis: components are not aligned")
