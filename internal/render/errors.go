package render

import "errors"

// ErrFrameWrite is returned when a rendered frame cannot be persisted.
var ErrFrameWrite = errors.New("render: frame write failed")
