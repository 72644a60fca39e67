package pipeline

import "errors"

// ErrConfiguration is returned by Validate and Run when options are out of
// range. No work is started in that case.
var ErrConfiguration = errors.New("pipeline: invalid configuration")
