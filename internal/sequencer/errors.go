package sequencer

import "errors"

// ErrEncode is returned when the animation cannot be assembled or written.
var ErrEncode = errors.New("sequencer: encode failed")
