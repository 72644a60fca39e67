package imaging

import "errors"

var (
	// ErrInputDecode is returned when a source image cannot be opened or decoded.
	ErrInputDecode = errors.New("imaging: cannot decode input image")

	// ErrFrameIO is returned when a frame raster cannot be written or read back.
	ErrFrameIO = errors.New("imaging: frame i/o failed")
)
