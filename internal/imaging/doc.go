// Package imaging handles the image I/O around the hue transform: decoding
// and caching source images, describing them, naming and persisting frames,
// and sampling individual pixels.
//
// Decoding and encoding go through github.com/disintegration/imaging, so
// sources may be PNG, JPEG, GIF (first frame), TIFF, BMP or WebP. Frames keep
// the source's format when it stores RGBA losslessly (PNG, TIFF, BMP) and are
// written as PNG otherwise.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the
// image bounds:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Frame Naming
//
// Frame h of a source named <base>.<ext> lives at <dir>/<h>_<base>.<ext>.
// The pattern is stable so external tools (ffmpeg among them) can pick the
// frames up by glob or printf pattern.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached images are shared
// and must not be modified; use ToNRGBA for a private copy.
//
// # Errors
//
// Source decoding failures wrap ErrInputDecode. Frame save and load
// failures wrap ErrFrameIO.
package imaging
