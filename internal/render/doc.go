// Package render produces the frames of a hue-cycling animation.
//
// For a source image and a step count N, frame h is the source with every
// pixel's hue rotated by h*360/N degrees. Frames are computed independently:
// a bounded pool of workers takes whole frames, and each frame's rows are
// split across goroutines with bild's parallel.Line. Workers only ever write
// into the frame they allocated, and the source is never modified.
//
// # Alpha Matting
//
// Any pixel that is not fully opaque is written fully transparent. Partial
// transparency in the source therefore collapses to a hard mask in every
// frame, which keeps the GIF output, where transparency is binary, consistent
// with the persisted frames.
//
// # Persistence
//
// Every frame is saved as <dir>/<h>_<base>.<ext> before it counts as
// complete. Render returns only after all frames are on disk, so callers can
// start encoding as soon as it returns without further synchronization.
package render
