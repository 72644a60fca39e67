// Package pipeline runs a complete hue-cycle job: validate options, decode
// the source, render and persist every frame, then encode the GIF.
//
// The two phases are separated by a full barrier. Render returns only after
// every frame is on disk, and only then does the encoder read them back in
// step order. Errors from either phase end the run immediately:
//
//   - ErrConfiguration: options out of range, nothing touched.
//   - imaging.ErrInputDecode: the source could not be decoded.
//   - render.ErrFrameWrite: a frame could not be persisted.
//   - sequencer.ErrEncode: the GIF could not be assembled or written.
//
// Re-running with the same options replaces the previous frames and GIF.
package pipeline
