// Package sequencer assembles rendered frames into a looping animated GIF.
//
// A Sequence lists frames in step order, each with the same display delay.
// Encoder.Encode streams the frames back from disk one at a time through
// github.com/NathanBaulch/gifx. Each frame gets its own palette from the
// colors it actually contains (MedianCut), always with one fully transparent
// entry, and the file carries the NETSCAPE2.0 extension so it repeats
// forever, even with a single frame. Frames are written in Sequence order
// only; reordering them would break the color rotation.
//
// The artifact is replaced, never appended to: an existing file at the
// destination is removed before encoding starts, and the new file is moved
// into place only once it has been completely written.
package sequencer
