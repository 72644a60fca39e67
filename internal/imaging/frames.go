package imaging

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultFrameExt is used for frames of sources whose format cannot hold a
// shifted frame losslessly.
const DefaultFrameExt = "png"

// SplitName returns the base name of path up to its first dot and the
// lowercase extension after its last dot, without the dot. "dir/cat.v2.png"
// yields ("cat", "png"); a name without a dot yields an empty extension.
func SplitName(path string) (base, ext string) {
	name := filepath.Base(path)
	base = name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		base = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		ext = strings.ToLower(name[i+1:])
	}
	return base, ext
}

// FrameExt maps a source extension (with or without the leading dot) to the
// extension its frames are written with. Only formats that keep every RGBA
// value intact are reused: JPEG is lossy and GIF drops partial alpha and
// requantizes to a fixed palette, so those, and formats that cannot be
// encoded at all, fall back to DefaultFrameExt.
func FrameExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch f, err := imaging.FormatFromExtension(ext); {
	case err != nil, f == imaging.JPEG, f == imaging.GIF:
		return DefaultFrameExt
	}
	return ext
}

// FramePath returns the stable location of frame step for a source named
// base: "<dir>/<step>_<base>.<ext>". External tools rely on this pattern.
func FramePath(dir string, step int, base, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%s.%s", step, base, ext))
}

// ParseFrameName reports the step index encoded in a frame file name produced
// by FramePath for the given base and ext.
func ParseFrameName(name, base, ext string) (int, bool) {
	suffix := "_" + base + "." + ext
	if !strings.HasSuffix(name, suffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(name, suffix)
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	step, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return step, true
}

// SaveFrame encodes img to path, choosing the format from the extension.
func SaveFrame(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrFrameIO, path, err)
	}
	return nil
}

// LoadFrame decodes a previously saved frame.
func LoadFrame(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", ErrFrameIO, path, err)
	}
	return img, nil
}
