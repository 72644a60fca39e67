package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage writes a solid PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	return writePNG(t, filepath.Join(t.TempDir(), "test-image.png"), createInMemoryImage(width, height, c))
}

func writePNG(t *testing.T, path string, img image.Image) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	// First load
	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if !errors.Is(err, ErrInputDecode) {
		t.Errorf("Load should fail with ErrInputDecode, got %v", err)
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()

	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := cache.Load(path)
	if !errors.Is(err, ErrInputDecode) {
		t.Errorf("Load should fail with ErrInputDecode, got %v", err)
	}

	cache.mu.RLock()
	_, cached := cache.images[path]
	cache.mu.RUnlock()
	if cached {
		t.Error("failed decode should not be cached")
	}
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()

	cache.mu.RLock()
	count := len(cache.images)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", count)
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 0, 255, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(imgPath)

	cache.mu.RLock()
	_, exists := cache.images[imgPath]
	cache.mu.RUnlock()

	if exists {
		t.Error("Evict did not remove image from cache")
	}

	// Should not panic
	cache.Evict("/nonexistent/path")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("size: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FrameExt != "png" {
		t.Errorf("FrameExt: got %s, want png", info.FrameExt)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_FormatDetection(t *testing.T) {
	cache := NewImageCache()
	dir := t.TempDir()

	tests := []struct {
		ext      string
		format   string
		frameExt string
	}{
		{".png", "png", "png"},
		{".PNG", "png", "png"},
		{".jpg", "jpeg", "png"},
		{".jpeg", "jpeg", "png"},
		{".gif", "gif", "png"},
		{".tiff", "tiff", "tiff"},
		{".bmp", "bmp", "bmp"},
		{".webp", "webp", "png"},
		{".xyz", "unknown", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			// Decoding sniffs content, so a PNG under any extension loads.
			path := writePNG(t, filepath.Join(dir, "test-format"+tt.ext), image.NewRGBA(image.Rect(0, 0, 10, 10)))

			info, err := LoadImageInfo(cache, path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}

			if info.Format != tt.format {
				t.Errorf("Format for %s: got %s, want %s", tt.ext, info.Format, tt.format)
			}
			if info.FrameExt != tt.frameExt {
				t.Errorf("FrameExt for %s: got %s, want %s", tt.ext, info.FrameExt, tt.frameExt)
			}
		})
	}
}

func TestLoadImageInfo_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := LoadImageInfo(cache, "/nonexistent/image.png"); err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}

func TestFit(t *testing.T) {
	img := createInMemoryImage(200, 100, color.RGBA{10, 20, 30, 255})

	tests := []struct {
		name  string
		max   int
		wantW int
		wantH int
	}{
		{"disabled", 0, 200, 100},
		{"already fits", 300, 200, 100},
		{"exact", 200, 200, 100},
		{"downscale keeps aspect", 50, 50, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Fit(img, tt.max).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}

	if Fit(img, 0) != img {
		t.Error("Fit with maxSize 0 should return the input unchanged")
	}
}

func TestToNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	// Premultiplied half-transparent red.
	src.SetRGBA(6, 6, color.RGBA{128, 0, 0, 128})

	got := ToNRGBA(src)

	if got.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds: got %v, want (0,0)-(3,2)", got.Bounds())
	}
	c := got.NRGBAAt(1, 1)
	if c.R != 255 || c.A != 128 {
		t.Errorf("straight alpha: got %v, want R=255 A=128", c)
	}
}
