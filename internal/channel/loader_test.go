package channel

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/tiff"
)

// createTestImageFile writes a uniform gray image in the requested format
// and returns its path.
func createTestImageFile(t *testing.T, dir, name string, width, height int, v uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	switch filepath.Ext(name) {
	case ".tif":
		err = tiff.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

func TestImageCache_LoadPNGAndTIFF(t *testing.T) {
	dir := t.TempDir()
	pngPath := createTestImageFile(t, dir, "slide.png", 6, 4, 90)
	tifPath := createTestImageFile(t, dir, "slide.tif", 5, 3, 150)

	cache := NewImageCache()

	tests := []struct {
		path   string
		w, h   int
		value  uint8
		format string
	}{
		{pngPath, 6, 4, 90, "png"},
		{tifPath, 5, 3, 150, "tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c, err := cache.Channel(tt.path, Gray)
			if err != nil {
				t.Fatalf("Channel failed: %v", err)
			}
			if c.Width() != tt.w || c.Height() != tt.h {
				t.Errorf("size: got %dx%d, want %dx%d", c.Width(), c.Height(), tt.w, tt.h)
			}
			if c.Get(0, 0) != tt.value {
				t.Errorf("value: got %d, want %d", c.Get(0, 0), tt.value)
			}

			info, err := LoadImageInfo(cache, tt.path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("format: got %q, want %q", info.Format, tt.format)
			}
			if info.FileSizeBytes <= 0 {
				t.Errorf("file size: got %d, want > 0", info.FileSizeBytes)
			}
		})
	}

	if cache.Len() != 2 {
		t.Errorf("cached images: got %d, want 2", cache.Len())
	}
	cache.Evict(pngPath)
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d, want 1", cache.Len())
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d, want 0", cache.Len())
	}
}

func TestImageCache_Errors(t *testing.T) {
	cache := NewImageCache()

	if _, err := cache.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("loading a missing file should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(bad); err == nil {
		t.Error("loading a non-image should fail")
	}
}

func TestImageCache_Concurrent(t *testing.T) {
	path := createTestImageFile(t, t.TempDir(), "slide.png", 8, 8, 10)
	cache := NewImageCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chans, err := cache.Channels(path)
			if err != nil {
				t.Errorf("Channels failed: %v", err)
				return
			}
			if len(chans) != len(Kinds) {
				t.Errorf("channels: got %d, want %d", len(chans), len(Kinds))
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("cached images: got %d, want 1", cache.Len())
	}
}
