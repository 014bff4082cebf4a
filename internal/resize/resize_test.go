package resize

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/five82/imagestrip/internal/strip"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, encodePNG(t, w, h), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	svc, err := New(filepath.Join(t.TempDir(), "cache"), opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return svc
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"already fits", 80, 60, 110, 110, 80, 60},
		{"landscape", 400, 200, 110, 110, 110, 55},
		{"portrait", 300, 600, 110, 110, 55, 110},
		{"exact box", 110, 110, 110, 110, 110, 110},
		{"thin strip keeps one pixel", 10000, 10, 100, 100, 100, 1},
		{"degenerate", 0, 10, 100, 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("Fit(%d,%d,%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResize_FileScalesIntoCache(t *testing.T) {
	svc := newService(t)
	src := writePNG(t, t.TempDir(), "wide.png", 400, 200)

	asset, err := svc.Resize(context.Background(), strip.FileResource(src), 110, 110)
	if err != nil {
		t.Fatalf("Resize returned error: %v", err)
	}
	if asset.Width != 110 || asset.Height != 55 {
		t.Fatalf("asset size = %dx%d, want 110x55", asset.Width, asset.Height)
	}
	if !strings.HasPrefix(asset.Locator, "/assets/") {
		t.Fatalf("Locator = %q, want /assets/ prefix", asset.Locator)
	}

	file, err := os.Open(filepath.Join(svc.Dir(), strings.TrimPrefix(asset.Locator, "/assets/")))
	if err != nil {
		t.Fatalf("scaled asset missing: %v", err)
	}
	defer file.Close()
	cfg, err := png.DecodeConfig(file)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 110 || cfg.Height != 55 {
		t.Fatalf("stored asset = %dx%d, want 110x55", cfg.Width, cfg.Height)
	}
}

func TestResize_SmallImageNotEnlarged(t *testing.T) {
	svc := newService(t)
	src := writePNG(t, t.TempDir(), "small.png", 30, 20)

	asset, err := svc.Resize(context.Background(), strip.FileResource(src), 110, 110)
	if err != nil {
		t.Fatalf("Resize returned error: %v", err)
	}
	if asset.Width != 30 || asset.Height != 20 {
		t.Fatalf("asset size = %dx%d, want 30x20", asset.Width, asset.Height)
	}
}

func TestResize_MissingAndCorruptSources(t *testing.T) {
	svc := newService(t)
	dir := t.TempDir()

	_, err := svc.Resize(context.Background(), strip.FileResource(filepath.Join(dir, "nope.png")), 110, 110)
	if !errors.Is(err, strip.ErrAssetUnavailable) {
		t.Fatalf("missing file error = %v, want ErrAssetUnavailable", err)
	}

	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err = svc.Resize(context.Background(), strip.FileResource(corrupt), 110, 110)
	if !errors.Is(err, strip.ErrAssetUnavailable) {
		t.Fatalf("corrupt file error = %v, want ErrAssetUnavailable", err)
	}
}

func TestResize_URLSources(t *testing.T) {
	body := encodePNG(t, 220, 220)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	svc := newService(t, WithHTTPClient(server.Client()))

	asset, err := svc.Resize(context.Background(), strip.URLResource(server.URL+"/ok.png"), 110, 100)
	if err != nil {
		t.Fatalf("Resize returned error: %v", err)
	}
	if asset.Width != 100 || asset.Height != 100 {
		t.Fatalf("asset size = %dx%d, want 100x100", asset.Width, asset.Height)
	}

	_, err = svc.Resize(context.Background(), strip.URLResource(server.URL+"/missing.png"), 110, 110)
	if !errors.Is(err, strip.ErrAssetUnavailable) || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("404 error = %v, want ErrAssetUnavailable mentioning HTTP 404", err)
	}
}

func TestResize_MemoizesUntilCleared(t *testing.T) {
	svc := newService(t)
	src := writePNG(t, t.TempDir(), "img.png", 200, 100)
	res := strip.FileResource(src)

	first, err := svc.Resize(context.Background(), res, 110, 110)
	if err != nil {
		t.Fatalf("Resize returned error: %v", err)
	}
	if err := os.Remove(src); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	second, err := svc.Resize(context.Background(), res, 110, 110)
	if err != nil {
		t.Fatalf("cached Resize returned error: %v", err)
	}
	if second != first {
		t.Fatalf("cached asset = %#v, want %#v", second, first)
	}

	svc.ClearCache()
	if _, err := svc.Resize(context.Background(), res, 110, 110); !errors.Is(err, strip.ErrAssetUnavailable) {
		t.Fatalf("Resize after ClearCache error = %v, want ErrAssetUnavailable", err)
	}
}

func TestResize_RejectsNonPositiveBounds(t *testing.T) {
	svc := newService(t)
	_, err := svc.Resize(context.Background(), strip.FileResource("x"), 0, 10)
	if !errors.Is(err, strip.ErrInvalidConfiguration) {
		t.Fatalf("error = %v, want ErrInvalidConfiguration", err)
	}
}
