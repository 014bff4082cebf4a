package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/five82/imagestrip/internal/client"
	"github.com/five82/imagestrip/internal/manifest"
	"github.com/five82/imagestrip/internal/resize"
	"github.com/five82/imagestrip/internal/server"
	"github.com/five82/imagestrip/internal/strip"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := "manifest = \"" + filepath.Join(dir, "images.yaml") + "\"\n" +
		"log_dir = \"" + filepath.Join(dir, "logs") + "\"\n" +
		"cache_dir = \"" + filepath.Join(dir, "cache") + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResourceFor(t *testing.T) {
	abs, _ := filepath.Abs("pics/a.png")
	tests := []struct {
		arg  string
		want strip.Resource
	}{
		{"https://example.com/a.png", strip.URLResource("https://example.com/a.png")},
		{"HTTP://example.com/b.jpg", strip.URLResource("HTTP://example.com/b.jpg")},
		{"pics/a.png", strip.FileResource(abs)},
		{"/srv/c.webp", strip.FileResource("/srv/c.webp")},
	}
	for _, tt := range tests {
		got, err := resourceFor(tt.arg)
		if err != nil {
			t.Fatalf("resourceFor(%q) error: %v", tt.arg, err)
		}
		if got != tt.want {
			t.Fatalf("resourceFor(%q) = %+v, want %+v", tt.arg, got, tt.want)
		}
	}
	if _, err := resourceFor("  "); err == nil {
		t.Fatalf("expected error for empty location")
	}
}

func TestAddAppendsToManifest(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	if _, err := execute(t, "--config", cfgPath, "add", "/srv/a.png"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	out, err := execute(t, "--config", cfgPath, "add", "https://example.com/b.png", "/srv/c.png")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if !strings.Contains(out, "added 2 image(s)") || !strings.Contains(out, "(3 total)") {
		t.Fatalf("unexpected output %q", out)
	}

	got, err := manifest.Load(filepath.Join(dir, "images.yaml"))
	if err != nil {
		t.Fatalf("manifest.Load: %v", err)
	}
	want := []strip.Resource{
		strip.FileResource("/srv/a.png"),
		strip.URLResource("https://example.com/b.png"),
		strip.FileResource("/srv/c.png"),
	}
	if len(got) != len(want) {
		t.Fatalf("manifest = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("manifest[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAddRegistersIntoSession(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	picture := filepath.Join(dir, "wide.png")
	writePNG(t, picture, 400, 200)

	resizer, err := resize.New(filepath.Join(dir, "cache"), resize.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatalf("resize.New: %v", err)
	}
	srv, err := server.New(server.Config{
		Resizer:  resizer,
		AssetDir: resizer.Dir(),
		Strip:    strip.DefaultOptions(),
		Logger:   log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c, err := client.NewClient(ts.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	session, err := c.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	out, err := execute(t, "--config", cfgPath, "add", "--server", ts.URL, "--session", session.ID, picture)
	if err != nil {
		t.Fatalf("add --session: %v (%s)", err, out)
	}
	if !strings.Contains(out, "#0") || !strings.Contains(out, "(110x55)") {
		t.Fatalf("unexpected output %q", out)
	}

	status, err := c.FetchStatus(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("FetchStatus: %v", err)
	}
	if status.Images != 1 {
		t.Fatalf("images = %d, want 1", status.Images)
	}

	if _, err := execute(t, "--config", cfgPath, "add", "--server", ts.URL, "--session", session.ID, filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "view", "add"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("subcommand %q not found: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("missing --config flag")
	}
}
