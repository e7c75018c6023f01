// ABOUTME: Tests for asset fetchers
// ABOUTME: Tests path normalization, directory reads, HTTP download and caching
package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"audio/phonemes/s.wav", "/audio/phonemes/s.wav"},
		{"/audio/phonemes/s.wav", "/audio/phonemes/s.wav"},
		{"http://cdn.example.com/s.wav", "http://cdn.example.com/s.wav"},
		{"https://cdn.example.com/s.wav", "https://cdn.example.com/s.wav"},
		{"", "/"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.input); got != tt.expected {
			t.Errorf("NormalizePath(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestDirFetch(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "audio", "phonemes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "s.wav"), []byte("sss"), 0644); err != nil {
		t.Fatal(err)
	}

	d := NewDir(root)

	for _, p := range []string{"audio/phonemes/s.wav", "/audio/phonemes/s.wav"} {
		data, err := d.Fetch(context.Background(), p)
		if err != nil {
			t.Fatalf("fetch %s failed: %v", p, err)
		}
		if string(data) != "sss" {
			t.Errorf("expected 'sss', got %q", string(data))
		}
	}

	if !d.Exists("audio/phonemes/s.wav") {
		t.Error("expected asset to exist")
	}
	if d.Exists("audio/phonemes") {
		t.Error("expected directory not to count as an asset")
	}

	_, err := d.Fetch(context.Background(), "audio/phonemes/z.wav")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = d.Fetch(context.Background(), "https://example.com/s.wav")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for URL, got %v", err)
	}
}

func TestDirPathStaysInRoot(t *testing.T) {
	d := NewDir("/assets")
	got := d.Path("../../etc/passwd")
	if !strings.HasPrefix(got, filepath.FromSlash("/assets/")) {
		t.Errorf("expected path under root, got %s", got)
	}
}

func TestDirCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDir(t.TempDir()).Fetch(ctx, "a.wav"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPFetchAndCache(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/audio/phonemes/m.wav" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("mmm"))
	}))
	defer server.Close()

	f, err := NewHTTPFetcher(server.URL+"/", WithCacheDir(t.TempDir()))
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	for i := 0; i < 2; i++ {
		data, err := f.Fetch(context.Background(), "audio/phonemes/m.wav")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if string(data) != "mmm" {
			t.Errorf("expected 'mmm', got %q", string(data))
		}
	}

	if requests.Load() != 1 {
		t.Errorf("expected 1 request with caching, got %d", requests.Load())
	}
}

func TestHTTPNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	f, err := NewHTTPFetcher(server.URL, WithCacheDir(""))
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Fetch(context.Background(), "audio/phonemes/x.wav")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f, err := NewHTTPFetcher(server.URL, WithCacheDir(""))
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Fetch(context.Background(), "audio/phonemes/s.wav")
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("expected HTTP 500 not to be reported as not found")
	}
}

func TestHTTPURL(t *testing.T) {
	f, err := NewHTTPFetcher("https://cdn.example.com/app/", WithCacheDir(""))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"audio/words/cat.mp3", "https://cdn.example.com/app/audio/words/cat.mp3"},
		{"/audio/words/cat.mp3", "https://cdn.example.com/app/audio/words/cat.mp3"},
		{"https://other.example.com/x.wav", "https://other.example.com/x.wav"},
	}
	for _, tt := range tests {
		if got := f.URL(tt.input); got != tt.expected {
			t.Errorf("URL(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://cdn.example.com/s.wav?v=1")
	b := CacheKey("https://cdn.example.com/s.wav?v=1")
	c := CacheKey("https://cdn.example.com/s.wav?v=2")

	if a != b {
		t.Error("expected stable cache key")
	}
	if a == c {
		t.Error("expected different URLs to get different keys")
	}
	if !strings.HasSuffix(a, ".wav") {
		t.Errorf("expected .wav extension, got %s", a)
	}
	if len(a) != 64+len(".wav") {
		t.Errorf("expected 64 hex chars plus extension, got %d", len(a))
	}
}
