package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

func TestFetchCachesOnDisk(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	c := New(t.TempDir())

	first, err := c.Fetch(context.Background(), srv.URL, "/works/OL45883W")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("file content: %q", data)
	}

	second, err := c.Fetch(context.Background(), srv.URL, "/works/OL45883W")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("paths differ: %q vs %q", first, second)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, repeat fetch should use the cached file", got)
	}
}

func TestFetchEmptyInputs(t *testing.T) {
	c := New(t.TempDir())
	if path, err := c.Fetch(context.Background(), "", "id"); err != nil || path != "" {
		t.Errorf("empty url: got %q, %v", path, err)
	}
	if path, err := c.Fetch(context.Background(), "http://example/c.jpg", ""); err != nil || path != "" {
		t.Errorf("empty identifier: got %q, %v", path, err)
	}
}

func TestFetchErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(t.TempDir())
	if _, err := c.Fetch(context.Background(), srv.URL, "missing"); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if _, err := os.Stat(c.Path("missing")); !os.IsNotExist(err) {
		t.Errorf("failed fetch must not leave a cache file, stat err %v", err)
	}
}

func TestAssetName(t *testing.T) {
	c := New(t.TempDir())
	if got := c.AssetName(""); got != "" {
		t.Errorf("empty path: %q", got)
	}
	if got := c.AssetName("/some/where/else.jpg"); got != "" {
		t.Errorf("missing file should yield empty, got %q", got)
	}

	target := c.Path("known")
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	want := target[len(c.Dir)+1:]
	if got := c.AssetName(target); got != want {
		t.Errorf("asset name: got %q, want %q", got, want)
	}
}
