package storage

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

func TestDiskStore_SaveAndOpen(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	path, err := store.Save(context.Background(), strings.NewReader("contenido"), "factura.pdf")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(path, "_factura.pdf") {
		t.Errorf("stored name must keep the original suffix: %s", path)
	}

	f, err := store.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	data, _ := io.ReadAll(f)
	if string(data) != "contenido" {
		t.Errorf("content = %q", data)
	}
}

func TestDiskStore_UniqueNames(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir(), 0)

	a, _ := store.Save(context.Background(), strings.NewReader("a"), "factura.pdf")
	b, _ := store.Save(context.Background(), strings.NewReader("b"), "factura.pdf")
	if a == b {
		t.Errorf("same original name must not collide: %s", a)
	}
}

func TestDiskStore_MaxSize(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewDiskStore(dir, 4)

	if _, err := store.Save(context.Background(), strings.NewReader("too large"), "f.pdf"); err == nil {
		t.Fatal("expected error for oversized upload")
	}

	// The partial file must not be left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty dir, found %d entries", len(entries))
	}
}

func TestDiskStore_Remove(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir(), 0)

	path, _ := store.Save(context.Background(), strings.NewReader("x"), "f.pdf")
	if err := store.Remove(context.Background(), path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still present after remove")
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"factura.pdf":        "factura.pdf",
		"../../etc/passwd":   "passwd",
		"..factura.pdf":      "factura.pdf",
		"":                   "archivo",
		"...":                "archivo",
		"dir/sub/factura.md": "factura.md",
	}
	for in, want := range cases {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
