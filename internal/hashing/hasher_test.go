package hashing

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestHash(t *testing.T) {
	content := bytes.Repeat([]byte("the files must flow "), 4096)
	path := writeTestFile(t, content)

	want := sha256.Sum256(content)
	got, err := New().Hash(context.Background(), path)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if got != hex.EncodeToString(want[:]) {
		t.Errorf("Hash = %s, want %s", got, hex.EncodeToString(want[:]))
	}
}

func TestHashChunkSizeDoesNotChangeDigest(t *testing.T) {
	content := bytes.Repeat([]byte{0xAB}, 100_000)
	path := writeTestFile(t, content)
	ctx := context.Background()

	small, err := NewWithChunkSize(7).Hash(ctx, path)
	if err != nil {
		t.Fatalf("Hash with tiny chunks failed: %v", err)
	}
	large, err := NewWithChunkSize(1 << 20).Hash(ctx, path)
	if err != nil {
		t.Fatalf("Hash with large chunks failed: %v", err)
	}
	if small != large {
		t.Errorf("digest differs by chunk size: %s vs %s", small, large)
	}
}

func TestHashPrefix(t *testing.T) {
	content := []byte("0123456789abcdef")
	path := writeTestFile(t, content)
	ctx := context.Background()

	want := sha256.Sum256(content[:10])
	got, err := New().HashPrefix(ctx, path, 10)
	if err != nil {
		t.Fatalf("HashPrefix failed: %v", err)
	}
	if got != hex.EncodeToString(want[:]) {
		t.Errorf("HashPrefix = %s, want %s", got, hex.EncodeToString(want[:]))
	}

	if _, err := New().HashPrefix(ctx, path, int64(len(content)+1)); err == nil {
		t.Error("HashPrefix beyond file length should fail")
	}
}

func TestHashMissingFile(t *testing.T) {
	_, err := New().Hash(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Error("hashing a missing file should fail")
	}
}

func TestHashCancellation(t *testing.T) {
	path := writeTestFile(t, bytes.Repeat([]byte{1}, 1<<20))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewWithChunkSize(16).Hash(ctx, path); err == nil {
		t.Error("hashing with a cancelled context should fail")
	}
}
