package transfer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-files-must-flow/internal/hashing"
)

func mkFolderTree(t *testing.T, root string) map[string][]byte {
	t.Helper()
	files := map[string][]byte{
		"report.pdf":              []byte("pdf bytes"),
		"notes/todo.txt":          []byte("todo list"),
		"notes/deep/archive.tar":  patternedContent(4096),
		"media/holiday.jpg":       patternedContent(2048),
		"media/clips/opening.mp4": patternedContent(8192),
	}
	for rel, content := range files {
		writeFile(t, filepath.Join(root, rel), content)
	}
	return files
}

func TestCopyFolderPreservesStructure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	files := mkFolderTree(t, src)

	result, err := New(hashing.New(), nil).CopyFolder(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("CopyFolder failed: %v", err)
	}

	if result.Total != len(files) || result.Completed != len(files) {
		t.Errorf("completed %d/%d, want %d/%d", result.Completed, result.Total, len(files), len(files))
	}
	if len(result.Failures) != 0 {
		t.Errorf("unexpected failures: %v", result.Failures)
	}
	for rel, content := range files {
		got, err := os.ReadFile(filepath.Join(dst, rel))
		if err != nil {
			t.Errorf("missing copied file %s: %v", rel, err)
			continue
		}
		if !bytes.Equal(got, content) {
			t.Errorf("content mismatch for %s", rel)
		}
	}
	// Source is untouched by a copy.
	for rel := range files {
		if _, err := os.Stat(filepath.Join(src, rel)); err != nil {
			t.Errorf("source file %s disturbed: %v", rel, err)
		}
	}
}

func TestCopyFolderCollectsPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	files := mkFolderTree(t, src)

	// A dangling symlink cannot be opened, so its copy fails while the rest
	// of the batch continues.
	broken := filepath.Join(src, "notes", "ghost.lnk")
	if err := os.Symlink(filepath.Join(dir, "nowhere"), broken); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	result, err := New(hashing.New(), nil).CopyFolder(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("CopyFolder failed: %v", err)
	}

	if result.Completed != len(files) {
		t.Errorf("Completed = %d, want %d", result.Completed, len(files))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(result.Failures))
	}
	if result.Failures[0].Path != broken {
		t.Errorf("failure path = %s, want %s", result.Failures[0].Path, broken)
	}
}

func TestCopyFolderCancelled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	mkFolderTree(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(hashing.New(), nil).CopyFolder(ctx, src, filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("cancelled folder copy should return an error")
	}
}

func TestMoveFolderSameVolume(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "nested", "dst")
	files := mkFolderTree(t, src)

	result, err := New(hashing.New(), nil).MoveFolder(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("MoveFolder failed: %v", err)
	}
	if result.Completed == 0 {
		t.Error("move reported no completed work")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source folder still exists after move")
	}
	for rel, content := range files {
		got, err := os.ReadFile(filepath.Join(dst, rel))
		if err != nil {
			t.Errorf("missing moved file %s: %v", rel, err)
			continue
		}
		if !bytes.Equal(got, content) {
			t.Errorf("content mismatch for %s", rel)
		}
	}
}
