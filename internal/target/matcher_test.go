package target

import (
	"testing"

	"github.com/Veraticus/the-files-must-flow/internal/category"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

func profile(path string, counts map[string]int) model.TargetFolderProfile {
	return model.TargetFolderProfile{
		RelativePath:    path,
		AbsolutePath:    "/target/" + path,
		ExtensionCounts: counts,
		Depth:           1,
	}
}

func TestBestMatchNameAndExtension(t *testing.T) {
	matcher := NewMatcher(category.NewTable())

	// Folder holding 12 mp4 files with a name token match clears the gate.
	profiles := []model.TargetFolderProfile{
		profile("Documents", map[string]int{".pdf": 30}),
		profile("Videos/MP4", map[string]int{".mp4": 12}),
	}

	path, ok := matcher.BestMatch(".mp4", profiles)
	if !ok {
		t.Fatal("expected a match for .mp4")
	}
	if path != "/target/Videos/MP4" {
		t.Errorf("BestMatch = %q, want /target/Videos/MP4", path)
	}
}

func TestBestMatchGateRejectsKeywordOnlyScores(t *testing.T) {
	matcher := NewMatcher(category.NewTable())

	// "music" keyword (+50), sibling .wav (+10), >10 files (+20), plus a
	// weak count signal. Plenty of score, but the folder name never matches
	// the extension token, so the gate must reject it.
	profiles := []model.TargetFolderProfile{
		profile("My Music Collection", map[string]int{".mp3": 8, ".wav": 4}),
	}

	if path, ok := matcher.BestMatch(".mp3", profiles); ok {
		t.Errorf("gate should reject keyword-only match, got %q", path)
	}
}

func TestBestMatchGateRequiresExtensionPresent(t *testing.T) {
	matcher := NewMatcher(category.NewTable())

	// Name token matches but the folder holds no such files.
	profiles := []model.TargetFolderProfile{
		profile("mp4 stuff", map[string]int{".mkv": 20}),
	}

	if _, ok := matcher.BestMatch(".mp4", profiles); ok {
		t.Error("gate should reject folders that do not contain the extension")
	}
}

func TestBestMatchPrefersHigherScore(t *testing.T) {
	matcher := NewMatcher(category.NewTable())

	profiles := []model.TargetFolderProfile{
		profile("jpg-archive", map[string]int{".jpg": 2}),
		profile("Photos/JPG", map[string]int{".jpg": 40}),
	}

	path, ok := matcher.BestMatch(".jpg", profiles)
	if !ok {
		t.Fatal("expected a match for .jpg")
	}
	if path != "/target/Photos/JPG" {
		t.Errorf("BestMatch = %q, want the higher scoring folder", path)
	}
}

func TestBestMatchTieKeepsFirstSeen(t *testing.T) {
	matcher := NewMatcher(category.NewTable())

	profiles := []model.TargetFolderProfile{
		profile("pdf-a", map[string]int{".pdf": 3}),
		profile("pdf-b", map[string]int{".pdf": 3}),
	}

	path, ok := matcher.BestMatch(".pdf", profiles)
	if !ok {
		t.Fatal("expected a match for .pdf")
	}
	if path != "/target/pdf-a" {
		t.Errorf("tie should keep first seen, got %q", path)
	}
}

func TestBestMatchEmptyExtension(t *testing.T) {
	matcher := NewMatcher(category.NewTable())
	if _, ok := matcher.BestMatch("", nil); ok {
		t.Error("empty extension should never match")
	}
}
