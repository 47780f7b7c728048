package category

import (
	"testing"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

func TestForExtension(t *testing.T) {
	table := NewTable()

	tests := []struct {
		name    string
		ext     string
		wantKey model.CategoryKey
		wantOK  bool
	}{
		{name: "pdf maps to documents", ext: ".pdf", wantKey: "document_files", wantOK: true},
		{name: "lookup is case-insensitive", ext: ".PDF", wantKey: "document_files", wantOK: true},
		{name: "mp4 maps to video", ext: ".mp4", wantKey: "video_files", wantOK: true},
		{name: "unknown extension", ext: ".xyzzy", wantOK: false},
		{name: "empty extension", ext: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := table.ForExtension(tt.ext)
			if ok != tt.wantOK {
				t.Fatalf("ForExtension(%q) ok = %v, want %v", tt.ext, ok, tt.wantOK)
			}
			if ok && def.Key != tt.wantKey {
				t.Errorf("ForExtension(%q) key = %q, want %q", tt.ext, def.Key, tt.wantKey)
			}
		})
	}
}

func TestForFolderName(t *testing.T) {
	table := NewTable()

	tests := []struct {
		name    string
		folder  string
		wantKey model.CategoryKey
		wantOK  bool
	}{
		{name: "canonical display folder", folder: "Document Files", wantKey: "document_files", wantOK: true},
		{name: "keyword match", folder: "Music", wantKey: "audio_files", wantOK: true},
		{name: "keyword inside longer name", folder: "Holiday Photos", wantKey: "image_files", wantOK: true},
		{name: "no keyword", folder: "Stuff", wantOK: false},
		{name: "ambiguous name", folder: "Video Backup", wantOK: false},
		{name: "fallback keywords never match", folder: "Misc", wantOK: false},
		{name: "empty name", folder: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := table.ForFolderName(tt.folder)
			if ok != tt.wantOK {
				t.Fatalf("ForFolderName(%q) ok = %v, want %v", tt.folder, ok, tt.wantOK)
			}
			if ok && def.Key != tt.wantKey {
				t.Errorf("ForFolderName(%q) key = %q, want %q", tt.folder, def.Key, tt.wantKey)
			}
		})
	}
}

func TestSubfolderFor(t *testing.T) {
	table := NewTable()

	docs, ok := table.ByKey("document_files")
	if !ok {
		t.Fatal("document_files definition missing")
	}

	if got := docs.SubfolderFor(".pdf"); got != "PDF" {
		t.Errorf("unmapped extension subfolder = %q, want PDF", got)
	}
	if got := docs.SubfolderFor(".docx"); got != "Word" {
		t.Errorf("mapped extension subfolder = %q, want Word", got)
	}
	if got := docs.SubfolderFor(""); got != model.NoExtensionSubfolder {
		t.Errorf("empty extension subfolder = %q, want %q", got, model.NoExtensionSubfolder)
	}
}

func TestOtherFallback(t *testing.T) {
	table := NewTable()

	other := table.Other()
	if other.Key != KeyOther {
		t.Fatalf("Other() key = %q, want %q", other.Key, KeyOther)
	}
	if len(other.Extensions) != 0 {
		t.Errorf("fallback category should claim no extensions, got %d", len(other.Extensions))
	}
}

func TestEveryExtensionHasOneOwner(t *testing.T) {
	seen := make(map[string]model.CategoryKey)
	for _, def := range DefaultDefinitions() {
		for _, ext := range def.Extensions {
			if owner, dup := seen[ext]; dup {
				t.Errorf("extension %q claimed by both %q and %q", ext, owner, def.Key)
			}
			seen[ext] = def.Key
		}
	}
}
