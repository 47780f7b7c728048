// Package category provides the static default extension-to-category table.
package category

import (
	"strings"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// KeyOther is the fallback category for extensions no definition claims. It
// has an empty extension set; its subfolder is assigned dynamically by the
// caller from the bare extension.
const KeyOther model.CategoryKey = "other_files"

// DefaultDefinitions returns the static category table. The table is loaded
// once at startup and never mutated.
func DefaultDefinitions() []model.CategoryDefinition {
	return []model.CategoryDefinition{
		{
			Key:           "document_files",
			DisplayFolder: "Document Files",
			Keywords:      []string{"document", "doc", "text", "paper", "office"},
			Extensions: []string{
				".pdf", ".doc", ".docx", ".odt", ".rtf", ".txt", ".md",
				".xls", ".xlsx", ".ods", ".csv", ".ppt", ".pptx", ".odp",
			},
			SubfolderByExtension: map[string]string{
				".doc":  "Word",
				".docx": "Word",
				".xls":  "Excel",
				".xlsx": "Excel",
				".ppt":  "PowerPoint",
				".pptx": "PowerPoint",
				".md":   "Markdown",
			},
		},
		{
			Key:           "image_files",
			DisplayFolder: "Image Files",
			Keywords:      []string{"image", "photo", "picture", "pic", "wallpaper"},
			Extensions: []string{
				".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif",
				".webp", ".svg", ".heic", ".raw", ".ico",
			},
			SubfolderByExtension: map[string]string{
				".jpeg": "JPG",
				".jpg":  "JPG",
				".tif":  "TIFF",
				".tiff": "TIFF",
			},
		},
		{
			Key:           "video_files",
			DisplayFolder: "Video Files",
			Keywords:      []string{"video", "movie", "film", "clip"},
			Extensions: []string{
				".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm",
				".mpg", ".mpeg", ".m4v", ".ts",
			},
			SubfolderByExtension: map[string]string{
				".mpeg": "MPG",
				".mpg":  "MPG",
			},
		},
		{
			Key:           "audio_files",
			DisplayFolder: "Audio Files",
			Keywords:      []string{"audio", "music", "sound", "song", "podcast"},
			Extensions: []string{
				".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a", ".wma",
				".opus", ".mid",
			},
		},
		{
			Key:           "archive_files",
			DisplayFolder: "Archive Files",
			Keywords:      []string{"archive", "compressed", "backup", "zip"},
			Extensions: []string{
				".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".iso",
			},
		},
		{
			Key:           "program_files",
			DisplayFolder: "Program Files",
			Keywords:      []string{"program", "app", "installer", "setup", "software"},
			Extensions: []string{
				".exe", ".msi", ".dmg", ".pkg", ".deb", ".rpm", ".appimage",
				".apk", ".jar",
			},
		},
		{
			Key:           "code_files",
			DisplayFolder: "Code Files",
			Keywords:      []string{"code", "source", "src", "script", "dev"},
			Extensions: []string{
				".go", ".py", ".js", ".ts", ".c", ".cpp", ".h", ".java",
				".rb", ".rs", ".sh", ".sql", ".html", ".css", ".json",
				".yaml", ".yml", ".toml", ".xml",
			},
		},
		{
			Key:           "font_files",
			DisplayFolder: "Font Files",
			Keywords:      []string{"font", "typeface"},
			Extensions:    []string{".ttf", ".otf", ".woff", ".woff2"},
		},
		{
			Key:           KeyOther,
			DisplayFolder: "Other Files",
			Keywords:      []string{"other", "misc", "miscellaneous"},
			Extensions:    []string{},
		},
	}
}

// Table is an indexed view over the category definitions.
type Table struct {
	byKey       map[model.CategoryKey]model.CategoryDefinition
	byExtension map[string]model.CategoryKey
	definitions []model.CategoryDefinition
}

// NewTable indexes the default definitions.
func NewTable() *Table {
	return NewTableWithDefinitions(DefaultDefinitions())
}

// NewTableWithDefinitions indexes the given definitions (used in tests).
func NewTableWithDefinitions(defs []model.CategoryDefinition) *Table {
	t := &Table{
		definitions: defs,
		byKey:       make(map[model.CategoryKey]model.CategoryDefinition, len(defs)),
		byExtension: make(map[string]model.CategoryKey),
	}
	for _, def := range defs {
		t.byKey[def.Key] = def
		for _, ext := range def.Extensions {
			if _, taken := t.byExtension[ext]; !taken {
				t.byExtension[ext] = def.Key
			}
		}
	}
	return t
}

// Definitions returns every definition in table order.
func (t *Table) Definitions() []model.CategoryDefinition {
	return t.definitions
}

// ByKey looks up a definition by its stable key.
func (t *Table) ByKey(key model.CategoryKey) (model.CategoryDefinition, bool) {
	def, ok := t.byKey[key]
	return def, ok
}

// ForExtension returns the definition claiming ext, if any. Pure lookup: no
// side effects, no errors.
func (t *Table) ForExtension(ext string) (model.CategoryDefinition, bool) {
	key, ok := t.byExtension[strings.ToLower(ext)]
	if !ok {
		return model.CategoryDefinition{}, false
	}
	return t.byKey[key], true
}

// ForFolderName maps an existing folder's name to the single definition
// whose display folder or keywords it matches. Names matching several
// definitions map to nothing; the fallback category never matches.
func (t *Table) ForFolderName(name string) (model.CategoryDefinition, bool) {
	name = strings.ToLower(name)
	if name == "" {
		return model.CategoryDefinition{}, false
	}

	var match model.CategoryDefinition
	matches := 0
	for _, def := range t.definitions {
		if def.Key == KeyOther {
			continue
		}
		if name == strings.ToLower(def.DisplayFolder) {
			return def, true
		}
		for _, keyword := range def.Keywords {
			if strings.Contains(name, keyword) {
				match = def
				matches++
				break
			}
		}
	}
	if matches != 1 {
		return model.CategoryDefinition{}, false
	}
	return match, true
}

// Other returns the fallback category definition.
func (t *Table) Other() model.CategoryDefinition {
	return t.byKey[KeyOther]
}
