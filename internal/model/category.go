package model

import "strings"

// CategoryKey is the stable identifier of a category definition.
type CategoryKey string

// CategoryDefinition maps a set of extensions to a canonical destination
// folder. Definitions are static and never mutated at runtime.
type CategoryDefinition struct {
	SubfolderByExtension map[string]string
	Key                  CategoryKey
	DisplayFolder        string
	Keywords             []string
	Extensions           []string
}

// ContainsExtension reports whether ext belongs to this category.
func (d CategoryDefinition) ContainsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range d.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// NoExtensionSubfolder is the bucket for files without an extension.
const NoExtensionSubfolder = "No Extension"

// SubfolderFor returns the destination subfolder for ext within this
// category: the configured mapping if present, otherwise the uppercased bare
// extension.
func (d CategoryDefinition) SubfolderFor(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" {
		return NoExtensionSubfolder
	}
	if sub, ok := d.SubfolderByExtension[ext]; ok {
		return sub
	}
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}
