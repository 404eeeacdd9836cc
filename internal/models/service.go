package models

import "strings"

// FieldDefinition describes one form field a service requires.
type FieldDefinition struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label" yaml:"label"`
	Required bool   `json:"required,omitempty" yaml:"required"`
}

// ServiceDefinition holds the validation rules for one service type.
// Loaded once at startup from services.yaml and read-only afterwards.
type ServiceDefinition struct {
	ID           string            `json:"id" yaml:"-"`
	AllowedTypes []string          `json:"allowedTypes" yaml:"allowed_types"`
	Fields       []FieldDefinition `json:"fields" yaml:"fields"`
	// FolderKey names the form fields whose values make the
	// human-meaningful part of the storage folder name (e.g. cpf, ano).
	// When empty the generic "pedido" label is used instead.
	FolderKey []string `json:"folderKey,omitempty" yaml:"folder_key"`
}

// AllowsExtension reports whether ext (without a leading dot, any case)
// is an accepted attachment type for this service.
func (s ServiceDefinition) AllowsExtension(ext string) bool {
	for _, t := range s.AllowedTypes {
		if strings.EqualFold(t, ext) {
			return true
		}
	}
	return false
}

// RequiredFields returns the fields a submission must fill, in the
// order the catalog declares them.
func (s ServiceDefinition) RequiredFields() []FieldDefinition {
	var out []FieldDefinition
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}
