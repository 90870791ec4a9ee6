package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/model"
)

var (
	ErrEmptyDocument = errors.New("schemafile: document is empty")
	ErrDuplicateForm = errors.New("schemafile: duplicate form id")
)

// Store holds the schemas found in a filesystem.
type Store struct {
	forms   map[string]*model.Schema
	sources map[string]string
}

// LoadFS walks fsys and builds every form declared in its JSON/YAML files.
// A nil fsys yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := newStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schemafile: read %s: %w", path, err)
		}
		return store.add(data, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse builds the forms of a single document.
func Parse(data []byte, source string) (*Store, error) {
	store := newStore()
	if err := store.add(data, source); err != nil {
		return nil, err
	}
	return store, nil
}

// Form returns a schema by id.
func (s *Store) Form(id string) (*model.Schema, bool) {
	if s == nil {
		return nil, false
	}
	schema, ok := s.forms[id]
	return schema, ok
}

// Source returns the file a form was loaded from.
func (s *Store) Source(id string) string {
	if s == nil {
		return ""
	}
	return s.sources[id]
}

// IDs lists the loaded form ids, sorted.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.forms))
	for id := range s.forms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len reports how many forms were loaded.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.forms)
}

func newStore() *Store {
	return &Store{forms: make(map[string]*model.Schema), sources: make(map[string]string)}
}

func (s *Store) add(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}
	for rawID, form := range doc.Forms {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return fmt.Errorf("schemafile: file %s defines an empty form id", source)
		}
		if prev, exists := s.sources[id]; exists {
			return fmt.Errorf("%w: %q (files %s and %s)", ErrDuplicateForm, id, prev, source)
		}
		schema, err := build(id, form)
		if err != nil {
			return fmt.Errorf("schemafile: file %s: %w", source, err)
		}
		s.forms[id] = schema
		s.sources[id] = source
	}
	return nil
}

func build(id string, form formFile) (*model.Schema, error) {
	b := model.NewBuilder(id).Title(form.Title).Purpose(model.Purpose(form.Purpose))
	for _, section := range form.Sections {
		fields := make([]model.Field, 0, len(section.Fields))
		for _, f := range section.Fields {
			fields = append(fields, f.field())
		}
		b.Section(section.ID, section.Title, fields...)
		if section.Description != "" {
			b.Describe(section.ID, section.Description)
		}
	}
	return b.Build()
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, fmt.Errorf("%w: %s", ErrEmptyDocument, source)
	}
	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("schemafile: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("schemafile: parse %s: %w", source, err)
	}
	return doc, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Format selects the encoding used by Marshal.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Marshal encodes schemas as a document LoadFS can read back.
func Marshal(format Format, schemas ...*model.Schema) ([]byte, error) {
	doc := documentFile{Forms: make(map[string]formFile, len(schemas))}
	for _, schema := range schemas {
		if schema == nil {
			continue
		}
		form := formFile{Title: schema.Title(), Purpose: string(schema.Purpose())}
		for _, section := range schema.Sections() {
			out := sectionFile{ID: section.ID, Title: section.Title, Description: section.Description}
			for _, key := range section.Fields {
				field, _ := schema.Field(key)
				out.Fields = append(out.Fields, fromField(field))
			}
			form.Sections = append(form.Sections, out)
		}
		doc.Forms[schema.ID()] = form
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("schemafile: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("schemafile: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("schemafile: unsupported format %q", format)
	}
}
