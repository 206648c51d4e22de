// Package schemas holds the JSON Schemas that generator responses must satisfy
// and validates documents against them.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed stages/*.json
var stageFiles embed.FS

// Stage schema names
const (
	Requirements = "requirements"
	Matching     = "matching"
	Bullets      = "bullets"
)

// Schema is one parsed stage schema
type Schema struct {
	Name string
	// Raw is the schema source, used for validation
	Raw string
	// Document is the decoded schema, sent to the generator
	Document map[string]any

	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
}

var (
	cache   = make(map[string]*Schema)
	cacheMu sync.RWMutex
)

// Get returns the named stage schema
func Get(name string) (*Schema, error) {
	cacheMu.RLock()
	if s, ok := cache[name]; ok {
		cacheMu.RUnlock()
		return s, nil
	}
	cacheMu.RUnlock()

	data, err := stageFiles.ReadFile(path.Join("stages", name+".json"))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema not found", Cause: err}
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema JSON", Cause: err}
	}

	s := &Schema{Name: name, Raw: string(data), Document: doc}
	cacheMu.Lock()
	cache[name] = s
	cacheMu.Unlock()
	return s, nil
}

// MustGet returns the named stage schema, panicking if it cannot be loaded.
// Stage schemas are embedded, so a failure here is a build defect.
func MustGet(name string) *Schema {
	s, err := Get(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load schema: %v", err))
	}
	return s
}

// List returns the names of all embedded stage schemas
func List() ([]string, error) {
	entries, err := stageFiles.ReadDir("stages")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Validate checks a JSON document against this schema. The schema is compiled on first use.
func (s *Schema) Validate(jsonContent string) error {
	s.compileOnce.Do(func() {
		s.compiled, s.compileErr = compile(s.Name, s.Raw)
	})
	if s.compileErr != nil {
		return s.compileErr
	}
	return validateWith(s.compiled, jsonContent)
}
