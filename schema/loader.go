package schema

import (
	"fmt"
	"os"
	"sort"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a schema definition file: model name to
// props-only definition. Virtuals, methods and statics are code and are
// attached at registration time, not loaded from files.
type File struct {
	Models map[string]Definition `yaml:"models"`
}

// Load parses a YAML schema file and compiles every model definition in
// it, so a malformed file is rejected as a whole.
func Load(data []byte) (map[string]*Schema, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("schema file declares no models")
	}

	schemas := make(map[string]*Schema, len(file.Models))
	for name, def := range file.Models {
		s, err := Compile(def)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", name, err)
		}
		schemas[name] = s
	}
	return schemas, nil
}

// LoadFile reads and compiles a schema file from disk.
func LoadFile(path string) (map[string]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Load(data)
}

// SaveFile writes a normalized schema file: models sorted by name, props
// emitted through the canonical yaml encoding. The write is guarded by a
// file lock so concurrent invocations (e.g. two `schema fmt` runs) cannot
// interleave partial writes.
func SaveFile(path string, schemas map[string]*Schema) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock schema file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	file := File{Models: make(map[string]Definition, len(schemas))}
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		file.Models[name] = schemas[name].Definition()
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode schema file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
