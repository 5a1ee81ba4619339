package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/esmodel/esmodel/engine"
	"github.com/esmodel/esmodel/esmodel"
	"github.com/esmodel/esmodel/schema"
)

// buildRegistry constructs the registry from the configured engine URL
// and schema file, registering every model the file declares.
func buildRegistry() (*esmodel.Registry, error) {
	url := viper.GetString("engine-url")
	schemaPath := viper.GetString("schemas")

	schemas, err := schema.LoadFile(schemaPath)
	if err != nil {
		return nil, err
	}

	eng := engine.NewHTTP(url)
	reg := esmodel.New(eng, esmodel.WithIndexPrefix(viper.GetString("index-prefix")))
	for name, s := range schemas {
		if _, err := reg.Register(name, s); err != nil {
			return nil, err
		}
	}
	slog.Info("registry ready", "engine", url, "models", len(schemas))
	return reg, nil
}

// lookupModel resolves a model name against the configured schema file.
func lookupModel(name string) (*esmodel.Model, error) {
	reg, err := buildRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Model(name)
}

// parseCriteria turns repeated key=value flags into a match criteria.
// Values parse as JSON when possible (numbers, bools) and fall back to
// plain strings.
func parseCriteria(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	criteria := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("criteria %q is not key=value", pair)
		}
		var parsed interface{}
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		criteria[key] = parsed
	}
	return criteria, nil
}

// printJSON writes v to the writer as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// documentJSON renders a document as its id plus current fields, with
// populated references rendered recursively.
func documentJSON(doc *esmodel.Document) map[string]interface{} {
	out := map[string]interface{}{"id": doc.ID()}
	for k, v := range doc.Fields() {
		out[k] = renderValue(v)
	}
	return out
}

func renderValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case *esmodel.Document:
		return documentJSON(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, e := range typed {
			out[i] = renderValue(e)
		}
		return out
	default:
		return v
	}
}
