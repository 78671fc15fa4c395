package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Wire keys of a raw definition map. Everything else lands in Params.
const (
	keyName     = "name"
	keyImpl     = "class_name"
	keyRef      = "component_name"
	keyChildren = "children"
	keyInfo     = "info"
)

// DefinitionFromMap validates a raw definition map (as parsed from a
// YAML/JSON file) into a typed Definition. The source is only used in
// error messages here; the registry stamps it on Add.
func DefinitionFromMap(raw map[string]any, source string) (*domain.Definition, error) {
	def := &domain.Definition{Params: make(map[string]any)}

	for key, value := range raw {
		switch key {
		case keyName:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("definition name must be a string, got %T (source: %s)", value, source)
			}
			def.Name = s
		case keyImpl:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("class_name must be a string, got %T (source: %s)", value, source)
			}
			def.Impl = s
		case keyRef:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("component_name must be a string, got %T (source: %s)", value, source)
			}
			def.Ref = s
		case keyInfo:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("info must be a string, got %T (source: %s)", value, source)
			}
			def.Info = s
		case keyChildren:
			children, err := stringList(value)
			if err != nil {
				return nil, fmt.Errorf("children: %w (source: %s)", err, source)
			}
			def.Children = children
		default:
			def.Params[key] = value
		}
	}

	if def.Name == "" {
		return nil, fmt.Errorf("definition without a name (source: %s)", source)
	}
	return def, nil
}

func stringList(value any) ([]string, error) {
	switch list := value.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, len(list))
		for i, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element %d must be a string, got %T", i, e)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("must be a list of strings, got %T", value)
}

// LoadFile parses one config file (.yaml, .yml or .json) holding a list
// of definition maps.
func LoadFile(path string) ([]*domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raws []map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: %s", ext, path)
	}

	defs := make([]*domain.Definition, 0, len(raws))
	for _, raw := range raws {
		def, err := DefinitionFromMap(raw, path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadInto loads a config file, or every config file under a directory,
// into the registry. The file path becomes each definition's source.
func LoadInto(r *Registry, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return loadFileInto(r, path)
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml", ".json":
			return loadFileInto(r, p)
		}
		return nil
	})
}

func loadFileInto(r *Registry, path string) error {
	defs, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := r.Add(def, path, AddOptions{}); err != nil {
			return err
		}
	}
	return nil
}
