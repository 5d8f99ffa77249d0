package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// loader applies one layer to the tree.
type loader func(root *node) error

// Builder collects configuration layers. Layers are applied in the order
// they were added when Build is called.
type Builder struct {
	loaders []loader
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddMap adds an in-memory layer. Nested maps become sections and slices
// become index keys.
func (b *Builder) AddMap(values map[string]any) *Builder {
	return b.add(func(root *node) error {
		root.merge(values)
		return nil
	})
}

// AddYAML adds a YAML document.
func (b *Builder) AddYAML(data []byte) *Builder {
	return b.add(func(root *node) error {
		return mergeYAML(root, data, "<inline>")
	})
}

// AddYAMLFile adds a YAML file. A missing optional file is skipped.
func (b *Builder) AddYAMLFile(path string, optional bool) *Builder {
	return b.add(func(root *node) error {
		data, err := readFile(path, optional)
		if err != nil || data == nil {
			return err
		}
		return mergeYAML(root, data, path)
	})
}

// Build applies every layer and returns the resulting configuration.
func (b *Builder) Build() (*Config, error) {
	root := newNode("")
	for _, load := range b.loaders {
		if err := load(root); err != nil {
			return nil, err
		}
	}
	return &Config{root: root}, nil
}

func (b *Builder) add(l loader) *Builder {
	b.loaders = append(b.loaders, l)
	return b
}

func mergeYAML(root *node, data []byte, name string) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML %s: %w", name, err)
	}
	root.merge(doc)
	return nil
}

// readFile returns nil data without error for a missing optional file.
func readFile(path string, optional bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return data, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
