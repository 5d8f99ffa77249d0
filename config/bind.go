package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// bind decodes n into target through a YAML node shaped after the target
// type. Shaping the document first is what makes keys case-insensitive and
// lets string leaves coerce into numbers, booleans and durations.
func bind(n *node, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("bind target must be a non-nil pointer, got %T", target)
	}
	if n == nil {
		return nil
	}

	doc := toYAML(n, rv.Type().Elem())
	if doc == nil {
		return nil
	}

	if err := doc.Decode(target); err != nil {
		return fmt.Errorf("failed to bind %T: %w", target, err)
	}
	return nil
}

// toYAML renders n as a YAML node for type t. Returns nil when n holds
// nothing t can use.
func toYAML(n *node, t reflect.Type) *yaml.Node {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		if len(n.children) == 0 {
			// A leaf for a struct type such as time.Time.
			if n.value == "" {
				return nil
			}
			return scalar(n.value, false)
		}
		m := &yaml.Node{Kind: yaml.MappingNode}
		structFields(m, n, t)
		return m

	case reflect.Map:
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, lk := range n.order {
			c := n.children[lk]
			if v := toYAML(c, t.Elem()); v != nil {
				m.Content = append(m.Content, scalar(c.key, true), v)
			}
		}
		return m

	case reflect.Slice, reflect.Array:
		if len(n.children) == 0 {
			return nil
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range indexed(n) {
			v := toYAML(c, t.Elem())
			if v == nil {
				v = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			}
			seq.Content = append(seq.Content, v)
		}
		return seq

	case reflect.Interface:
		if len(n.children) == 0 {
			return scalar(n.value, false)
		}
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, lk := range n.order {
			c := n.children[lk]
			m.Content = append(m.Content, scalar(c.key, true), toYAML(c, t))
		}
		return m

	case reflect.String:
		if !n.hasValue {
			return nil
		}
		return scalar(n.value, true)

	default:
		if !n.hasValue {
			return nil
		}
		if n.value == "" {
			// Empty leaves leave non-string fields alone.
			return nil
		}
		return scalar(n.value, false)
	}
}

// structFields appends the fields of t found in n to the mapping m, using
// the names yaml decodes them by.
func structFields(m *yaml.Node, n *node, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() && !f.Anonymous {
			continue
		}

		name, inline, skip := yamlName(f)
		if skip || (!inline && !f.IsExported()) {
			continue
		}

		if inline {
			ft := f.Type
			for ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				structFields(m, n, ft)
			}
			continue
		}

		c := n.child(name, false)
		if c == nil && !strings.EqualFold(name, f.Name) {
			c = n.child(f.Name, false)
		}
		if c == nil {
			continue
		}

		if v := toYAML(c, f.Type); v != nil {
			m.Content = append(m.Content, scalar(name, true), v)
		}
	}
}

// yamlName returns the key yaml.v3 uses for a field.
func yamlName(f reflect.StructField) (name string, inline, skip bool) {
	tag := f.Tag.Get("yaml")
	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		if opt == "inline" {
			return "", true, false
		}
	}

	if parts[0] != "" {
		return parts[0], false, false
	}
	return strings.ToLower(f.Name), false, false
}

// indexed returns the children of n with numeric keys, in index order.
func indexed(n *node) []*node {
	type entry struct {
		i int
		n *node
	}

	var entries []entry
	for _, lk := range n.order {
		i, err := strconv.Atoi(lk)
		if err != nil || i < 0 {
			continue
		}
		entries = append(entries, entry{i: i, n: n.children[lk]})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].i < entries[b].i })

	out := make([]*node, len(entries))
	for i, e := range entries {
		out[i] = e.n
	}
	return out
}

func scalar(value string, str bool) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	if str {
		n.Tag = "!!str"
	}
	return n
}
