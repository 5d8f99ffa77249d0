// Package config provides the layered configuration source that
// configuration types are bound from.
//
// A Config is a tree of case-insensitive keys with string leaves, built from
// YAML, HCL, dotenv files, environment variables and plain maps. Later layers
// override earlier ones. Paths use ":" between levels; environment variable
// names use "__" instead, so DATABASE__HOST sets Database:Host. Arrays are
// stored under their index keys (Servers:0, Servers:1).
package config

import (
	"sort"
	"strconv"
	"strings"
)

// KeyDelimiter separates levels in section paths.
const KeyDelimiter = ":"

// Source is the configuration collaborator of the registrar.
type Source interface {
	// Section returns the section at path. It never returns nil; use
	// Exists to check whether the section holds anything.
	Section(path string) Section
}

// Section is a node of the configuration tree.
type Section interface {
	// Key is the last path segment, as spelled by the source.
	Key() string

	// Path is the full path of the section.
	Path() string

	// Value is the leaf value, empty for pure sections.
	Value() string

	// Exists reports whether the section has a value or children.
	Exists() bool

	// Section returns a descendant of this section.
	Section(path string) Section

	// Children returns the direct child sections in the order they were
	// first added. Keys of one mapping are added in sorted order.
	Children() []Section

	// Bind decodes the section into target, which must be a non-nil
	// pointer. Fields missing from the section keep their current values.
	Bind(target any) error
}

// Config is an immutable configuration tree. It implements Source.
type Config struct {
	root *node
}

var _ Source = (*Config)(nil)

// Section returns the section at path.
func (c *Config) Section(path string) Section {
	return newSection(c.root, "", splitPath(path))
}

// Get returns the leaf value at path.
func (c *Config) Get(path string) (string, bool) {
	n := c.root.find(splitPath(path))
	if n == nil || !n.hasValue {
		return "", false
	}
	return n.value, true
}

// All returns every leaf keyed by its lowercase path.
func (c *Config) All() map[string]string {
	out := make(map[string]string)
	c.root.walk(nil, func(path []string, n *node) {
		if n.hasValue {
			out[strings.Join(path, KeyDelimiter)] = n.value
		}
	})
	return out
}

// node is one level of the tree. Children are indexed by lowercase key.
type node struct {
	key      string
	value    string
	hasValue bool
	children map[string]*node
	order    []string
}

func newNode(key string) *node {
	return &node{key: key}
}

func (n *node) child(key string, create bool) *node {
	lk := strings.ToLower(key)
	if c, ok := n.children[lk]; ok {
		return c
	}
	if !create {
		return nil
	}
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c := newNode(key)
	n.children[lk] = c
	n.order = append(n.order, lk)
	return c
}

func (n *node) find(path []string) *node {
	cur := n
	for _, seg := range path {
		if cur == nil {
			return nil
		}
		cur = cur.child(seg, false)
	}
	return cur
}

func (n *node) set(path []string, value string) {
	cur := n
	for _, seg := range path {
		cur = cur.child(seg, true)
	}
	cur.value = value
	cur.hasValue = true
}

func (n *node) walk(path []string, fn func([]string, *node)) {
	fn(path, n)
	for _, lk := range n.order {
		n.children[lk].walk(append(append([]string(nil), path...), lk), fn)
	}
}

// merge overlays a decoded document onto the tree.
// Maps become sections, slices become index keys and scalars are stored in
// their canonical string form.
func (n *node) merge(v any) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.child(k, true).merge(t[k])
		}
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[scalarString(k)] = val
		}
		n.merge(m)
	case []any:
		for i, val := range t {
			n.child(strconv.Itoa(i), true).merge(val)
		}
	default:
		n.value = scalarString(t)
		n.hasValue = true
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, KeyDelimiter)
}

// section is a view of a node. n is nil when the path does not exist.
type section struct {
	n    *node
	key  string
	path string
}

func newSection(from *node, prefix string, path []string) *section {
	s := &section{n: from, path: prefix}
	if len(path) == 0 {
		if from != nil {
			s.key = from.key
		}
		return s
	}

	s.key = path[len(path)-1]
	s.n = from.find(path)
	if s.n != nil {
		s.key = s.n.key
	}

	joined := strings.Join(path, KeyDelimiter)
	if prefix == "" {
		s.path = joined
	} else {
		s.path = prefix + KeyDelimiter + joined
	}

	return s
}

func (s *section) Key() string  { return s.key }
func (s *section) Path() string { return s.path }

func (s *section) Value() string {
	if s.n == nil {
		return ""
	}
	return s.n.value
}

func (s *section) Exists() bool {
	return s.n != nil && (s.n.hasValue || len(s.n.children) > 0)
}

func (s *section) Section(path string) Section {
	if s.n == nil {
		parts := splitPath(path)
		out := &section{key: s.key, path: s.path}
		if len(parts) > 0 {
			out.key = parts[len(parts)-1]
			out.path = strings.Join(append([]string{s.path}, parts...), KeyDelimiter)
		}
		return out
	}
	return newSection(s.n, s.path, splitPath(path))
}

func (s *section) Children() []Section {
	if s.n == nil {
		return nil
	}
	out := make([]Section, 0, len(s.n.order))
	for _, lk := range s.n.order {
		out = append(out, newSection(s.n, s.path, []string{s.n.children[lk].key}))
	}
	return out
}

func (s *section) Bind(target any) error {
	return bind(s.n, target)
}
