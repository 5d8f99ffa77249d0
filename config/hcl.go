package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// AddHCL adds an HCL document. Attributes become keys; a block becomes a
// section named by its type followed by its labels:
//
//	database "primary" {
//	  host = "db"
//	}
//
// sets Database:Primary:Host. A block repeated with the same type and labels
// becomes a list (Server:0, Server:1). Expressions are evaluated without
// variables.
func (b *Builder) AddHCL(data []byte, filename string) *Builder {
	return b.add(func(root *node) error {
		return mergeHCL(root, data, filename)
	})
}

// AddHCLFile adds an HCL file. A missing optional file is skipped.
func (b *Builder) AddHCLFile(path string, optional bool) *Builder {
	return b.add(func(root *node) error {
		data, err := readFile(path, optional)
		if err != nil || data == nil {
			return err
		}
		return mergeHCL(root, data, path)
	})
}

func mergeHCL(root *node, data []byte, filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return fmt.Errorf("failed to parse HCL file %s: unexpected body type %T", filename, file.Body)
	}

	doc, err := bodyToMap(body)
	if err != nil {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}

	root.merge(doc)
	return nil
}

func bodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("in attribute '%s': %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("in attribute '%s': %w", name, err)
		}
		out[name] = native
	}

	// Blocks repeated with the same type and labels become a list.
	repeated := make(map[string]bool)

	for _, block := range body.Blocks {
		inner, err := bodyToMap(block.Body)
		if err != nil {
			return nil, fmt.Errorf("in block '%s': %w", block.Type, err)
		}

		path := append([]string{block.Type}, block.Labels...)
		target := out
		for _, seg := range path[:len(path)-1] {
			switch next := target[seg].(type) {
			case nil:
				m := make(map[string]any)
				target[seg] = m
				target = m
			case map[string]any:
				target = next
			default:
				return nil, fmt.Errorf("block '%s' conflicts with '%s'", strings.Join(path, " "), seg)
			}
		}

		id := strings.Join(path, "\x00")
		last := path[len(path)-1]

		switch existing := target[last].(type) {
		case nil:
			target[last] = inner
		case map[string]any:
			if repeated[id] {
				target[last] = []any{existing, inner}
			} else {
				// Filled by labeled blocks of the same type.
				deepMerge(existing, inner)
			}
		case []any:
			if !repeated[id] {
				return nil, fmt.Errorf("block '%s' conflicts with attribute '%s'", strings.Join(path, " "), last)
			}
			target[last] = append(existing, inner)
		default:
			return nil, fmt.Errorf("block '%s' conflicts with attribute '%s'", strings.Join(path, " "), last)
		}

		repeated[id] = true
	}

	return out, nil
}

// deepMerge copies src into dst, merging nested maps key by key.
func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				deepMerge(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}

// ctyToNative converts a cty.Value to the plain values merge understands.
// Numbers keep their exact decimal text.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1), nil

	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, fmt.Errorf("failed to convert cty.Bool to bool: %w", err)
		}
		return b, nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported cty type: %s", ty.FriendlyName())
	}
}
