package iac

import (
	"fmt"
	"strings"
)

// Resource is one infrastructure-as-code resource declaration parsed from
// an HCL configuration.
type Resource struct {
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	File   string         `json:"file"`
	Attrs  map[string]any `json:"attrs,omitempty"`
	Blocks []*Block       `json:"blocks,omitempty"`

	// Source keeps the raw declaration text. It is handed to the
	// AI collaborator as-is, so it must never be re-rendered.
	Source string `json:"source,omitempty"`
}

// Block is a nested configuration block inside a resource.
type Block struct {
	Type   string         `json:"type"`
	Labels []string       `json:"labels,omitempty"`
	Attrs  map[string]any `json:"attrs,omitempty"`
	Blocks []*Block       `json:"blocks,omitempty"`
}

// Address returns the resource address, e.g. "aws_s3_bucket.example".
func (x *Resource) Address() string {
	return fmt.Sprintf("%s.%s", x.Type, x.Name)
}

// Attr returns a top-level attribute value if it was a literal.
func (x *Resource) Attr(name string) (any, bool) {
	v, ok := x.Attrs[name]
	return v, ok
}

// FindBlock walks nested blocks along the given type path and returns the
// first match, e.g. FindBlock("server_side_encryption_configuration", "rule").
func (x *Resource) FindBlock(path ...string) *Block {
	return findBlock(x.Blocks, path)
}

func findBlock(blocks []*Block, path []string) *Block {
	if len(path) == 0 {
		return nil
	}
	for _, b := range blocks {
		if b.Type != path[0] {
			continue
		}
		if len(path) == 1 {
			return b
		}
		if found := findBlock(b.Blocks, path[1:]); found != nil {
			return found
		}
	}
	return nil
}

// AttrDeep returns an attribute from the block found at path, where the last
// path element is the attribute name.
func (x *Resource) AttrDeep(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	if len(path) == 1 {
		return x.Attr(path[0])
	}
	b := x.FindBlock(path[:len(path)-1]...)
	if b == nil {
		return nil, false
	}
	v, ok := b.Attrs[path[len(path)-1]]
	return v, ok
}

// BoolAttr interprets a literal attribute as boolean.
func BoolAttr(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	default:
		return false
	}
}
