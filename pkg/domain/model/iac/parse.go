package iac

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/m-mizutani/goerr/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/secmon-lab/complior/pkg/domain/types"
)

// ParseDir enumerates resource declarations from all .tf files under dir.
// Unresolvable (non-literal) attribute values are skipped, not errors: the
// structural controls only look at literals and block shapes.
func ParseDir(dir string) ([]*Resource, error) {
	var resources []*Resource

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tf") {
			return nil
		}
		rs, err := ParseFile(path)
		if err != nil {
			return err
		}
		resources = append(resources, rs...)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to walk configuration directory", goerr.V("dir", dir))
	}

	return resources, nil
}

// ParseFile enumerates resource declarations from a single HCL file.
func ParseFile(path string) ([]*Resource, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read configuration file", goerr.V("path", path))
	}
	return Parse(raw, path)
}

// Parse enumerates resource declarations from raw HCL bytes.
func Parse(raw []byte, filename string) ([]*Resource, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(raw, filename)
	if diags.HasErrors() {
		return nil, goerr.Wrap(types.ErrValidationFailed, "failed to parse HCL",
			goerr.V("file", filename),
			goerr.V("diags", diags.Error()),
		)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, goerr.Wrap(types.ErrValidationFailed, "unexpected HCL body type", goerr.V("file", filename))
	}

	var resources []*Resource
	for _, block := range body.Blocks {
		if block.Type != "resource" || len(block.Labels) != 2 {
			continue
		}
		resources = append(resources, &Resource{
			Type:   block.Labels[0],
			Name:   block.Labels[1],
			File:   filename,
			Attrs:  parseAttrs(block.Body),
			Blocks: parseBlocks(block.Body),
			Source: sliceRange(raw, block.Range()),
		})
	}

	return resources, nil
}

func parseBlocks(body *hclsyntax.Body) []*Block {
	var blocks []*Block
	for _, b := range body.Blocks {
		blocks = append(blocks, &Block{
			Type:   b.Type,
			Labels: b.Labels,
			Attrs:  parseAttrs(b.Body),
			Blocks: parseBlocks(b.Body),
		})
	}
	return blocks
}

func parseAttrs(body *hclsyntax.Body) map[string]any {
	if len(body.Attributes) == 0 {
		return nil
	}
	attrs := make(map[string]any, len(body.Attributes))
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			// reference or function call, not a literal
			continue
		}
		if v, ok := ctyToGo(val); ok {
			attrs[name] = v
		}
	}
	return attrs
}

func ctyToGo(v cty.Value) (any, bool) {
	if v.IsNull() || !v.IsKnown() {
		return nil, false
	}
	switch {
	case v.Type() == cty.String:
		return v.AsString(), true
	case v.Type() == cty.Bool:
		return v.True(), true
	case v.Type() == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, true
	case v.Type().IsTupleType() || v.Type().IsListType() || v.Type().IsSetType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if gv, ok := ctyToGo(ev); ok {
				out = append(out, gv)
			}
		}
		return out, true
	case v.Type().IsObjectType() || v.Type().IsMapType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			if k.Type() != cty.String {
				continue
			}
			if gv, ok := ctyToGo(ev); ok {
				out[k.AsString()] = gv
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func sliceRange(raw []byte, rng hcl.Range) string {
	start, end := rng.Start.Byte, rng.End.Byte
	if start < 0 || end > len(raw) || start >= end {
		return ""
	}
	return string(raw[start:end])
}
