// Package manifest loads the hand-authored sidebar manifest (sidebar.hcl).
// A manifest declares one or more sidebar trees out of ordered doc, category,
// link, and include blocks. Block order inside a body is the display order,
// so decoding walks the raw syntax tree instead of grouping blocks by type.
package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/agentic-research/sidetree/api"
)

// Manifest is the parsed sidebar.hcl file.
type Manifest struct {
	Path     string
	Sidebars []api.Sidebar
}

// Load parses and validates the manifest at path. The returned sidebars are
// static: include items are still present and get resolved later.
func Load(path string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse sidebar manifest: %w", diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("sidebar manifest %s: not native HCL syntax", path)
	}

	m := &Manifest{Path: path}
	if err := rejectAttributes(body); err != nil {
		return nil, err
	}
	for _, block := range body.Blocks {
		if block.Type != "sidebar" {
			return nil, fmt.Errorf("%s: unsupported block %q", block.TypeRange, block.Type)
		}
		if len(block.Labels) != 1 {
			return nil, fmt.Errorf("%s: sidebar block needs exactly one label", block.TypeRange)
		}
		items, err := decodeItems(block.Body)
		if err != nil {
			return nil, err
		}
		sb := api.Sidebar{Name: block.Labels[0], Items: items}
		if err := sb.Validate(false); err != nil {
			return nil, fmt.Errorf("%s: %w", block.TypeRange, err)
		}
		m.Sidebars = append(m.Sidebars, sb)
	}
	if len(m.Sidebars) == 0 {
		return nil, fmt.Errorf("sidebar manifest %s: no sidebar blocks", path)
	}
	return m, nil
}

// Sidebar returns the tree with the given name. An empty name selects the
// manifest's only sidebar and errors when there is more than one.
func (m *Manifest) Sidebar(name string) (api.Sidebar, error) {
	if name == "" {
		if len(m.Sidebars) == 1 {
			return m.Sidebars[0], nil
		}
		return api.Sidebar{}, fmt.Errorf("manifest %s declares %d sidebars, pick one by name", m.Path, len(m.Sidebars))
	}
	for _, sb := range m.Sidebars {
		if sb.Name == name {
			return sb, nil
		}
	}
	return api.Sidebar{}, fmt.Errorf("manifest %s: no sidebar named %q", m.Path, name)
}

// decodeItems converts a block body into an ordered item list.
func decodeItems(body *hclsyntax.Body) ([]api.Item, error) {
	items := make([]api.Item, 0, len(body.Blocks))
	for _, block := range body.Blocks {
		item, err := decodeItem(block)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(block *hclsyntax.Block) (api.Item, error) {
	if len(block.Labels) != 1 {
		return api.Item{}, fmt.Errorf("%s: %s block needs exactly one label", block.TypeRange, block.Type)
	}
	label := block.Labels[0]

	switch block.Type {
	case "doc":
		if err := rejectAttributes(block.Body); err != nil {
			return api.Item{}, err
		}
		if err := rejectBlocks(block.Body); err != nil {
			return api.Item{}, err
		}
		return api.DocRef(label), nil

	case "include":
		if err := rejectAttributes(block.Body); err != nil {
			return api.Item{}, err
		}
		if err := rejectBlocks(block.Body); err != nil {
			return api.Item{}, err
		}
		return api.Include(label), nil

	case "link":
		href, err := stringAttr(block, "href")
		if err != nil {
			return api.Item{}, err
		}
		if err := rejectBlocks(block.Body); err != nil {
			return api.Item{}, err
		}
		return api.Link(label, href), nil

	case "category":
		collapsed, err := boolAttr(block, "collapsed")
		if err != nil {
			return api.Item{}, err
		}
		children, err := decodeItems(block.Body)
		if err != nil {
			return api.Item{}, err
		}
		return api.Category(label, collapsed, children...), nil

	default:
		return api.Item{}, fmt.Errorf("%s: unsupported block %q", block.TypeRange, block.Type)
	}
}

// stringAttr evaluates a required string attribute and rejects strays.
func stringAttr(block *hclsyntax.Block, name string) (string, error) {
	if err := rejectAttributesExcept(block.Body, name); err != nil {
		return "", err
	}
	attr, ok := block.Body.Attributes[name]
	if !ok {
		return "", fmt.Errorf("%s: %s block requires %q", block.TypeRange, block.Type, name)
	}
	val, err := evalAttr(attr)
	if err != nil {
		return "", err
	}
	if val.Type() != cty.String {
		return "", fmt.Errorf("%s: %q must be a string", attr.SrcRange, name)
	}
	return val.AsString(), nil
}

// boolAttr evaluates an optional bool attribute, defaulting to false.
func boolAttr(block *hclsyntax.Block, name string) (bool, error) {
	if err := rejectAttributesExcept(block.Body, name); err != nil {
		return false, err
	}
	attr, ok := block.Body.Attributes[name]
	if !ok {
		return false, nil
	}
	val, err := evalAttr(attr)
	if err != nil {
		return false, err
	}
	if val.Type() != cty.Bool {
		return false, fmt.Errorf("%s: %q must be a bool", attr.SrcRange, name)
	}
	return val.True(), nil
}

func evalAttr(attr *hclsyntax.Attribute) (cty.Value, error) {
	val, diags := attr.Expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("%s: %w", attr.SrcRange, diags)
	}
	return val, nil
}

func rejectAttributes(body *hclsyntax.Body) error {
	return rejectAttributesExcept(body, "")
}

func rejectAttributesExcept(body *hclsyntax.Body, allowed string) error {
	for name, attr := range body.Attributes {
		if name != allowed {
			return fmt.Errorf("%s: unsupported argument %q", attr.SrcRange, name)
		}
	}
	return nil
}

func rejectBlocks(body *hclsyntax.Body) error {
	for _, block := range body.Blocks {
		return fmt.Errorf("%s: unexpected block %q", block.TypeRange, block.Type)
	}
	return nil
}
