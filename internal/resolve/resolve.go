// Package resolve implements the sidebar build step: a one-shot, pure
// transform that splices TOC topic groups into the static tree's include
// points. No state survives the call and the inputs are never mutated.
package resolve

import (
	"fmt"

	"github.com/agentic-research/sidetree/api"
	"github.com/agentic-research/sidetree/internal/toc"
)

// Build resolves every include item in static against the TOC manifest.
// Each include is replaced in place by the items of the first group whose
// label matches; all other items pass through unchanged, in order. A group
// that cannot be found fails the build (toc.ErrGroupNotFound).
func Build(static api.Sidebar, m *toc.Manifest) (api.Sidebar, error) {
	items, err := resolveItems(static.Items, m)
	if err != nil {
		return api.Sidebar{}, fmt.Errorf("resolve sidebar %q: %w", static.Name, err)
	}
	resolved := api.Sidebar{Name: static.Name, Items: items}
	if err := resolved.Validate(true); err != nil {
		return api.Sidebar{}, err
	}
	return resolved, nil
}

// BuildFromFile is the file-path form of Build: it reads the TOC manifest
// once and resolves against it.
func BuildFromFile(static api.Sidebar, tocPath string) (api.Sidebar, error) {
	m, err := toc.Load(tocPath)
	if err != nil {
		return api.Sidebar{}, err
	}
	return Build(static, m)
}

func resolveItems(items []api.Item, m *toc.Manifest) ([]api.Item, error) {
	out := make([]api.Item, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case api.KindInclude:
			g, err := m.Find(it.Label)
			if err != nil {
				return nil, err
			}
			// Spliced items may themselves contain categories, never includes.
			out = append(out, g.Items...)
		case api.KindCategory:
			children, err := resolveItems(it.Items, m)
			if err != nil {
				return nil, fmt.Errorf("category %q: %w", it.Label, err)
			}
			cat := it
			cat.Items = children
			out = append(out, cat)
		default:
			out = append(out, it)
		}
	}
	return out, nil
}
