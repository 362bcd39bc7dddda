// Package api defines the sidebar data model shared by the manifest loader,
// the resolver, and the preview mounts. The JSON encoding of a resolved
// sidebar is the artifact consumed by the documentation renderer.
package api

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the navigation item variants.
type Kind int

const (
	// KindDoc references a documentation page by identifier.
	KindDoc Kind = iota
	// KindCategory is a labeled, possibly collapsed group of child items.
	KindCategory
	// KindLink points at an external URL.
	KindLink
	// KindInclude is a build-time splice point: it names a topic group in
	// the TOC manifest whose items replace this item during resolution.
	// Include items never survive into a resolved sidebar.
	KindInclude
)

func (k Kind) String() string {
	switch k {
	case KindDoc:
		return "doc"
	case KindCategory:
		return "category"
	case KindLink:
		return "link"
	case KindInclude:
		return "include"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Item is one node of the navigation tree.
// Which fields are meaningful depends on Kind.
type Item struct {
	Kind      Kind
	Doc       string // page identifier (KindDoc)
	Label     string // display label (KindCategory, KindLink) or group name (KindInclude)
	Collapsed bool   // initial UI state (KindCategory)
	Href      string // external URL (KindLink)
	Items     []Item // children (KindCategory)
}

// DocRef returns a doc reference item.
func DocRef(id string) Item {
	return Item{Kind: KindDoc, Doc: id}
}

// Category returns a category item with the given children.
func Category(label string, collapsed bool, items ...Item) Item {
	return Item{Kind: KindCategory, Label: label, Collapsed: collapsed, Items: items}
}

// Link returns an external link item.
func Link(label, href string) Item {
	return Item{Kind: KindLink, Label: label, Href: href}
}

// Include returns a splice-point item naming a TOC topic group.
func Include(group string) Item {
	return Item{Kind: KindInclude, Label: group}
}

// Sidebar is an ordered tree of navigation items.
type Sidebar struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// categoryJSON is the wire shape of a category item.
type categoryJSON struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Collapsed bool   `json:"collapsed"`
	Items     []Item `json:"items"`
}

// linkJSON is the wire shape of a link item.
type linkJSON struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

// includeJSON is the wire shape of an unresolved include item.
type includeJSON struct {
	Type  string `json:"type"`
	Group string `json:"group"`
}

// MarshalJSON encodes the item in renderer form: doc refs collapse to a bare
// string, everything else becomes a typed object.
func (it Item) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case KindDoc:
		return json.Marshal(it.Doc)
	case KindCategory:
		items := it.Items
		if items == nil {
			items = []Item{} // renderer expects "items": [], not null
		}
		return json.Marshal(categoryJSON{Type: "category", Label: it.Label, Collapsed: it.Collapsed, Items: items})
	case KindLink:
		return json.Marshal(linkJSON{Type: "link", Label: it.Label, Href: it.Href})
	case KindInclude:
		return json.Marshal(includeJSON{Type: "include", Group: it.Label})
	default:
		return nil, fmt.Errorf("cannot marshal item of %s", it.Kind)
	}
}

// UnmarshalJSON accepts both the bare-string doc form and typed objects.
func (it *Item) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*it = DocRef(s)
		return nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decode nav item: %w", err)
	}

	switch head.Type {
	case "category":
		var c categoryJSON
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("decode category: %w", err)
		}
		*it = Item{Kind: KindCategory, Label: c.Label, Collapsed: c.Collapsed, Items: c.Items}
	case "link":
		var l linkJSON
		if err := json.Unmarshal(data, &l); err != nil {
			return fmt.Errorf("decode link: %w", err)
		}
		*it = Link(l.Label, l.Href)
	case "include":
		var inc includeJSON
		if err := json.Unmarshal(data, &inc); err != nil {
			return fmt.Errorf("decode include: %w", err)
		}
		*it = Include(inc.Group)
	case "":
		return fmt.Errorf("nav item object missing \"type\"")
	default:
		return fmt.Errorf("unknown nav item type %q", head.Type)
	}
	return nil
}

// Validate checks structural invariants recursively. resolved controls
// whether include items are still allowed: a sidebar headed for the renderer
// must not contain any.
func (s *Sidebar) Validate(resolved bool) error {
	if s.Name == "" {
		return fmt.Errorf("sidebar has no name")
	}
	for i := range s.Items {
		if err := validateItem(&s.Items[i], resolved); err != nil {
			return fmt.Errorf("sidebar %q: %w", s.Name, err)
		}
	}
	return nil
}

func validateItem(it *Item, resolved bool) error {
	switch it.Kind {
	case KindDoc:
		if it.Doc == "" {
			return fmt.Errorf("doc item with empty identifier")
		}
	case KindCategory:
		if it.Label == "" {
			return fmt.Errorf("category with empty label")
		}
		for i := range it.Items {
			if err := validateItem(&it.Items[i], resolved); err != nil {
				return fmt.Errorf("category %q: %w", it.Label, err)
			}
		}
	case KindLink:
		if it.Label == "" {
			return fmt.Errorf("link with empty label")
		}
		if it.Href == "" {
			return fmt.Errorf("link %q with empty href", it.Label)
		}
	case KindInclude:
		if resolved {
			return fmt.Errorf("unresolved include of group %q", it.Label)
		}
		if it.Label == "" {
			return fmt.Errorf("include with empty group name")
		}
	default:
		return fmt.Errorf("invalid item kind %d", int(it.Kind))
	}
	return nil
}

// DocIDs returns every doc identifier referenced anywhere in the sidebar,
// in tree order. Used by reference checking and the preview projection.
func (s *Sidebar) DocIDs() []string {
	var ids []string
	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			switch it.Kind {
			case KindDoc:
				ids = append(ids, it.Doc)
			case KindCategory:
				walk(it.Items)
			}
		}
	}
	walk(s.Items)
	return ids
}
