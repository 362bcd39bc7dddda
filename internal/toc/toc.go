// Package toc loads the generated table-of-contents manifest: a JSON array
// of topic groups, each carrying a label and an ordered list of nav items.
// The file is read once at build time and the result is immutable.
package toc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"

	"github.com/agentic-research/sidetree/api"
)

// ErrGroupNotFound is returned by Find when no group carries the requested
// label. Resolution treats this as fatal — a missing group never degrades
// to an empty category.
var ErrGroupNotFound = errors.New("topic group not found")

// groupsPath selects every top-level entry of the manifest array.
var groupsPath = jp.MustParseString("$[*]")

// Group is one named collection of nav items from the manifest.
type Group struct {
	Label string
	Items []api.Item
}

// Manifest is the parsed TOC file.
type Manifest struct {
	Path   string
	Groups []Group
}

// Load reads and parses the manifest at path. Any structural problem —
// unreadable file, invalid JSON, a top-level value that is not an array,
// or an entry without a string label — fails the load.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read toc manifest: %w", err)
	}

	var root any
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("parse toc manifest %s: %w", path, err)
	}
	if _, ok := root.([]any); !ok {
		return nil, fmt.Errorf("toc manifest %s: top-level value is not an array", path)
	}

	m := &Manifest{Path: path}
	for i, entry := range groupsPath.Get(root) {
		g, err := decodeGroup(entry)
		if err != nil {
			return nil, fmt.Errorf("toc manifest %s: group %d: %w", path, i, err)
		}
		m.Groups = append(m.Groups, g)
	}
	return m, nil
}

// Find returns the first group whose label matches. Order is manifest order;
// duplicate labels are legal and the first occurrence wins.
func (m *Manifest) Find(label string) (Group, error) {
	for _, g := range m.Groups {
		if g.Label == label {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("%w: %q in %s", ErrGroupNotFound, label, m.Path)
}

func decodeGroup(entry any) (Group, error) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return Group{}, fmt.Errorf("entry is not an object")
	}
	label, ok := obj["label"].(string)
	if !ok || label == "" {
		return Group{}, fmt.Errorf("entry has no string \"label\"")
	}

	g := Group{Label: label}
	rawItems, present := obj["items"]
	if !present {
		return g, nil
	}
	list, ok := rawItems.([]any)
	if !ok {
		return Group{}, fmt.Errorf("group %q: \"items\" is not an array", label)
	}
	for i, raw := range list {
		item, err := decodeItem(raw)
		if err != nil {
			return Group{}, fmt.Errorf("group %q: item %d: %w", label, i, err)
		}
		g.Items = append(g.Items, item)
	}
	return g, nil
}

// decodeItem converts a generic JSON value into an api.Item by routing it
// back through the canonical codec. Bare strings become doc refs; objects
// must carry a known "type".
func decodeItem(raw any) (api.Item, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return api.Item{}, err
	}
	var item api.Item
	if err := json.Unmarshal(b, &item); err != nil {
		return api.Item{}, err
	}
	return item, nil
}
