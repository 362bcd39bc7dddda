package tree

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/sidetree/api"
)

// PageSource resolves a doc identifier to its page content.
type PageSource interface {
	ReadPage(id string) ([]byte, error)
}

// DirPages reads pages from a docs directory: a doc id maps to <id>.md or
// <id>.mdx relative to the filesystem root.
type DirPages struct {
	FS billy.Filesystem
}

func (d DirPages) ReadPage(id string) ([]byte, error) {
	var firstErr error
	for _, ext := range []string{".md", ".mdx"} {
		content, err := util.ReadFile(d.FS, id+ext)
		if err == nil {
			return content, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("page %s: %w", id, firstErr)
}

// Project renders a resolved sidebar into a Store for the preview mounts.
// Categories become directories, docs become files holding the page content,
// links become small .url files. The resolved sidebar itself is exposed as
// _sidebar.json at the root. Projection never fails: a doc whose page cannot
// be read gets placeholder content so the tree stays browsable.
func Project(sidebar api.Sidebar, pages PageSource) (*Store, error) {
	if err := sidebar.Validate(true); err != nil {
		return nil, err
	}

	store := NewStore()
	now := time.Now()

	sidebarJSON, err := json.MarshalIndent(&sidebar, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sidebar: %w", err)
	}
	store.AddRoot(&Node{
		ID:      "_sidebar.json",
		Mode:    0o444,
		ModTime: now,
		Data:    append(sidebarJSON, '\n'),
	})

	p := &projector{store: store, pages: pages, now: now}
	for _, it := range sidebar.Items {
		if err := p.addItem(it, "", true); err != nil {
			return nil, err
		}
	}
	return store, nil
}

type projector struct {
	store *Store
	pages PageSource
	now   time.Time
	names map[string]bool // occupied node IDs, for collision suffixes
}

func (p *projector) addItem(it api.Item, parent string, root bool) error {
	switch it.Kind {
	case api.KindCategory:
		id := p.claim(parent, slug(it.Label))
		dir := &Node{ID: id, Mode: fs.ModeDir | 0o555, ModTime: p.now}
		p.attach(dir, parent, root)
		for _, child := range it.Items {
			if err := p.addItem(child, id, false); err != nil {
				return err
			}
		}
		return nil

	case api.KindDoc:
		content, err := p.pages.ReadPage(it.Doc)
		if err != nil {
			content = []byte(fmt.Sprintf("missing page: %s\n", it.Doc))
		}
		id := p.claim(parent, path.Base(it.Doc)+".md")
		p.attach(&Node{ID: id, Mode: 0o444, ModTime: p.now, Data: content}, parent, root)
		return nil

	case api.KindLink:
		content := []byte(it.Label + "\n" + it.Href + "\n")
		id := p.claim(parent, slug(it.Label)+".url")
		p.attach(&Node{ID: id, Mode: 0o444, ModTime: p.now, Data: content}, parent, root)
		return nil

	default:
		return fmt.Errorf("cannot project item of %s", it.Kind)
	}
}

// attach stores the node and links it under its parent (or as a root).
func (p *projector) attach(n *Node, parent string, root bool) {
	if root {
		p.store.AddRoot(n)
		return
	}
	p.store.AddNode(n)
	if dir, err := p.store.GetNode(parent); err == nil {
		dir.Children = append(dir.Children, n.ID)
		p.store.AddNode(dir)
	}
}

// claim reserves a unique node ID under parent, suffixing duplicates.
func (p *projector) claim(parent, name string) string {
	if p.names == nil {
		p.names = make(map[string]bool)
	}
	id := path.Join(parent, name)
	if !p.names[id] {
		p.names[id] = true
		return id
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := path.Join(parent, fmt.Sprintf("%s-%d%s", base, i, ext))
		if !p.names[candidate] {
			p.names[candidate] = true
			return candidate
		}
	}
}

// slug converts a display label into a filesystem-safe name.
func slug(label string) string {
	var b strings.Builder
	lastDash := true // suppress leading dashes
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "untitled"
	}
	return s
}
