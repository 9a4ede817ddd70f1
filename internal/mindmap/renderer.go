// Package mindmap renders a MindmapNode tree for display.
//
// Two renderers share the same node identifiers: a Mermaid text diagram and a
// positioned tree layout for a graph-drawing client. Both degrade to a single
// placeholder node when the tree is empty, childless or malformed.
package mindmap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/learnable-ai/companion/internal/models"
)

const (
	rootID        = "root"
	placeholderID = "placeholder"

	// MaxLabelLen is the longest label kept after sanitizing.
	MaxLabelLen = 50
	// maxDepth guards against runaway trees.
	maxDepth = 64
)

const (
	noDataLabel      = "No data"
	invalidDataLabel = "Invalid data"
)

// Diagram is a rendered mind map.
type Diagram struct {
	Format string `json:"format"`
	Body   string `json:"body"`
}

// Renderer turns a tree into a Diagram.
type Renderer interface {
	Name() string
	Render(root *models.MindmapNode) (Diagram, error)
}

var registry = map[string]Renderer{}

// Register makes r available through ByName.
func Register(r Renderer) {
	registry[r.Name()] = r
}

func init() {
	Register(MermaidRenderer{})
	Register(LayoutRenderer{})
}

// DefaultRenderer is used when no renderer is named.
const DefaultRenderer = "mermaid"

// ByName returns a registered renderer.
func ByName(name string) (Renderer, error) {
	if name == "" {
		name = DefaultRenderer
	}
	r, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown renderer %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return r, nil
}

// Names lists the registered renderers.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SanitizeLabel strips brackets and parentheses, keeps letters, digits,
// spaces, hyphens and underscores, and truncates to MaxLabelLen.
func SanitizeLabel(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if len(out) > MaxLabelLen {
		out = strings.TrimSpace(out[:MaxLabelLen])
	}
	return out
}

// childID builds the path-based identifier parentId_level_index.
func childID(parentID string, level, index int) string {
	return parentID + "_" + strconv.Itoa(level) + "_" + strconv.Itoa(index)
}

// visit is one node reached by walk, with its identifiers.
type visit struct {
	id       string
	parentID string
	depth    int
	node     *models.MindmapNode
}

// check classifies a tree: "" when renderable, otherwise the placeholder label.
func check(root *models.MindmapNode) string {
	if root == nil || strings.TrimSpace(root.Name) == "" || len(root.Children) == 0 {
		return noDataLabel
	}
	seen := make(map[*models.MindmapNode]bool)
	var ok func(n *models.MindmapNode, depth int) bool
	ok = func(n *models.MindmapNode, depth int) bool {
		if n == nil || depth > maxDepth || seen[n] {
			return false
		}
		seen[n] = true
		for _, c := range n.Children {
			if !ok(c, depth+1) {
				return false
			}
		}
		return true
	}
	if !ok(root, 0) {
		return invalidDataLabel
	}
	return ""
}

// walk visits a valid tree in pre-order.
func walk(root *models.MindmapNode, fn func(v visit)) {
	var rec func(n *models.MindmapNode, id, parentID string, depth int)
	rec = func(n *models.MindmapNode, id, parentID string, depth int) {
		fn(visit{id: id, parentID: parentID, depth: depth, node: n})
		for i, c := range n.Children {
			rec(c, childID(id, depth+1, i), id, depth+1)
		}
	}
	rec(root, rootID, "", 0)
}

func labelOf(n *models.MindmapNode) string {
	if l := SanitizeLabel(n.Name); l != "" {
		return l
	}
	return "Untitled"
}
