package mindmap

import (
	"encoding/json"
	"fmt"

	"github.com/learnable-ai/companion/internal/models"
)

// Spacing of the layout grid, in client pixels.
const (
	NodeSpacing  = 180.0
	LevelSpacing = 120.0
)

// LayoutNode is a positioned node.
type LayoutNode struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Depth int     `json:"depth"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// LayoutLink connects a parent to a child by ID.
type LayoutLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Layout is the positioned tree sent to a graph-drawing client.
type Layout struct {
	Nodes []LayoutNode `json:"nodes"`
	Links []LayoutLink `json:"links"`
}

// LayoutRenderer computes a tidy top-down layout: leaves are spaced evenly in
// visiting order and every parent is centered over its children.
type LayoutRenderer struct{}

func (LayoutRenderer) Name() string { return "layout" }

func (r LayoutRenderer) Render(root *models.MindmapNode) (Diagram, error) {
	body, err := json.Marshal(r.Layout(root))
	if err != nil {
		return Diagram{}, fmt.Errorf("encode layout: %w", err)
	}
	return Diagram{Format: "layout+json", Body: string(body)}, nil
}

// Layout positions every node of root.
func (LayoutRenderer) Layout(root *models.MindmapNode) Layout {
	if label := check(root); label != "" {
		return Layout{
			Nodes: []LayoutNode{{ID: placeholderID, Name: label}},
			Links: []LayoutLink{},
		}
	}

	var (
		out  Layout
		next float64
	)
	var place func(n *models.MindmapNode, id string, depth int) float64
	place = func(n *models.MindmapNode, id string, depth int) float64 {
		idx := len(out.Nodes)
		out.Nodes = append(out.Nodes, LayoutNode{
			ID:    id,
			Name:  labelOf(n),
			Depth: depth,
			Y:     float64(depth) * LevelSpacing,
		})

		var x float64
		if len(n.Children) == 0 {
			x = next * NodeSpacing
			next++
		} else {
			var first, last float64
			for i, c := range n.Children {
				cid := childID(id, depth+1, i)
				out.Links = append(out.Links, LayoutLink{Source: id, Target: cid})
				cx := place(c, cid, depth+1)
				if i == 0 {
					first = cx
				}
				last = cx
			}
			x = (first + last) / 2
		}
		out.Nodes[idx].X = x
		return x
	}
	place(root, rootID, 0)
	if out.Links == nil {
		out.Links = []LayoutLink{}
	}
	return out
}
