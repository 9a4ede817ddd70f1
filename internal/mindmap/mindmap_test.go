package mindmap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/learnable-ai/companion/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *models.MindmapNode {
	return &models.MindmapNode{
		Name: "Cell Biology",
		Children: []*models.MindmapNode{
			{Name: "Organelles (overview)", Children: []*models.MindmapNode{
				{Name: "Nucleus"},
				{Name: "Mitochondria [powerhouse]"},
			}},
			{Name: "Membrane"},
			{Name: "Division", Children: []*models.MindmapNode{
				{Name: "Mitosis"},
				{Name: "Meiosis"},
				{Name: "Mitosis"},
			}},
		},
	}
}

func mermaidLines(body, marker string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.Contains(line, marker) {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

func TestMermaid_EdgesAndIDs(t *testing.T) {
	root := sampleTree()
	d, err := MermaidRenderer{}.Render(root)
	require.NoError(t, err)

	assert.Equal(t, "mermaid", d.Format)
	assert.True(t, strings.HasPrefix(d.Body, "graph TD\n"))

	nodes := mermaidLines(d.Body, `["`)
	edges := mermaidLines(d.Body, "-->")
	assert.Len(t, nodes, root.Count())
	assert.Len(t, edges, root.Count()-1)

	ids := make(map[string]bool)
	for _, n := range nodes {
		id := n[:strings.Index(n, `["`)]
		assert.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
	}
	assert.True(t, ids["root"])
	assert.True(t, ids["root_1_0"])
	assert.True(t, ids["root_1_2_2_2"])

	assert.Contains(t, d.Body, `root_1_0["Organelles overview"]`)
	assert.Contains(t, d.Body, `root_1_0_2_1["Mitochondria powerhouse"]`)
	assert.Contains(t, d.Body, "root_1_2 --> root_1_2_2_0")
}

func TestMermaid_Placeholders(t *testing.T) {
	loop := &models.MindmapNode{Name: "Loop"}
	loop.Children = []*models.MindmapNode{loop}

	tests := []struct {
		name  string
		root  *models.MindmapNode
		label string
		nodes int
	}{
		{"nilRoot", nil, "No data", 1},
		{"blankName", &models.MindmapNode{Name: "  "}, "No data", 1},
		{"nilChild", &models.MindmapNode{Name: "Topic", Children: []*models.MindmapNode{nil}}, "Invalid data", 1},
		{"cycle", loop, "Invalid data", 1},
		{"leafRoot", &models.MindmapNode{Name: "Just a topic"}, "No data", 1},
		{"emptyChildren", &models.MindmapNode{Name: "Photosynthesis", Children: []*models.MindmapNode{}}, "No data", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := MermaidRenderer{}.Render(tt.root)
			require.NoError(t, err)
			assert.Len(t, mermaidLines(d.Body, `["`), tt.nodes)
			assert.Empty(t, mermaidLines(d.Body, "-->"))
			assert.Contains(t, d.Body, tt.label)
		})
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := map[string]string{
		"Simple":                        "Simple",
		"With (parens) and [brackets]":  "With parens and brackets",
		"Quotes \"and\" <tags>; ok":     "Quotes and tags ok",
		"snake_case-and-kebab":          "snake_case-and-kebab",
		"Café":                          "Caf",
		strings.Repeat("abcdefghij", 7): strings.Repeat("abcdefghij", 5),
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeLabel(in), in)
	}
}

func TestLayout(t *testing.T) {
	root := sampleTree()
	l := LayoutRenderer{}.Layout(root)

	require.Len(t, l.Nodes, root.Count())
	assert.Len(t, l.Links, root.Count()-1)

	byID := make(map[string]LayoutNode)
	for _, n := range l.Nodes {
		byID[n.ID] = n
	}
	require.Len(t, byID, len(l.Nodes))

	r := byID["root"]
	assert.Equal(t, 0, r.Depth)
	assert.Equal(t, 0.0, r.Y)

	// Parents sit between their first and last child.
	org, nucleus, mito := byID["root_1_0"], byID["root_1_0_2_0"], byID["root_1_0_2_1"]
	assert.Equal(t, (nucleus.X+mito.X)/2, org.X)
	assert.Equal(t, 2*LevelSpacing, nucleus.Y)

	// Leaves never overlap.
	seen := make(map[float64]bool)
	for _, n := range l.Nodes {
		if n.Depth == 2 || n.ID == "root_1_1" {
			assert.False(t, seen[n.X], "overlap at %v", n.X)
			seen[n.X] = true
		}
	}

	for _, link := range l.Links {
		assert.Contains(t, byID, link.Source)
		assert.Contains(t, byID, link.Target)
	}
}

func TestLayoutRenderer_Placeholder(t *testing.T) {
	d, err := LayoutRenderer{}.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "layout+json", d.Format)

	var l Layout
	require.NoError(t, json.Unmarshal([]byte(d.Body), &l))
	require.Len(t, l.Nodes, 1)
	assert.Equal(t, "No data", l.Nodes[0].Name)
	assert.Empty(t, l.Links)
}

func TestLayout_ChildlessRoot(t *testing.T) {
	root := &models.MindmapNode{Name: "Photosynthesis", Children: []*models.MindmapNode{}}
	l := LayoutRenderer{}.Layout(root)

	require.Len(t, l.Nodes, 1)
	assert.Equal(t, "placeholder", l.Nodes[0].ID)
	assert.Equal(t, "No data", l.Nodes[0].Name)
	assert.Empty(t, l.Links)

	d, err := MermaidRenderer{}.Render(root)
	require.NoError(t, err)
	assert.NotContains(t, d.Body, "Photosynthesis")
}

func TestByName(t *testing.T) {
	r, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "mermaid", r.Name())

	r, err = ByName("layout")
	require.NoError(t, err)
	assert.Equal(t, "layout", r.Name())

	_, err = ByName("graphviz")
	assert.ErrorContains(t, err, "layout, mermaid")
}
