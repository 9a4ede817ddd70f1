package mindmap

import (
	"strings"

	"github.com/learnable-ai/companion/internal/models"
)

// MermaidRenderer emits a top-down Mermaid flowchart.
type MermaidRenderer struct{}

func (MermaidRenderer) Name() string { return "mermaid" }

func (MermaidRenderer) Render(root *models.MindmapNode) (Diagram, error) {
	var b strings.Builder
	b.WriteString("graph TD\n")

	if label := check(root); label != "" {
		writeNode(&b, placeholderID, label)
		return Diagram{Format: "mermaid", Body: b.String()}, nil
	}

	var edges []string
	walk(root, func(v visit) {
		writeNode(&b, v.id, labelOf(v.node))
		if v.parentID != "" {
			edges = append(edges, "    "+v.parentID+" --> "+v.id+"\n")
		}
	})
	for _, e := range edges {
		b.WriteString(e)
	}
	return Diagram{Format: "mermaid", Body: b.String()}, nil
}

func writeNode(b *strings.Builder, id, label string) {
	b.WriteString("    ")
	b.WriteString(id)
	b.WriteString(`["`)
	b.WriteString(label)
	b.WriteString("\"]\n")
}
