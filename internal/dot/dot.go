// Package dot renders a finished reply graph as Graphviz DOT.
package dot

import (
	"fmt"
	"io"
	"strings"

	"github.com/rrbutani/tweet-tree/internal/thread"
)

// Formatter writes a reply graph in DOT form. Output is deterministic:
// nodes and edges are emitted in ascending id order.
type Formatter struct {
	// Name is the digraph name. Defaults to "replies".
	Name string
}

// NewFormatter creates a formatter with default options.
func NewFormatter() *Formatter {
	return &Formatter{Name: "replies"}
}

// Format writes g to w, labeling nodes with author handles where known and
// filling them with the author's display color.
func (f *Formatter) Format(w io.Writer, g *thread.Graph, d *thread.Directory) error {
	name := f.Name
	if name == "" {
		name = "replies"
	}

	authors := make(map[uint64]*thread.Author)
	for _, a := range d.Authors() {
		authors[a.ID] = a
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	b.WriteString("\trankdir=TB;\n")
	b.WriteString("\tnode [style=filled, fillcolor=\"#eeeeee\"];\n\n")

	for _, n := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, authors))}
		if a, ok := authors[n.AuthorID]; ok && n.Visited() {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", a.Color.Hex()))
		}
		if n.ID == g.Root() {
			attrs = append(attrs, "shape=box")
		}
		fmt.Fprintf(&b, "\tt%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	b.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "\tt%d -> t%d;\n", e.Parent, e.Child)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// nodeLabel prefers the author handle; an unvisited node (seen only as a
// parent reference) falls back to its id.
func nodeLabel(n *thread.Node, authors map[uint64]*thread.Author) string {
	if n.Visited() {
		if a, ok := authors[n.AuthorID]; ok && a.Handle != "" {
			return fmt.Sprintf("@%s\n%d", a.Handle, n.ID)
		}
	}
	return fmt.Sprintf("%d", n.ID)
}
