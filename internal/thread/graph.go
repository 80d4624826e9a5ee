package thread

import (
	"fmt"
	"sort"
	"time"

	"github.com/rrbutani/tweet-tree/internal/twitter"
)

// Node is one tweet in the reply graph. A node can exist before its tweet
// has been seen: a reply names its parent by id, so the parent node is
// created attribute-less and enriched if the tweet itself arrives later.
type Node struct {
	ID        uint64
	AuthorID  uint64 // 0 until the tweet has been visited
	CreatedAt time.Time
	Text      string
}

// Visited reports whether the node's own tweet has been seen, as opposed
// to the node existing only as some reply's parent.
func (n *Node) Visited() bool {
	return n.AuthorID != 0
}

// Edge is a directed parent->child link labeled with the child's author.
type Edge struct {
	Parent   uint64
	Child    uint64
	AuthorID uint64
}

// Graph is the reply graph for one thread: nodes keyed by tweet id,
// edges parent->child. Every node except the root has exactly one parent;
// the root has none. Parents logically precede children, so the graph is
// acyclic regardless of the order replies arrive in.
type Graph struct {
	root       uint64
	nodes      map[uint64]*Node
	parents    map[uint64]uint64   // child -> parent
	children   map[uint64][]uint64 // parent -> children, insertion order
	edgeAuthor map[uint64]uint64   // child -> author label on the incoming edge
}

// NewGraph creates a graph rooted at root. The root node exists from the
// start, attribute-less until visited.
func NewGraph(root uint64) *Graph {
	g := &Graph{
		root:       root,
		nodes:      make(map[uint64]*Node),
		parents:    make(map[uint64]uint64),
		children:   make(map[uint64][]uint64),
		edgeAuthor: make(map[uint64]uint64),
	}
	g.node(root)
	return g
}

func (g *Graph) node(id uint64) *Node {
	n, ok := g.nodes[id]
	if !ok {
		n = &Node{ID: id}
		g.nodes[id] = n
	}
	return n
}

// Visit records the tweet's own attributes on its node, creating the node
// if a child has not already forced it into existence.
func (g *Graph) Visit(t twitter.Tweet) {
	n := g.node(t.ID)
	n.AuthorID = t.AuthorID
	n.CreatedAt = t.CreatedAt
	n.Text = t.Text
}

// Link inserts the edge parent->child, creating either endpoint lazily.
// A child carries exactly one parent link, so relinking an already-linked
// child to a different parent is rejected.
func (g *Graph) Link(parent, child, authorID uint64) error {
	if child == g.root {
		return fmt.Errorf("link %d->%d: root cannot be a reply", parent, child)
	}
	if prev, ok := g.parents[child]; ok {
		if prev == parent {
			return nil
		}
		return fmt.Errorf("link %d->%d: reply %d already linked to %d", parent, child, child, prev)
	}

	g.node(parent)
	g.node(child)
	g.parents[child] = parent
	g.children[parent] = append(g.children[parent], child)
	g.edgeAuthor[child] = authorID
	return nil
}

// Root returns the root tweet id.
func (g *Graph) Root() uint64 {
	return g.root
}

// Len reports the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount reports the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.parents)
}

// Node returns the node for id, or nil.
func (g *Graph) Node(id uint64) *Node {
	return g.nodes[id]
}

// InDegree reports how many edges point at id: 0 for the root, 1 for
// every reply.
func (g *Graph) InDegree(id uint64) int {
	if _, ok := g.parents[id]; ok {
		return 1
	}
	return 0
}

// Children returns the direct replies to id in the order they were
// linked, which is arrival order, not thread order.
func (g *Graph) Children(id uint64) []uint64 {
	return g.children[id]
}

// Nodes returns every node ordered by id.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns every edge ordered by (parent, child). Each edge carries
// the child's author id as its label.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.parents))
	for child, parent := range g.parents {
		out = append(out, Edge{Parent: parent, Child: child, AuthorID: g.edgeAuthor[child]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parent != out[j].Parent {
			return out[i].Parent < out[j].Parent
		}
		return out[i].Child < out[j].Child
	})
	return out
}
