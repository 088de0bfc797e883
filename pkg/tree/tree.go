// Package tree renders labelled trees with box-drawing connectors:
//
//	root
//	├─┬ child with children
//	│ └── grandchild
//	└── last child
package tree

import (
	"bufio"
	"io"
)

const (
	siblingConnector     = "├"
	lastSiblingConnector = "└"
	childDepsConnector   = "┬"
	childNoDepsConnector = "─"
	verticalConnector    = "│"
	emptyConnector       = " "
)

// Node is a tree node. A node owns its children; trees are built once and
// rendered once.
type Node struct {
	Text     string
	Children []*Node
}

// New returns a leaf node with the given text.
func New(text string) *Node {
	return &Node{Text: text}
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Renderer writes trees. The zero value renders plain connectors.
type Renderer struct {
	// Connector styles the connector part of a child line, for example to
	// gray it out on a terminal. Nil leaves it unstyled.
	Connector func(string) string
}

// Write renders the tree rooted at root to w: the root's text on the first
// line, then one line per descendant.
func (r Renderer) Write(w io.Writer, root *Node) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(root.Text)
	bw.WriteByte('\n')
	r.writeChildren(bw, "", root.Children)
	return bw.Flush()
}

func (r Renderer) writeChildren(w *bufio.Writer, prefix string, children []*Node) {
	for i, child := range children {
		last := i == len(children)-1

		sibling, next := siblingConnector, verticalConnector
		if last {
			sibling, next = lastSiblingConnector, emptyConnector
		}
		branch := childDepsConnector
		if child.IsLeaf() {
			branch = childNoDepsConnector
		}

		connector := prefix + sibling + "─" + branch
		if r.Connector != nil {
			connector = r.Connector(connector)
		}
		w.WriteString(connector)
		w.WriteByte(' ')
		w.WriteString(child.Text)
		w.WriteByte('\n')

		r.writeChildren(w, prefix+next+emptyConnector, child.Children)
	}
}

// Write renders root with plain connectors.
func Write(w io.Writer, root *Node) error {
	return Renderer{}.Write(w, root)
}
