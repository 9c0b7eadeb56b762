package domain

import "fmt"

// Node is a single entry in a task tree: a step description plus its
// ordered substeps. Leaves omit the children field entirely when
// serialized, matching the historical record format.
type Node struct {
	Step     string `json:"step"`
	Children []Node `json:"children,omitempty"`
}

// Clone returns a deep copy of the node and its subtree.
func (n Node) Clone() Node {
	out := Node{Step: n.Step}
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Count returns the total number of nodes in the subtree, including n.
func (n Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Depth returns the height of the subtree. A leaf has depth 1.
func (n Node) Depth() int {
	max := 0
	for _, c := range n.Children {
		if d := c.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// NodeAt walks the tree following a path of child indices and returns the
// node it lands on. An empty path addresses the root itself.
func (n Node) NodeAt(path []int) (Node, error) {
	current := n
	for i, idx := range path {
		if idx < 0 || idx >= len(current.Children) {
			return Node{}, fmt.Errorf("index %d at position %d: %w", idx, i, ErrNodeNotFound)
		}
		current = current.Children[idx]
	}
	return current, nil
}

// Find locates the first node whose step text matches, searching depth
// first, and returns it with its index path from the root.
func (n Node) Find(step string) (Node, []int, bool) {
	return n.find(step, nil)
}

func (n Node) find(step string, path []int) (Node, []int, bool) {
	if n.Step == step {
		return n, append([]int(nil), path...), true
	}
	for i, c := range n.Children {
		if found, p, ok := c.find(step, append(path, i)); ok {
			return found, p, true
		}
	}
	return Node{}, nil, false
}

// ReplaceAt returns a copy of the tree with the node at the given path
// replaced. The receiver is never mutated. An empty path replaces the
// root, which simply yields the replacement.
func (n Node) ReplaceAt(path []int, replacement Node) (Node, error) {
	if len(path) == 0 {
		return replacement.Clone(), nil
	}

	out := n.Clone()
	current := &out
	for i := 0; i < len(path)-1; i++ {
		idx := path[i]
		if idx < 0 || idx >= len(current.Children) {
			return Node{}, fmt.Errorf("index %d at position %d: %w", idx, i, ErrNodeNotFound)
		}
		current = &current.Children[idx]
	}

	last := path[len(path)-1]
	if last < 0 || last >= len(current.Children) {
		return Node{}, fmt.Errorf("index %d at position %d: %w", last, len(path)-1, ErrNodeNotFound)
	}
	current.Children[last] = replacement.Clone()

	return out, nil
}

// Walk visits every node in depth-first order, passing the index path of
// each node. Returning false from the visitor stops the walk early.
func (n Node) Walk(visit func(path []int, node Node) bool) {
	n.walk(nil, visit)
}

func (n Node) walk(path []int, visit func(path []int, node Node) bool) bool {
	if !visit(append([]int(nil), path...), n) {
		return false
	}
	for i, c := range n.Children {
		if !c.walk(append(path, i), visit) {
			return false
		}
	}
	return true
}
