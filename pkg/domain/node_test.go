package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func sampleTree() Node {
	return Node{
		Step: "Build a website",
		Children: []Node{
			{Step: "Design the layout", Children: []Node{
				{Step: "Sketch wireframes"},
				{Step: "Choose a color scheme"},
			}},
			{Step: "Develop the backend", Children: []Node{
				{Step: "Set up the database"},
				{Step: "Write API endpoints"},
			}},
			{Step: "Deploy the site"},
		},
	}
}

func TestNodeAt(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		name    string
		path    []int
		want    string
		wantErr bool
	}{
		{"root", nil, "Build a website", false},
		{"first child", []int{0}, "Design the layout", false},
		{"nested", []int{1, 1}, "Write API endpoints", false},
		{"out of range", []int{5}, "", true},
		{"negative", []int{-1}, "", true},
		{"past leaf", []int{2, 0}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tree.NodeAt(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrNodeNotFound) {
					t.Fatalf("NodeAt(%v) error = %v, want ErrNodeNotFound", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NodeAt(%v) error = %v", tt.path, err)
			}
			if got.Step != tt.want {
				t.Errorf("NodeAt(%v).Step = %q, want %q", tt.path, got.Step, tt.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	tree := sampleTree()

	node, path, ok := tree.Find("Set up the database")
	if !ok {
		t.Fatal("Find() should locate the node")
	}
	if node.Step != "Set up the database" {
		t.Errorf("Find() step = %q", node.Step)
	}
	if len(path) != 2 || path[0] != 1 || path[1] != 0 {
		t.Errorf("Find() path = %v, want [1 0]", path)
	}

	if _, _, ok := tree.Find("Not a step"); ok {
		t.Error("Find() should report a miss")
	}

	// Root matches with an empty path.
	_, path, ok = tree.Find("Build a website")
	if !ok || len(path) != 0 {
		t.Errorf("Find(root) path = %v, ok = %v, want empty path", path, ok)
	}
}

func TestReplaceAt(t *testing.T) {
	tree := sampleTree()
	replacement := Node{Step: "Develop the backend", Children: []Node{
		{Step: "Choose a framework"},
	}}

	updated, err := tree.ReplaceAt([]int{1}, replacement)
	if err != nil {
		t.Fatalf("ReplaceAt() error = %v", err)
	}

	got, err := updated.NodeAt([]int{1})
	if err != nil {
		t.Fatalf("NodeAt() error = %v", err)
	}
	if len(got.Children) != 1 || got.Children[0].Step != "Choose a framework" {
		t.Errorf("replacement not applied: %+v", got)
	}

	// The original tree must be untouched.
	orig, _ := tree.NodeAt([]int{1})
	if len(orig.Children) != 2 {
		t.Errorf("ReplaceAt() mutated the receiver: %+v", orig)
	}
}

func TestReplaceAtRoot(t *testing.T) {
	tree := sampleTree()
	updated, err := tree.ReplaceAt(nil, Node{Step: "New root"})
	if err != nil {
		t.Fatalf("ReplaceAt() error = %v", err)
	}
	if updated.Step != "New root" {
		t.Errorf("ReplaceAt(root) = %q", updated.Step)
	}
}

func TestReplaceAtInvalidPath(t *testing.T) {
	tree := sampleTree()
	if _, err := tree.ReplaceAt([]int{9}, Node{Step: "x"}); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("ReplaceAt() error = %v, want ErrNodeNotFound", err)
	}
}

func TestWalk(t *testing.T) {
	tree := sampleTree()

	var visited int
	tree.Walk(func(path []int, n Node) bool {
		visited++
		return true
	})
	if visited != tree.Count() {
		t.Errorf("Walk() visited %d nodes, Count() = %d", visited, tree.Count())
	}

	// Early stop.
	visited = 0
	tree.Walk(func(path []int, n Node) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("Walk() early stop visited %d, want 3", visited)
	}
}

func TestCountAndDepth(t *testing.T) {
	tree := sampleTree()
	if got := tree.Count(); got != 8 {
		t.Errorf("Count() = %d, want 8", got)
	}
	if got := tree.Depth(); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
	if got := (Node{Step: "leaf"}).Depth(); got != 1 {
		t.Errorf("leaf Depth() = %d, want 1", got)
	}
}

func TestLeafOmitsChildren(t *testing.T) {
	data, err := json.Marshal(Node{Step: "leaf"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"step":"leaf"}` {
		t.Errorf("leaf JSON = %s, want children omitted", data)
	}
}
