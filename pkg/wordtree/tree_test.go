package wordtree

import "testing"

func TestTree_Contains(t *testing.T) {
	var tree Tree
	tree.Insert("com", "example", "api")

	tests := []struct {
		words []string
		want  bool
	}{
		{nil, false},
		{[]string{"com"}, false},
		{[]string{"com", "example"}, false},
		{[]string{"com", "example", "api"}, true},
		{[]string{"com", "example", "api", "prefix"}, true},
		{[]string{"org", "example", "api"}, false},
	}

	for _, tt := range tests {
		if got := tree.Contains(tt.words...); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.words, got, tt.want)
		}
	}
}

func TestTree_InsertBelowLeaf(t *testing.T) {
	var tree Tree
	tree.Insert("com", "example")
	tree.Insert("com", "example", "api")

	if !tree.Contains("com", "example", "www") {
		t.Error("shorter pattern should still match every extension")
	}
}

func TestTree_InsertAboveExisting(t *testing.T) {
	var tree Tree
	tree.Insert("com", "example", "api")
	tree.Insert("com", "example")

	if !tree.Contains("com", "example", "www") {
		t.Error("shorter pattern inserted later should take over")
	}
}

func TestTree_InsertEmpty(t *testing.T) {
	var tree Tree
	tree.Insert()

	if !tree.Empty() {
		t.Error("empty insert should leave the tree empty")
	}
	if tree.Contains() {
		t.Error("empty query should never match")
	}
}

func TestNew(t *testing.T) {
	tree := New("127", "10.0", "")

	tests := []struct {
		addr []string
		want bool
	}{
		{[]string{"127", "0", "0", "1"}, true},
		{[]string{"10", "0", "3", "4"}, true},
		{[]string{"10", "1", "3", "4"}, false},
		{[]string{"192", "168", "1", "1"}, false},
	}

	for _, tt := range tests {
		if got := tree.Contains(tt.addr...); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
