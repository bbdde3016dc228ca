package wordtree

import "strings"

// Tree is a prefix tree of words. The zero value is an empty tree.
type Tree struct {
	root node
}

type node struct {
	leaf     bool
	children map[string]*node
}

// New builds a tree from dot separated patterns such as "com.example".
func New(patterns ...string) *Tree {
	t := &Tree{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		t.Insert(strings.Split(p, ".")...)
	}
	return t
}

// Insert adds a word sequence. Inserting an empty sequence, or a sequence
// below an existing one, does nothing.
func (t *Tree) Insert(words ...string) {
	if len(words) == 0 {
		return
	}
	t.root.insert(words)
}

func (n *node) insert(words []string) {
	if len(words) == 0 {
		n.leaf = true
		n.children = nil
		return
	}
	if n.leaf {
		return
	}
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	child, ok := n.children[words[0]]
	if !ok {
		child = &node{}
		n.children[words[0]] = child
	}
	child.insert(words[1:])
}

// Contains reports whether some inserted sequence is a prefix of words.
func (t *Tree) Contains(words ...string) bool {
	n := &t.root
	for _, w := range words {
		child, ok := n.children[w]
		if !ok {
			return false
		}
		if child.leaf {
			return true
		}
		n = child
	}
	return false
}

// Empty reports whether nothing has been inserted.
func (t *Tree) Empty() bool {
	return len(t.root.children) == 0
}
