// Package wordtree provides a prefix matcher over sequences of words.
//
// A tree holds word sequences such as reversed domain labels
// ("com", "example", "api") or address octets ("10", "0"). A query matches
// when some inserted sequence is a prefix of it:
//
//	var t wordtree.Tree
//	t.Insert("com", "example", "api")
//	t.Contains("com", "example", "api", "v1") // true
//	t.Contains("com", "example")              // false
//
// A Tree is not safe for concurrent mutation; build it once and share it
// read-only.
package wordtree
