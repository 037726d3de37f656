// Package scanner walks a namespace tree and yields the fully-qualified
// identifiers of the types catalogued under it.
package scanner

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrEmptyNamespace is returned for a blank root.
	ErrEmptyNamespace = errors.New("scanner: namespace is empty")
	// ErrNamespaceNotFound is returned when nothing is catalogued at or
	// below the root. It is not fatal: the scan simply yields nothing.
	ErrNamespaceNotFound = errors.New("scanner: namespace not found")
)

// Source is the view of a type catalog the scanner needs.
// *stereotype.Catalog implements it.
type Source interface {
	Namespaces() []string
	Names(namespace string) []string
}

// Scan returns every identifier under root, depth first: the types of a
// namespace in registration order, then its sub-namespaces in lexical order.
// Namespaces are slash-separated package paths.
func Scan(src Source, root string) ([]string, error) {
	root = strings.Trim(strings.TrimSpace(root), "/")
	if root == "" {
		return nil, ErrEmptyNamespace
	}

	children := make(map[string][]string)
	found := false
	for _, ns := range src.Namespaces() {
		if ns != root && !strings.HasPrefix(ns, root+"/") {
			continue
		}
		found = true
		// link every intermediate node so empty directories still recurse
		for child := ns; child != root; {
			parent := child[:strings.LastIndex(child, "/")]
			if !slices.Contains(children[parent], child) {
				children[parent] = append(children[parent], child)
			}
			child = parent
		}
	}
	if !found {
		return nil, ErrNamespaceNotFound
	}

	var out []string
	walk(src, root, children, &out)
	return out, nil
}

func walk(src Source, ns string, children map[string][]string, out *[]string) {
	*out = append(*out, src.Names(ns)...)
	subs := children[ns]
	slices.Sort(subs)
	for _, sub := range subs {
		walk(src, sub, children, out)
	}
}
