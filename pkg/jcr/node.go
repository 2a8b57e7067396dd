package jcr

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Kind discriminates the variants of [Node].
type Kind int

const (
	// KindComponent marks a [Component] (cq:Component descriptor).
	KindComponent Kind = iota + 1
	// KindClientlib marks a [Clientlib] (cq:ClientLibraryFolder descriptor).
	KindClientlib
)

// String returns the JCR primary type the kind was extracted from.
func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "cq:Component"
	case KindClientlib:
		return "cq:ClientLibraryFolder"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is a descriptor extracted from a content package.
//
// The interface is sealed: only [Component] and [Clientlib] implement it.
// Key returns the node's identity within a scan (resource type or path) and
// is also its ordering key.
type Node interface {
	Kind() Kind
	Key() string
	String() string
	node()
}

// Component is a cq:Component descriptor.
//
// ComponentGroup and ClassName are optional; the empty string means the
// attribute was absent.
type Component struct {
	ResourceType   string `json:"resource_type"`
	Title          string `json:"title"`
	ComponentGroup string `json:"component_group,omitempty"`
	ClassName      string `json:"class_name,omitempty"`
}

// Kind returns [KindComponent].
func (Component) Kind() Kind { return KindComponent }

// Key returns the resource type.
func (c Component) Key() string { return c.ResourceType }

func (c Component) String() string {
	return fmt.Sprintf("Component(%s, %q)", c.ResourceType, c.Title)
}

func (Component) node() {}

// Clientlib is a cq:ClientLibraryFolder descriptor.
//
// Path is the folder's location relative to jcr_root, slash separated.
// Categories, Dependencies and Embed keep the order they were declared in.
type Clientlib struct {
	Path         string   `json:"path"`
	Categories   []string `json:"categories"`
	Dependencies []string `json:"dependencies,omitempty"`
	Embed        []string `json:"embed,omitempty"`
}

// Kind returns [KindClientlib].
func (Clientlib) Kind() Kind { return KindClientlib }

// Key returns the path.
func (c Clientlib) Key() string { return c.Path }

func (c Clientlib) String() string {
	return fmt.Sprintf("Clientlib(%s, [%s])", c.Path, strings.Join(c.Categories, ","))
}

func (Clientlib) node() {}

// AsComponent unwraps a Component held by value or by pointer.
func AsComponent(n Node) (Component, bool) {
	switch v := n.(type) {
	case Component:
		return v, true
	case *Component:
		if v != nil {
			return *v, true
		}
	}
	return Component{}, false
}

// AsClientlib unwraps a Clientlib held by value or by pointer.
func AsClientlib(n Node) (Clientlib, bool) {
	switch v := n.(type) {
	case Clientlib:
		return v, true
	case *Clientlib:
		if v != nil {
			return *v, true
		}
	}
	return Clientlib{}, false
}

// isNil reports whether n is nil or a nil *Component / *Clientlib.
func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Component:
		return v == nil
	case *Clientlib:
		return v == nil
	}
	return false
}

// Equal reports whether a and b are structurally equal: same kind and
// identical fields. Two nil nodes are equal, typed nil pointers included.
func Equal(a, b Node) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindComponent:
		ca, _ := AsComponent(a)
		cb, _ := AsComponent(b)
		return ca == cb
	case KindClientlib:
		la, _ := AsClientlib(a)
		lb, _ := AsClientlib(b)
		return la.Path == lb.Path &&
			slices.Equal(la.Categories, lb.Categories) &&
			slices.Equal(la.Dependencies, lb.Dependencies) &&
			slices.Equal(la.Embed, lb.Embed)
	}
	return false
}

// Compare orders nodes by kind, then by key. Nodes with equal kind and key
// compare equal even when other fields differ; use [Equal] for identity.
func Compare(a, b Node) int {
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	return strings.Compare(a.Key(), b.Key())
}

// Fingerprint returns a SHA-256 hex digest over the node's kind and fields.
// Structurally equal nodes share a fingerprint, which makes it usable as a
// set or map key where Node values (holding slices) are not comparable.
func Fingerprint(n Node) string {
	var payload any
	switch n.Kind() {
	case KindComponent:
		c, _ := AsComponent(n)
		payload = c
	case KindClientlib:
		c, _ := AsClientlib(n)
		payload = normalizedClientlib(c)
	}
	data, _ := json.Marshal(struct {
		Kind Kind `json:"kind"`
		Node any  `json:"node"`
	}{n.Kind(), payload})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// normalizedClientlib maps nil lists to empty ones so a clientlib decoded
// with "[]" and one built with nil fingerprint identically, matching Equal.
func normalizedClientlib(c Clientlib) Clientlib {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	c.Categories = orEmpty(c.Categories)
	c.Dependencies = orEmpty(c.Dependencies)
	c.Embed = orEmpty(c.Embed)
	return c
}

// SortNodes sorts nodes in place by [Compare], breaking ties by fingerprint
// so the order is total.
func SortNodes(nodes []Node) {
	slices.SortFunc(nodes, func(a, b Node) int {
		if c := Compare(a, b); c != 0 {
			return c
		}
		return strings.Compare(Fingerprint(a), Fingerprint(b))
	})
}
