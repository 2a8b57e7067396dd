package jcr

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/jdigger/aem-grapher/pkg/errors"
)

// AssociationType names a relation between two descriptor nodes and declares
// which node kinds it accepts on each side.
type AssociationType int

const (
	// ClientlibForComponent links a component to the clientlib living in its
	// own folder. Data holds the component's resource type.
	ClientlibForComponent AssociationType = iota + 1
	// ClientlibShareCategory links two clientlibs providing a common category.
	// Data holds the shared category.
	ClientlibShareCategory
	// ClientlibDependency links two clientlibs where one lists a category of
	// the other in its dependencies.
	ClientlibDependency
	// ClientlibEmbed links two clientlibs where one lists a category of the
	// other in its embed property.
	ClientlibEmbed
)

type associationSpec struct {
	name  string
	left  Kind
	right Kind
}

var associationSpecs = map[AssociationType]associationSpec{
	ClientlibForComponent:  {"CLIENTLIB_FOR_COMPONENT", KindComponent, KindClientlib},
	ClientlibShareCategory: {"CLIENTLIB_SHARE_CATEGORY", KindClientlib, KindClientlib},
	ClientlibDependency:    {"CLIENTLIB_DEPENDENCY", KindClientlib, KindClientlib},
	ClientlibEmbed:         {"CLIENTLIB_EMBED", KindClientlib, KindClientlib},
}

// AssociationTypes returns every association type in declaration order.
func AssociationTypes() []AssociationType {
	return []AssociationType{ClientlibForComponent, ClientlibShareCategory, ClientlibDependency, ClientlibEmbed}
}

// ParseAssociationType resolves a name such as "CLIENTLIB_EMBED".
func ParseAssociationType(s string) (AssociationType, error) {
	for _, t := range AssociationTypes() {
		if associationSpecs[t].name == s {
			return t, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown association type %q", s)
}

// Valid reports whether t is one of the declared association types.
func (t AssociationType) Valid() bool {
	_, ok := associationSpecs[t]
	return ok
}

func (t AssociationType) String() string {
	if s, ok := associationSpecs[t]; ok {
		return s.name
	}
	return fmt.Sprintf("AssociationType(%d)", int(t))
}

// LeftKind returns the node kind expected on the left side.
func (t AssociationType) LeftKind() Kind { return associationSpecs[t].left }

// RightKind returns the node kind expected on the right side.
func (t AssociationType) RightKind() Kind { return associationSpecs[t].right }

// Symmetric reports whether both sides take the same kind. Operands of
// symmetric associations are stored in canonical order.
func (t AssociationType) Symmetric() bool {
	return t.Valid() && t.LeftKind() == t.RightKind()
}

// MarshalText encodes the type by name.
func (t AssociationType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown association type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *AssociationType) UnmarshalText(b []byte) error {
	parsed, err := ParseAssociationType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Association is a typed relation between two nodes.
//
// The zero value is not meaningful; build associations with [NewAssociation]
// so the operands are validated and canonically ordered. Data is empty for
// types that carry no payload.
type Association struct {
	Left  Node
	Right Node
	Type  AssociationType
	Data  string
}

// NewAssociation builds an association of type t between left and right.
//
// Operand kinds must match t.LeftKind() and t.RightKind(). For symmetric types
// the operands are canonicalized first, so NewAssociation(a, b, t) and
// NewAssociation(b, a, t) return equal values. The payload is derived after
// canonicalization:
//
//   - ClientlibForComponent: the component's resource type
//   - ClientlibShareCategory: the first category of Left also provided by Right
//
// An INVALID_ASSOCIATION error is returned for a kind mismatch, an unknown
// type, or a ClientlibShareCategory between clientlibs with no common
// category.
func NewAssociation(left, right Node, t AssociationType) (Association, error) {
	if !t.Valid() {
		return Association{}, errors.New(errors.ErrCodeInvalidAssociation, "unknown association type %d", int(t))
	}
	if isNil(left) || isNil(right) {
		return Association{}, errors.New(errors.ErrCodeInvalidAssociation, "%s requires two nodes", t)
	}
	if left.Kind() != t.LeftKind() || right.Kind() != t.RightKind() {
		return Association{}, errors.New(errors.ErrCodeInvalidAssociation,
			"%s expects (%s, %s), got (%s, %s)", t, t.LeftKind(), t.RightKind(), left.Kind(), right.Kind())
	}

	if t.Symmetric() {
		left, right = canonicalize(left, right)
	}

	a := Association{Left: left, Right: right, Type: t}
	switch t {
	case ClientlibForComponent:
		c, _ := AsComponent(left)
		a.Data = c.ResourceType
	case ClientlibShareCategory:
		l, _ := AsClientlib(left)
		r, _ := AsClientlib(right)
		shared, ok := SharedCategory(l.Categories, r.Categories)
		if !ok {
			return Association{}, errors.New(errors.ErrCodeInvalidAssociation,
				"%v and %v do not contain a match", l.Categories, r.Categories)
		}
		a.Data = shared
	case ClientlibDependency, ClientlibEmbed:
	}
	return a, nil
}

// canonicalize orders two nodes of the same kind so the smaller key comes
// first. Equal keys fall back to fingerprints so the result never depends on
// argument order.
func canonicalize(left, right Node) (Node, Node) {
	c := Compare(left, right)
	if c == 0 {
		c = strings.Compare(Fingerprint(left), Fingerprint(right))
	}
	if c > 0 {
		return right, left
	}
	return left, right
}

// SharedCategory returns the first entry of outer that also appears in inner.
func SharedCategory(outer, inner []string) (string, bool) {
	return lo.Find(outer, func(c string) bool { return lo.Contains(inner, c) })
}

// Equal reports whether two associations have the same type, data and
// structurally equal operands.
func (a Association) Equal(o Association) bool {
	return a.Type == o.Type && a.Data == o.Data && Equal(a.Left, o.Left) && Equal(a.Right, o.Right)
}

// ID returns a deterministic identity string. Equal associations share an ID.
func (a Association) ID() string {
	return strings.Join([]string{a.Type.String(), Fingerprint(a.Left), Fingerprint(a.Right), a.Data}, "|")
}

func (a Association) String() string {
	if a.Data != "" {
		return fmt.Sprintf("%s(%s -> %s: %s)", a.Type, a.Left.Key(), a.Right.Key(), a.Data)
	}
	return fmt.Sprintf("%s(%s -> %s)", a.Type, a.Left.Key(), a.Right.Key())
}

// CompareAssociations orders associations by type, left node, right node and
// data.
func CompareAssociations(a, b Association) int {
	if c := cmp.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	if c := Compare(a.Left, b.Left); c != 0 {
		return c
	}
	if c := Compare(a.Right, b.Right); c != 0 {
		return c
	}
	if c := strings.Compare(a.Data, b.Data); c != 0 {
		return c
	}
	return strings.Compare(a.ID(), b.ID())
}

// SortAssociations sorts in place by [CompareAssociations].
func SortAssociations(as []Association) {
	slices.SortFunc(as, CompareAssociations)
}
