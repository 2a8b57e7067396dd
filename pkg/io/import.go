package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jdigger/aem-grapher/pkg/errors"
	"github.com/jdigger/aem-grapher/pkg/jcr"
)

type nodeRef struct {
	kind jcr.Kind
	key  string
}

// ReadJSON decodes a scan document from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A node has an unknown kind, or its payload disagrees with its kind or key
//   - Two nodes of the same kind share a key
//   - An association names an unknown node, or fails [jcr.NewAssociation]
//   - A stored data payload differs from the recomputed one
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (Document, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode scan document")
	}

	doc := Document{ScanID: data.ScanID, Root: data.Root}
	index := make(map[nodeRef]jcr.Node, len(data.Nodes))
	for i, nd := range data.Nodes {
		n, err := nd.decode()
		if err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
		}
		ref := nodeRef{n.Kind(), n.Key()}
		if prev, dup := index[ref]; dup {
			if ref.kind == jcr.KindComponent {
				return Document{}, errors.Duplicate(n.Key(), prev.String(), n.String())
			}
			return Document{}, errors.New(errors.ErrCodeInvalidInput, "node %d: duplicate %s %q", i, ref.kind, ref.key)
		}
		index[ref] = n
		doc.Nodes = append(doc.Nodes, n)
	}

	for i, ad := range data.Associations {
		if !ad.Type.Valid() {
			return Document{}, errors.New(errors.ErrCodeInvalidInput, "association %d: invalid type", i)
		}
		left, ok := index[nodeRef{ad.Type.LeftKind(), ad.Left}]
		if !ok {
			return Document{}, errors.New(errors.ErrCodeInvalidInput, "association %d: unknown %s %q", i, ad.Type.LeftKind(), ad.Left)
		}
		right, ok := index[nodeRef{ad.Type.RightKind(), ad.Right}]
		if !ok {
			return Document{}, errors.New(errors.ErrCodeInvalidInput, "association %d: unknown %s %q", i, ad.Type.RightKind(), ad.Right)
		}
		a, err := jcr.NewAssociation(left, right, ad.Type)
		if err != nil {
			return Document{}, err
		}
		if a.Data != ad.Data {
			return Document{}, errors.New(errors.ErrCodeInvalidInput, "association %d: data %q, want %q", i, ad.Data, a.Data)
		}
		doc.Associations = append(doc.Associations, a)
	}

	return doc, nil
}

func (nd node) decode() (jcr.Node, error) {
	var n jcr.Node
	switch nd.Kind {
	case jcr.KindComponent.String():
		if nd.Component == nil {
			return nil, fmt.Errorf("%s %q has no component payload", nd.Kind, nd.Key)
		}
		n = *nd.Component
	case jcr.KindClientlib.String():
		if nd.Clientlib == nil {
			return nil, fmt.Errorf("%s %q has no clientlib payload", nd.Kind, nd.Key)
		}
		n = *nd.Clientlib
	default:
		return nil, fmt.Errorf("unknown kind %q", nd.Kind)
	}
	if nd.Key != "" && nd.Key != n.Key() {
		return nil, fmt.Errorf("key %q does not match payload key %q", nd.Key, n.Key())
	}
	return n, nil
}

// ImportJSON reads a scan document from the file at path.
func ImportJSON(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
