package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/jdigger/aem-grapher/pkg/jcr"
)

// Document is one scan: where it came from, what was found, and how the
// findings relate.
type Document struct {
	ScanID       uuid.UUID
	Root         string
	Nodes        []jcr.Node
	Associations []jcr.Association
}

type document struct {
	ScanID       uuid.UUID     `json:"scan_id"`
	Root         string        `json:"root,omitempty"`
	Nodes        []node        `json:"nodes"`
	Associations []association `json:"associations"`
}

type node struct {
	Kind      string         `json:"kind"`
	Key       string         `json:"key"`
	Component *jcr.Component `json:"component,omitempty"`
	Clientlib *jcr.Clientlib `json:"clientlib,omitempty"`
}

type association struct {
	Type  jcr.AssociationType `json:"type"`
	Left  string              `json:"left"`
	Right string              `json:"right"`
	Data  string              `json:"data,omitempty"`
}

// WriteJSON encodes doc as JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(doc Document, w io.Writer) error {
	out := document{
		ScanID:       doc.ScanID,
		Root:         doc.Root,
		Nodes:        make([]node, 0, len(doc.Nodes)),
		Associations: make([]association, 0, len(doc.Associations)),
	}

	for _, n := range doc.Nodes {
		nd := node{Kind: n.Kind().String(), Key: n.Key()}
		if c, ok := jcr.AsComponent(n); ok {
			nd.Component = &c
		} else if l, ok := jcr.AsClientlib(n); ok {
			nd.Clientlib = &l
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, a := range doc.Associations {
		out.Associations = append(out.Associations, association{
			Type:  a.Type,
			Left:  a.Left.Key(),
			Right: a.Right.Key(),
			Data:  a.Data,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes doc to a JSON file at path.
func ExportJSON(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
