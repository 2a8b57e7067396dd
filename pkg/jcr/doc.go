// Package jcr models the descriptor nodes found in a content package and the
// associations inferred between them.
//
// # Overview
//
// A content package describes repository nodes with .content.xml files. Two
// kinds of descriptors matter for dependency graphs:
//
//   - [Component]: a UI component, keyed by its resource type
//     (e.g. "myapp/components/teaser")
//   - [Clientlib]: a client library folder, keyed by its path relative to
//     jcr_root (e.g. "apps/myapp/components/teaser/clientlibs"), declaring the
//     categories it provides and the categories it depends on or embeds
//
// Both implement the sealed [Node] interface. Dispatch always switches on
// [Node.Kind], so adding a third kind forces every switch to be revisited.
//
// # Associations
//
// An [Association] is a typed relation between two nodes. The four
// [AssociationType] values declare which kinds they accept on each side:
//
//	ClientlibForComponent   Component -> Clientlib  (data: resource type)
//	ClientlibShareCategory  Clientlib -> Clientlib  (data: shared category)
//	ClientlibDependency     Clientlib -> Clientlib
//	ClientlibEmbed          Clientlib -> Clientlib
//
// Associations are built with [NewAssociation], which canonicalizes the
// operands of symmetric types so that Left.Key() <= Right.Key(). Discovering
// the same pair as (a, b) or (b, a) therefore yields equal values.
//
// # Inference
//
// [Infer] evaluates every unordered pair of distinct nodes and returns the
// sorted, de-duplicated association set:
//
//	assocs, err := jcr.Infer([]jcr.Node{
//	    jcr.Component{ResourceType: "myapp/aComp1", Title: "A Comp 1"},
//	    jcr.Clientlib{Path: "apps/myapp/aComp1/clientlibs", Categories: []string{"myapp.aComp1"}},
//	})
//
// Two components with the same resource type abort inference with a
// DUPLICATE_RESOURCE_TYPE error. Every other non-match simply produces no
// association.
//
// [Inferrer] adds debug logging and optional parallel pair evaluation; its
// output is identical to [Infer].
package jcr
