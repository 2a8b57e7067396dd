// Package dot renders association graphs in Graphviz DOT format.
//
// Every association becomes one directed edge from its left node to its
// right node, each identified by its key (resource type for components,
// path for clientlibs):
//
//	digraph aem {
//	  "myapp/aComp1" -> "apps/myapp/aComp1/clientlibs";
//	}
//
// With [Options.Detailed] set, nodes are declared with kind-specific shapes
// and edges carry the association type and data as labels. [Validate] checks
// the generated text with the Graphviz parser.
package dot
