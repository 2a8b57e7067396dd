// Package io provides JSON import and export of scan results.
//
// # JSON Format
//
// A scan document holds the extracted nodes and the inferred associations:
//
//	{
//	  "scan_id": "2f1c7f6e-0d55-4c43-9d5a-1d2b8e1d1f0a",
//	  "root": "target/mypackage.zip",
//	  "nodes": [
//	    {"kind": "cq:Component", "key": "myapp/aComp1",
//	     "component": {"resource_type": "myapp/aComp1", "title": "A Comp 1"}},
//	    {"kind": "cq:ClientLibraryFolder", "key": "apps/myapp/aComp1/clientlibs",
//	     "clientlib": {"path": "apps/myapp/aComp1/clientlibs", "categories": ["myapp.aComp1"]}}
//	  ],
//	  "associations": [
//	    {"type": "CLIENTLIB_FOR_COMPONENT", "left": "myapp/aComp1",
//	     "right": "apps/myapp/aComp1/clientlibs", "data": "myapp/aComp1"}
//	  ]
//	}
//
// Associations refer to nodes by key. The association type fixes the kind
// of each side, so a component and a clientlib may share a key.
//
// # Import
//
// [ReadJSON] and [ImportJSON] rebuild the document through
// [jcr.NewAssociation], so an imported document satisfies the same
// invariants as a fresh scan: symmetric associations come back in canonical
// order and the data payload is recomputed and checked.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write indented JSON. Nodes and associations
// are written in the order given.
package io
