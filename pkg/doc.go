// Package pkg holds the libraries behind aemgrapher.
//
// # Overview
//
// aemgrapher scans AEM content packages, extracts component and client
// library descriptors, infers how they relate, and renders the result as a
// Graphviz DOT graph. The packages below pkg are:
//
//  1. [jcr] - Node and association model, and the inference engine
//  2. [descriptor] - Reading and writing .content.xml descriptors
//  3. [jcrroot] - Locating jcr_root in directories and package archives
//  4. [render/dot] - DOT output and validation
//  5. [io] - JSON scan documents
//  6. [pipeline] - Orchestration (scan → infer → render)
//  7. [errors] - Coded errors and input validation
//  8. [observability] - Pipeline hooks
//
// # Architecture
//
//	package .zip / jcr_root directory
//	         ↓
//	    [jcrroot] (fs.FS rooted at jcr_root)
//	         ↓
//	    [descriptor] (components and clientlibs)
//	         ↓
//	    [jcr] (associations)
//	         ↓
//	    [render/dot] or [io]
//
// # Quick Start
//
//	root, err := jcrroot.Open("target/mypackage.zip")
//	if err != nil {
//	    return err
//	}
//	defer root.Close()
//
//	nodes, err := root.Nodes(ctx, descriptor.NewExtractor(logger))
//	if err != nil {
//	    return err
//	}
//	assocs, err := jcr.Infer(nodes)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(dot.ToDOT(assocs, dot.Options{Name: "aem"}))
//
// [render/dot]: github.com/jdigger/aem-grapher/pkg/render/dot
package pkg
