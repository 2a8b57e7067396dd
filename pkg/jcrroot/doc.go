// Package jcrroot locates the jcr_root of a content package and walks it.
//
// A content package is either an extracted directory tree containing a
// directory named jcr_root, or a .zip archive with jcr_root at its top level.
// Both are exposed as an [io/fs.FS] rooted at jcr_root, so descriptor names
// are always relative to it ("apps/myapp/teaser/.content.xml").
//
//	root, err := jcrroot.Open("target/mypackage.zip")
//	if err != nil {
//	    return err
//	}
//	defer root.Close()
//
//	nodes, err := root.Nodes(ctx, descriptor.NewExtractor(logger))
package jcrroot
