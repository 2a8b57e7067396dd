// Package descriptor reads and writes the .content.xml files that describe
// components and client library folders.
//
// An [Extractor] turns one descriptor file into a [jcr.Component] or a
// [jcr.Clientlib]. A file qualifies only when:
//
//   - its base name is exactly .content.xml
//   - its root element is {JCR}root
//   - jcr:primaryType is cq:Component or cq:ClientLibraryFolder
//   - a component has a non-blank jcr:title
//   - a clientlib has at least one category
//
// Anything else is reported as "not a descriptor" (ok == false), never as an
// error. Errors are reserved for I/O failures.
//
// Files are addressed by slash-separated names inside an [fs.FS] rooted at
// jcr_root, so the same extractor works on a directory (os.DirFS) or on a zip
// archive (zip.Reader).
//
// [MarshalComponent] and [MarshalClientlib] write the inverse form: extracting
// a marshaled node yields an equal node.
package descriptor
