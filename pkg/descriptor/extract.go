package descriptor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/jdigger/aem-grapher/pkg/jcr"
)

// FileName is the only file name that can hold a descriptor.
const FileName = ".content.xml"

// Default namespace URIs.
const (
	NamespaceJCR = "http://www.jcp.org/jcr/1.0"
	NamespaceCQ  = "http://www.day.com/jcr/cq/1.0"
)

// Primary types recognized by the extractor.
const (
	PrimaryTypeComponent = "cq:Component"
	PrimaryTypeClientlib = "cq:ClientLibraryFolder"
)

// Namespaces holds the namespace URIs descriptors are matched against.
type Namespaces struct {
	JCR string
	CQ  string
}

// DefaultNamespaces returns the standard JCR and CQ namespace URIs.
func DefaultNamespaces() Namespaces {
	return Namespaces{JCR: NamespaceJCR, CQ: NamespaceCQ}
}

// Extractor parses descriptor files. The zero value uses
// [DefaultNamespaces] and discards log output.
type Extractor struct {
	Namespaces Namespaces
	Logger     *log.Logger
}

// NewExtractor returns an extractor with default namespaces logging to l.
func NewExtractor(l *log.Logger) *Extractor {
	return &Extractor{Namespaces: DefaultNamespaces(), Logger: l}
}

func (e *Extractor) ns() Namespaces {
	if e.Namespaces == (Namespaces{}) {
		return DefaultNamespaces()
	}
	return e.Namespaces
}

func (e *Extractor) logger() *log.Logger {
	if e.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return e.Logger
}

// IsDescriptor reports whether name has the descriptor file name.
func IsDescriptor(name string) bool {
	return path.Base(name) == FileName
}

// Extract tries name as a component, then as a clientlib.
func (e *Extractor) Extract(fsys fs.FS, name string) (jcr.Node, bool, error) {
	d, ok, err := e.read(fsys, name)
	if err != nil || !ok {
		return nil, false, err
	}
	if c, ok := e.component(d); ok {
		return c, true, nil
	}
	if l, ok := e.clientlib(d); ok {
		return l, true, nil
	}
	return nil, false, nil
}

// ExtractComponent returns the component described by name, if any.
func (e *Extractor) ExtractComponent(fsys fs.FS, name string) (jcr.Component, bool, error) {
	d, ok, err := e.read(fsys, name)
	if err != nil || !ok {
		return jcr.Component{}, false, err
	}
	c, ok := e.component(d)
	return c, ok, nil
}

// ExtractClientlib returns the clientlib described by name, if any.
func (e *Extractor) ExtractClientlib(fsys fs.FS, name string) (jcr.Clientlib, bool, error) {
	d, ok, err := e.read(fsys, name)
	if err != nil || !ok {
		return jcr.Clientlib{}, false, err
	}
	l, ok := e.clientlib(d)
	return l, ok, nil
}

// document is a parsed descriptor root element.
type document struct {
	name string
	root xml.StartElement
}

// attr returns the value of the attribute {space}local.
func (d document) attr(space, local string) (string, bool) {
	for _, a := range d.root.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// read parses the root element of name. Files that are not descriptors, or
// that are not well-formed XML, yield ok == false.
func (e *Extractor) read(fsys fs.FS, name string) (document, bool, error) {
	if !IsDescriptor(name) {
		return document{}, false, nil
	}
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return document{}, false, err
	}
	if !info.Mode().IsRegular() {
		return document{}, false, nil
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return document{}, false, err
	}

	root, err := rootElement(data)
	if err != nil {
		e.logger().Warn("skipping malformed descriptor", "file", name, "err", err)
		return document{}, false, nil
	}
	return document{name: name, root: root}, true, nil
}

var errNoRoot = errors.New("no root element")

func rootElement(data []byte) (xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, errNoRoot
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Copy(), nil
		}
	}
}

// matches checks the root element name and primary type.
func (e *Extractor) matches(d document, primaryType string) bool {
	ns := e.ns()
	logger := e.logger()
	switch {
	case d.root.Name.Space != ns.JCR:
		logger.Debug("root element namespace mismatch", "file", d.name, "want", ns.JCR, "got", d.root.Name.Space)
		return false
	case d.root.Name.Local != "root":
		logger.Debug("root element is not root", "file", d.name, "got", d.root.Name.Local)
		return false
	}

	got, _ := d.attr(ns.JCR, "primaryType")
	switch {
	case strings.TrimSpace(got) == "":
		logger.Debug("root element has no primaryType", "file", d.name)
		return false
	case got != primaryType:
		logger.Debug("primaryType mismatch", "file", d.name, "want", primaryType, "got", got)
		return false
	}
	return true
}

func (e *Extractor) component(d document) (jcr.Component, bool) {
	if !e.matches(d, PrimaryTypeComponent) {
		return jcr.Component{}, false
	}
	title, _ := d.attr(e.ns().JCR, "title")
	if strings.TrimSpace(title) == "" {
		e.logger().Debug("component has no title", "file", d.name)
		return jcr.Component{}, false
	}
	rt, ok := ResourceType(d.name)
	if !ok {
		e.logger().Debug("component is not under apps or libs", "file", d.name)
		return jcr.Component{}, false
	}
	group, _ := d.attr("", "componentGroup")
	class, _ := d.attr("", "className")
	return jcr.Component{
		ResourceType:   rt,
		Title:          title,
		ComponentGroup: group,
		ClassName:      class,
	}, true
}

func (e *Extractor) clientlib(d document) (jcr.Clientlib, bool) {
	if !e.matches(d, PrimaryTypeClientlib) {
		return jcr.Clientlib{}, false
	}
	raw, _ := d.attr("", "categories")
	categories := lo.Uniq(ParseList(raw))
	if len(categories) == 0 {
		e.logger().Debug("clientlib has no categories", "file", d.name)
		return jcr.Clientlib{}, false
	}
	dir := path.Dir(d.name)
	if dir == "." {
		e.logger().Debug("clientlib descriptor at jcr_root", "file", d.name)
		return jcr.Clientlib{}, false
	}
	deps, _ := d.attr("", "dependencies")
	embed, _ := d.attr("", "embed")
	return jcr.Clientlib{
		Path:         dir,
		Categories:   categories,
		Dependencies: ParseList(deps),
		Embed:        ParseList(embed),
	}, true
}

// ResourceType derives a component resource type from a descriptor name
// relative to jcr_root: "apps/myapp/teaser/.content.xml" is "myapp/teaser".
// Names outside apps and libs have no resource type.
func ResourceType(name string) (string, bool) {
	segs := strings.Split(path.Clean(name), "/")
	if len(segs) < 3 {
		return "", false
	}
	if segs[0] != "apps" && segs[0] != "libs" {
		return "", false
	}
	return strings.Join(segs[1:len(segs)-1], "/"), true
}

// ParseList parses a multi-value property: either a bare token ("a") or a
// bracketed, comma-separated list ("[a,b,c]"). Blank entries are dropped.
func ParseList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		items := strings.Split(value[1:len(value)-1], ",")
		items = lo.Compact(lo.Map(items, func(s string, _ int) string { return strings.TrimSpace(s) }))
		if len(items) == 0 {
			return nil
		}
		return items
	}
	return []string{value}
}
