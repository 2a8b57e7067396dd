package descriptor

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jdigger/aem-grapher/pkg/errors"
	"github.com/jdigger/aem-grapher/pkg/jcr"
)

// attribute is one name="value" pair in a descriptor root element.
type attribute struct {
	name  string
	value string
}

// MarshalComponent renders c as a descriptor file. Optional fields are
// written only when set.
func MarshalComponent(c jcr.Component) ([]byte, error) {
	if err := errors.ValidateResourceType(c.ResourceType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Title) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "component %s has no title", c.ResourceType)
	}

	var attrs []attribute
	if c.ClassName != "" {
		attrs = append(attrs, attribute{"className", c.ClassName})
	}
	if c.ComponentGroup != "" {
		attrs = append(attrs, attribute{"componentGroup", c.ComponentGroup})
	}
	attrs = append(attrs,
		attribute{"cq:isContainer", "{Boolean}false"},
		attribute{"cq:noDecoration", "{Boolean}false"},
		attribute{"jcr:primaryType", PrimaryTypeComponent},
		attribute{"jcr:title", c.Title},
	)
	return render(attrs, true), nil
}

// MarshalClientlib renders l as a descriptor file. Lists are written in
// bracket form; empty dependency and embed lists are omitted.
func MarshalClientlib(l jcr.Clientlib) ([]byte, error) {
	if err := errors.ValidatePath(l.Path); err != nil {
		return nil, err
	}
	if len(l.Categories) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "clientlib %s needs at least one category", l.Path)
	}

	attrs := []attribute{{"jcr:primaryType", PrimaryTypeClientlib}}
	for _, list := range []struct {
		name  string
		items []string
	}{
		{"categories", l.Categories},
		{"dependencies", l.Dependencies},
		{"embed", l.Embed},
	} {
		if len(list.items) > 0 {
			attrs = append(attrs, attribute{list.name, FormatList(list.items)})
		}
	}
	return render(attrs, false), nil
}

// Marshal renders any node kind.
func Marshal(n jcr.Node) ([]byte, error) {
	switch n.Kind() {
	case jcr.KindComponent:
		c, _ := jcr.AsComponent(n)
		return MarshalComponent(c)
	case jcr.KindClientlib:
		l, _ := jcr.AsClientlib(n)
		return MarshalClientlib(l)
	}
	return nil, errors.New(errors.ErrCodeInternal, "cannot marshal %s", n.Kind())
}

// FormatList is the inverse of [ParseList].
func FormatList(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}

func render(attrs []attribute, withCQ bool) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString("<jcr:root")
	if withCQ {
		fmt.Fprintf(&buf, ` xmlns:cq="%s"`, NamespaceCQ)
	}
	fmt.Fprintf(&buf, ` xmlns:jcr="%s"`, NamespaceJCR)
	for _, a := range attrs {
		buf.WriteString("\n    ")
		buf.WriteString(a.name)
		buf.WriteString(`="`)
		_ = xml.EscapeText(&buf, []byte(a.value))
		buf.WriteString(`"`)
	}
	buf.WriteString("/>\n")
	return buf.Bytes()
}

// File returns the descriptor name of n relative to jcr_root.
// Components live at apps/<resource type>/.content.xml, clientlibs at
// <path>/.content.xml.
func File(n jcr.Node) (string, error) {
	switch n.Kind() {
	case jcr.KindComponent:
		if err := errors.ValidateResourceType(n.Key()); err != nil {
			return "", err
		}
		return path.Join("apps", n.Key(), FileName), nil
	case jcr.KindClientlib:
		if err := errors.ValidatePath(n.Key()); err != nil {
			return "", err
		}
		return path.Join(n.Key(), FileName), nil
	}
	return "", errors.New(errors.ErrCodeInternal, "no descriptor file for %s", n.Kind())
}

// Write marshals n into the jcr_root directory root, creating parent
// directories, and returns the name written relative to root.
func Write(root string, n jcr.Node) (string, error) {
	name, err := File(n)
	if err != nil {
		return "", err
	}
	data, err := Marshal(n)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", err
	}
	return name, nil
}
