// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/omodkit/omodkit/pkg/types"
)

// Descriptor element names.
const (
	elemRequireVersion = "require_version"
	elemActivator      = "activator"
	elemExtension      = "extension"
	elemAdvice         = "advice"
	elemServlet        = "servlet"
	elemMessages       = "messages"
	elemMappingFiles   = "mappingFiles"
	elemClass          = "class"
	elemFile           = "file"
)

type (
	// Descriptor holds the references declared by a module's config.xml.
	// Only direct children of the root element are considered.
	Descriptor struct {
		// RequireVersion is the minimum host version; "" when not declared.
		RequireVersion string
		// Activator is nil when the descriptor declares none.
		Activator  *types.ClassName
		Extensions []types.ClassName
		Advice     []types.ClassName
		Servlets   []types.ClassName
		// MessageFiles are paths relative to the module root.
		MessageFiles []string
		// MappingFiles are the tokens of every mappingFiles element, in order.
		MappingFiles []string
	}

	// xmlNode is a generic element tree; values are read trimmed.
	xmlNode struct {
		XMLName  xml.Name
		Text     string    `xml:",chardata"`
		Children []xmlNode `xml:",any"`
	}
)

// LoadDescriptor opens and parses the descriptor at path.
func LoadDescriptor(path types.FilesystemPath) (desc *Descriptor, err error) {
	f, err := os.Open(string(path))
	if err != nil {
		return nil, &DescriptorError{Path: string(path), Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return ParseDescriptor(f, string(path))
}

// ParseDescriptor parses descriptor XML from r. name is used in errors.
// Any XML syntax problem is reported as a *DescriptorError.
func ParseDescriptor(r io.Reader, name string) (*Descriptor, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	var root xmlNode
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("no root element")
		}
		return nil, &DescriptorError{Path: name, Err: err}
	}
	if err := ensureNoTrailingContent(dec); err != nil {
		return nil, &DescriptorError{Path: name, Err: err}
	}

	desc := &Descriptor{}
	if v := root.child(elemRequireVersion); v != nil {
		desc.RequireVersion = v.value()
	}
	if a := root.child(elemActivator); a != nil {
		class := types.ClassName(a.value())
		desc.Activator = &class
	}
	desc.Extensions = root.classRefs(elemExtension)
	desc.Advice = root.classRefs(elemAdvice)
	desc.Servlets = root.classRefs(elemServlet)
	for _, m := range root.children(elemMessages) {
		desc.MessageFiles = append(desc.MessageFiles, m.childValue(elemFile))
	}
	for _, m := range root.children(elemMappingFiles) {
		desc.MappingFiles = append(desc.MappingFiles, SplitMappingFiles(m.value())...)
	}

	return desc, nil
}

// SplitMappingFiles splits a mappingFiles value on spaces and newlines.
// Runs of delimiters collapse and empty tokens are dropped; other
// whitespace (tabs, carriage returns) stays part of a token.
func SplitMappingFiles(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\n'
	})
}

// ensureNoTrailingContent rejects elements or text after the root element.
func ensureNoTrailingContent(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return errors.New("unexpected text after root element")
			}
		}
	}
}

func (n *xmlNode) value() string {
	return strings.TrimSpace(n.Text)
}

// child returns the first direct child named name, or nil.
func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// children returns the direct children named name, in document order.
func (n *xmlNode) children(name string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// childValue returns the trimmed value of the first child named name, or ""
// when there is no such child.
func (n *xmlNode) childValue(name string) string {
	if c := n.child(name); c != nil {
		return c.value()
	}
	return ""
}

// classRefs collects the "class" child of every element named name.
func (n *xmlNode) classRefs(name string) []types.ClassName {
	var out []types.ClassName
	for _, c := range n.children(name) {
		out = append(out, types.ClassName(c.childValue(elemClass)))
	}
	return out
}
