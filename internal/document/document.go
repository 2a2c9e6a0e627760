// Package document converts between blit XML documents and the typed models
// in package model.
//
// Documents are materialized whole as github.com/beevik/etree trees. The
// version-1 builder and version-2 reader walk those trees by tag; the
// version-2 encoder and palette encoder produce tab-indented, byte-stable
// output.
package document

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	mErrors "blit-migrate/internal/errors"
)

const (
	// SequenceFile is the name of the sequence document inside a project directory.
	SequenceFile = "sequence.xml"
	// PaletteFile is the name of the palette document inside a project directory.
	PaletteFile = "palette.xml"

	xmlDeclaration = `version="1.0" encoding="utf-8"`
)

// Parse reads a whole XML document. document names it in error messages.
func Parse(data []byte, document string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, mErrors.NewMalformedDocument(document, fmt.Sprintf("not well-formed XML: %v", err))
	}
	if doc.Root() == nil {
		return nil, mErrors.NewMalformedDocument(document, "no root element")
	}
	return doc, nil
}

// Version returns the raw version attribute of root, or "" when it is absent.
func Version(root *etree.Element) string {
	return root.SelectAttrValue("version", "")
}

// RequireVersion fails with UnsupportedVersion unless root declares version want.
func RequireVersion(root *etree.Element, document string, want int) error {
	found := strings.TrimSpace(Version(root))
	v, err := strconv.Atoi(found)
	if err != nil || v != want {
		return mErrors.NewUnsupportedVersion(document, found, want)
	}
	return nil
}

// StampVersion rewrites the version attribute of root in place.
// The attribute keeps its position if it already exists.
func StampVersion(root *etree.Element, version int) {
	root.CreateAttr("version", strconv.Itoa(version))
}

// encode writes doc with the standard declaration and one tab per nesting level.
func encode(doc *etree.Document) ([]byte, error) {
	doc.IndentTabs()
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}
	return out, nil
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDeclaration)
	return doc
}

// EncodePalette renders a palette tree re-indented with tabs; callers stamp
// the version with StampVersion first. Element names, attributes and
// non-whitespace text of leaf elements are kept. Whitespace-only text is
// replaced by indentation, so an element holding only whitespace is written
// self-closing, and mixed content gains line breaks around its children.
func EncodePalette(root *etree.Element) ([]byte, error) {
	doc := newDocument()
	doc.SetRoot(root.Copy())
	return encode(doc)
}

// childPath returns the location of the i-th (0-based) tag child of parent.
func childPath(parent, tag string, i int) string {
	return fmt.Sprintf("%s/%s[%d]", parent, tag, i+1)
}

// celName checks that a cel identifier can name its <name>.png asset inside
// the project directory: a plain file name, not "." or "..", with no separator.
func celName(name, path, key string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return mErrors.NewMalformedDocument(path, fmt.Sprintf("empty %s", key))
	case name == "." || name == "..",
		strings.ContainsAny(name, `/\`),
		filepath.Base(name) != name:
		return mErrors.NewMalformedDocument(path, fmt.Sprintf("%s %q is not a plain file name", key, name))
	}
	return nil
}

// requiredChild returns the first child element named tag.
func requiredChild(node *etree.Element, path, tag string) (*etree.Element, error) {
	child := node.SelectElement(tag)
	if child == nil {
		return nil, mErrors.NewMalformedDocument(path, fmt.Sprintf("missing child <%s>", tag))
	}
	return child, nil
}

// requiredText returns the text of the first child element named tag.
func requiredText(node *etree.Element, path, tag string) (string, error) {
	child, err := requiredChild(node, path, tag)
	if err != nil {
		return "", err
	}
	return child.Text(), nil
}

// requiredAttr returns the value of the attribute named key.
func requiredAttr(node *etree.Element, path, key string) (string, error) {
	attr := node.SelectAttr(key)
	if attr == nil {
		return "", mErrors.NewMalformedDocument(path, fmt.Sprintf("missing attribute %q", key))
	}
	return attr.Value, nil
}

// field returns the value of key as an attribute, falling back to a child
// element's text. Version-1 writers were not consistent about which they used.
func field(node *etree.Element, path, key string) (string, error) {
	if attr := node.SelectAttr(key); attr != nil {
		return attr.Value, nil
	}
	if child := node.SelectElement(key); child != nil {
		return child.Text(), nil
	}
	return "", mErrors.NewMalformedDocument(path, fmt.Sprintf("missing attribute or child %q", key))
}

func parseInt(raw, path, key string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, mErrors.NewMalformedDocument(path, fmt.Sprintf("invalid integer %q for %s", raw, key))
	}
	return v, nil
}

func parseInt64(raw, path, key string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, mErrors.NewMalformedDocument(path, fmt.Sprintf("invalid integer %q for %s", raw, key))
	}
	return v, nil
}

func intText(node *etree.Element, path, tag string) (int, error) {
	raw, err := requiredText(node, path, tag)
	if err != nil {
		return 0, err
	}
	return parseInt(raw, path, tag)
}

func int64Text(node *etree.Element, path, tag string) (int64, error) {
	raw, err := requiredText(node, path, tag)
	if err != nil {
		return 0, err
	}
	return parseInt64(raw, path, tag)
}

func intAttr(node *etree.Element, path, key string) (int, error) {
	raw, err := requiredAttr(node, path, key)
	if err != nil {
		return 0, err
	}
	return parseInt(raw, path, key)
}

func intField(node *etree.Element, path, key string) (int, error) {
	raw, err := field(node, path, key)
	if err != nil {
		return 0, err
	}
	return parseInt(raw, path, key)
}
