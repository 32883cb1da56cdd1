// Package nfo reads and writes Kodi NFO documents while preserving the
// original file encoding. Unknown elements and character data pass through
// untouched; only elements the pipeline edits are rewritten.
package nfo

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// Declaration is the exact XML declaration written on every save.
const Declaration = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>`

// Root tags distinguishing the two record shapes.
const (
	TagShow    = "tvshow"
	TagEpisode = "episodedetails"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is one parsed NFO file plus the encoding detail (UTF-8 BOM) needed
// to write it back byte-compatibly.
type Document struct {
	path   string
	hasBOM bool
	doc    *etree.Document
}

// Load parses the NFO file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	hasBOM := bytes.HasPrefix(data, utf8BOM)
	if hasBOM {
		data = data[len(utf8BOM):]
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse %s: no root element", path)
	}

	return &Document{path: path, hasBOM: hasBOM, doc: doc}, nil
}

// Path returns the file the document was loaded from.
func (d *Document) Path() string { return d.path }

// RootTag returns the document's root element name.
func (d *Document) RootTag() string { return d.doc.Root().Tag }

// Find returns the first child element of the root with the given tag, or nil.
func (d *Document) Find(tag string) *etree.Element {
	return d.doc.Root().SelectElement(tag)
}

// FindAll returns every child element of the root with the given tag.
func (d *Document) FindAll(tag string) []*etree.Element {
	return d.doc.Root().SelectElements(tag)
}

// Text returns the trimmed text of the first element with the given tag, or
// "" when the element is absent or empty.
func (d *Document) Text(tag string) string {
	e := d.Find(tag)
	if e == nil {
		return ""
	}
	return trimmed(e)
}

// SetText sets the text of the first element with the given tag, creating the
// element when absent.
func (d *Document) SetText(tag, value string) {
	e := d.Find(tag)
	if e == nil {
		e = d.doc.Root().CreateElement(tag)
	}
	e.SetText(value)
}

// ReplaceAll removes every element with the given tag and appends one element
// per value, in order.
func (d *Document) ReplaceAll(tag string, values []string) {
	root := d.doc.Root()
	for _, e := range root.SelectElements(tag) {
		root.RemoveChild(e)
	}
	for _, v := range values {
		root.CreateElement(tag).SetText(v)
	}
}

// Remove deletes the first element with the given tag. It reports whether an
// element was removed.
func (d *Document) Remove(tag string) bool {
	e := d.Find(tag)
	if e == nil {
		return false
	}
	d.doc.Root().RemoveChild(e)
	return true
}

// Bytes serializes the document: fixed declaration, then the root element,
// preceded by the BOM when the original file carried one.
func (d *Document) Bytes() ([]byte, error) {
	out := etree.NewDocument()
	out.SetRoot(d.doc.Root().Copy())
	body, err := out.WriteToBytes()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if d.hasBOM {
		buf.Write(utf8BOM)
	}
	buf.WriteString(Declaration)
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes(), nil
}

// Save writes the document back to its original path.
func (d *Document) Save() error {
	data, err := d.Bytes()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", d.path, err)
	}
	if err := os.WriteFile(d.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

func trimmed(e *etree.Element) string {
	return strings.TrimSpace(e.Text())
}
