package openwebif

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document is a flat view of an OpenWebif XML response.
//
// OpenWebif responses are shallow documents whose interesting values live
// in leaf elements addressed by tag name (e2instandby, e2model, ...).
// Document records the text content of the first occurrence of every leaf
// element, which is exactly what attribute resolution needs: presence,
// emptiness and value of a named tag.
type Document struct {
	values map[string]string
}

// ParseDocument parses raw response bytes into a Document.
//
// Parameters:
//   - data: Raw XML response body from the receiver
//
// Returns:
//   - *Document: Parsed document ready for tag lookups
//   - error: ErrMalformedResponse if the body is not well-formed XML
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{values: make(map[string]string)}

	decoder := xml.NewDecoder(bytes.NewReader(data))

	// current is the name of the innermost open element whose text is
	// still being collected; empty when the open element is either not
	// the first of its name or has child elements.
	var current string
	var text strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// A child element ends text collection for the parent;
			// leaf semantics only.
			current = ""
			text.Reset()
			if _, seen := doc.values[t.Name.Local]; !seen {
				current = t.Name.Local
			}
		case xml.CharData:
			if current != "" {
				text.Write(t)
			}
		case xml.EndElement:
			if current == t.Name.Local {
				doc.values[current] = strings.TrimSpace(text.String())
				current = ""
				text.Reset()
			}
		}
	}

	return doc, nil
}

// Value returns the text content of the first element with the given tag
// name. The boolean result is false when no such element exists; an empty
// string with true means the element is present but empty.
func (d *Document) Value(tag string) (string, bool) {
	v, ok := d.values[tag]
	return v, ok
}
