package arxiv

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// manifestDocument is the decoded, shape-checked form of the arXiv
// manifest XML: the generation timestamp string plus one field map per
// file record.
type manifestDocument struct {
	timestamp string
	files     []map[string]string
}

// manifestFileFields are the exact fields every manifest file record must
// carry. Extra or missing fields invalidate the whole manifest.
var manifestFileFields = []string{
	"content_md5sum", "filename", "first_item", "last_item", "md5sum",
	"num_items", "seq_num", "size", "timestamp", "yymm",
}

// decodeManifestXML reads the manifest XML at path into a manifestDocument.
// The document must have exactly the structure
//
//	<arXivSRC>
//	  <timestamp>...</timestamp>
//	  <file>...ten leaf fields...</file>*
//	</arXivSRC>
//
// Any deviation returns ErrManifestShape.
func decodeManifestXML(path string) (*manifestDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := decodeElementTree(xml.NewDecoder(f))
	if err != nil {
		return nil, fmt.Errorf("file is not in XML format: %w", err)
	}
	if root == nil || root.name != "arXivSRC" {
		return nil, ErrManifestShape
	}

	doc := &manifestDocument{}
	sawTimestamp := false
	for _, child := range root.children {
		switch child.name {
		case "timestamp":
			if sawTimestamp || len(child.children) > 0 {
				return nil, ErrManifestShape
			}
			sawTimestamp = true
			doc.timestamp = child.text
		case "file":
			fields, err := fileEntryFields(child)
			if err != nil {
				return nil, err
			}
			doc.files = append(doc.files, fields)
		default:
			return nil, ErrManifestShape
		}
	}
	if !sawTimestamp {
		return nil, ErrManifestShape
	}

	return doc, nil
}

// fileEntryFields validates a <file> element and returns its leaf fields.
func fileEntryFields(node *xmlNode) (map[string]string, error) {
	fields := make(map[string]string, len(manifestFileFields))
	for _, child := range node.children {
		if len(child.children) > 0 {
			return nil, ErrManifestShape
		}
		if _, duplicate := fields[child.name]; duplicate {
			return nil, ErrManifestShape
		}
		fields[child.name] = child.text
	}

	if len(fields) != len(manifestFileFields) {
		return nil, ErrManifestShape
	}
	for _, name := range manifestFileFields {
		if _, ok := fields[name]; !ok {
			return nil, ErrManifestShape
		}
	}

	return fields, nil
}

// xmlNode is a generic XML element: name, trimmed character data, and
// child elements.
type xmlNode struct {
	name     string
	text     string
	children []*xmlNode
}

// decodeElementTree consumes the token stream and returns the document's
// root element.
func decodeElementTree(decoder *xml.Decoder) (*xmlNode, error) {
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("no root element found")
		}
		if err != nil {
			return nil, err
		}
		if start, ok := token.(xml.StartElement); ok {
			return decodeElement(decoder, start)
		}
	}
}

func decodeElement(decoder *xml.Decoder, start xml.StartElement) (*xmlNode, error) {
	node := &xmlNode{name: start.Name.Local}
	var text strings.Builder

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			child, err := decodeElement(decoder, t)
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			node.text = strings.TrimSpace(text.String())
			return node, nil
		}
	}
}
