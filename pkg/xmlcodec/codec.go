// Package xmlcodec converts between generic parameter maps and the gateway's
// XML documents. Element names are dashed on the wire and underscored in Go;
// scalar types travel in a type attribute.
package xmlcodec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

// ErrNoRootElement is returned when a non-empty document has no element to decode.
var ErrNoRootElement = errors.New("xmlcodec: document has no root element")

const dateLayout = "2006-01-02"

// Repeated renders each item as a sibling element named after its key, the
// shape collection documents use for their members.
type Repeated []any

// Marshal renders params as <root>…</root> preceded by the XML declaration.
// Keys are emitted in sorted order.
func Marshal(root string, params map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := encodeElement(enc, root, params); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("xmlcodec: flush: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeElement(enc *xml.Encoder, name string, value any) error {
	start := xml.StartElement{Name: xml.Name{Local: utils.Dasherize(name)}}

	switch v := value.(type) {
	case nil:
		start.Attr = append(start.Attr, typeAttr("nil", "true"))
		return writeText(enc, start, "")
	case map[string]any:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if items, ok := v[k].(Repeated); ok {
				for _, item := range items {
					if err := encodeElement(enc, k, item); err != nil {
						return err
					}
				}
				continue
			}
			if err := encodeElement(enc, k, v[k]); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case []any:
		return encodeArray(enc, start, v)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return encodeArray(enc, start, items)
	case []map[string]any:
		items := make([]any, len(v))
		for i, m := range v {
			items[i] = m
		}
		return encodeArray(enc, start, items)
	case string:
		return writeText(enc, start, v)
	case bool:
		start.Attr = append(start.Attr, typeAttr("type", "boolean"))
		return writeText(enc, start, strconv.FormatBool(v))
	case int:
		start.Attr = append(start.Attr, typeAttr("type", "integer"))
		return writeText(enc, start, strconv.Itoa(v))
	case int32:
		start.Attr = append(start.Attr, typeAttr("type", "integer"))
		return writeText(enc, start, strconv.FormatInt(int64(v), 10))
	case int64:
		start.Attr = append(start.Attr, typeAttr("type", "integer"))
		return writeText(enc, start, strconv.FormatInt(v, 10))
	case decimal.Decimal:
		return writeText(enc, start, v.String())
	case time.Time:
		start.Attr = append(start.Attr, typeAttr("type", "datetime"))
		return writeText(enc, start, v.UTC().Format(time.RFC3339))
	case fmt.Stringer:
		return writeText(enc, start, v.String())
	default:
		return fmt.Errorf("xmlcodec: unsupported value %T for <%s>", value, start.Name.Local)
	}
}

func encodeArray(enc *xml.Encoder, start xml.StartElement, items []any) error {
	start.Attr = append(start.Attr, typeAttr("type", "array"))
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, item := range items {
		if err := encodeElement(enc, "item", item); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func writeText(enc *xml.Encoder, start xml.StartElement, text string) error {
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text != "" {
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func typeAttr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Unmarshal decodes a gateway document into {root: value}. An empty body
// decodes to an empty map.
func Unmarshal(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xmlcodec: parse: %w", err)
	}

	root := firstElement(doc)
	if root == nil {
		return nil, ErrNoRootElement
	}

	value, err := decodeNode(root)
	if err != nil {
		return nil, err
	}
	return map[string]any{utils.Underscore(root.Data): value}, nil
}

func decodeNode(n *xmlquery.Node) (any, error) {
	if n.SelectAttr("nil") == "true" {
		return nil, nil
	}

	text := strings.TrimSpace(n.InnerText())
	switch n.SelectAttr("type") {
	case "array":
		items := []any{}
		for _, child := range elementChildren(n) {
			v, err := decodeNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case "integer":
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("xmlcodec: <%s> integer: %w", n.Data, err)
		}
		return v, nil
	case "boolean":
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("xmlcodec: <%s> boolean: %w", n.Data, err)
		}
		return v, nil
	case "datetime":
		v, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return nil, fmt.Errorf("xmlcodec: <%s> datetime: %w", n.Data, err)
		}
		return v, nil
	case "date":
		v, err := time.Parse(dateLayout, text)
		if err != nil {
			return nil, fmt.Errorf("xmlcodec: <%s> date: %w", n.Data, err)
		}
		return v, nil
	}

	children := elementChildren(n)
	if len(children) == 0 {
		return n.InnerText(), nil
	}

	out := make(map[string]any, len(children))
	grouped := make(map[string]bool)
	for _, child := range children {
		v, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		key := utils.Underscore(child.Data)
		existing, seen := out[key]
		switch {
		case !seen:
			out[key] = v
		case grouped[key]:
			out[key] = append(existing.([]any), v)
		default:
			// repeated siblings (collection members) become a slice
			out[key] = []any{existing, v}
			grouped[key] = true
		}
	}
	return out, nil
}

func elementChildren(n *xmlquery.Node) []*xmlquery.Node {
	var children []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			children = append(children, c)
		}
	}
	return children
}

func firstElement(doc *xmlquery.Node) *xmlquery.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}
