// Package szgf reads and writes SZGF guide files: YAML documents that start
// with a yaml-language-server schema directive.
package szgf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/meur/guideforge/internal/doc"
	"gopkg.in/yaml.v3"
)

// Directive is the first line of every exported guide.
const Directive = "# yaml-language-server: $schema=../../schema.json"

// Serialize cleans d and renders it as a guide file: the directive, a blank
// line, then the YAML body.
func Serialize(d doc.Map) ([]byte, error) {
	body, err := Encode(doc.Clean(d))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(Directive) + 2 + len(body))
	buf.WriteString(Directive)
	buf.WriteString("\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// Encode renders v as YAML without cleaning it and without the directive.
// Lines are never wrapped, repeated values are written out in full and
// strings that need quoting use double quotes.
func Encode(v any) ([]byte, error) {
	node, err := encodeValue(v, "")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{node}}); err != nil {
		return nil, fmt.Errorf("encode guide: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode guide: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeValue(v any, pattern doc.Path) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case doc.Map:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range orderedKeys(t, pattern) {
			child, err := encodeValue(t[k], pattern.Child(k))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, stringNode(k), child)
		}
		return n, nil
	case doc.List:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, x := range t {
			child, err := encodeValue(x, pattern.Child("*"))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case string:
		return stringNode(t), nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(t)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(t)}, nil
	}
	switch n := doc.Normalize(v); n.(type) {
	case nil, doc.Map, doc.List, string, bool, int, float64:
		return encodeValue(n, pattern)
	}
	return nil, fmt.Errorf("encode guide: unsupported value %T at %s", v, pattern)
}

func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	switch {
	case strings.Contains(s, "\n") && literalSafe(s):
		n.Style = yaml.LiteralStyle
	case strings.Contains(s, "\n") || !plainSafe(s):
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

// literalSafe reports whether s survives a round trip as a literal block
// nested in a mapping. Leading blank lines and some whitespace do not.
func literalSafe(s string) bool {
	v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.LiteralStyle}
	inner := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!str", Value: "v"}, v}}
	outer := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!str", Value: "k"}, inner}}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(outer); err != nil {
		return false
	}
	if err := enc.Close(); err != nil {
		return false
	}
	var back struct {
		K struct {
			V *string `yaml:"v"`
		} `yaml:"k"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		return false
	}
	return back.K.V != nil && *back.K.V == s
}

// plainSafe reports whether s can be written unquoted: it must read back as
// the very same plain string.
func plainSafe(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(s), &n); err != nil {
		return false
	}
	if n.Kind != yaml.DocumentNode || len(n.Content) != 1 {
		return false
	}
	c := n.Content[0]
	return c.Kind == yaml.ScalarNode && c.Style == 0 && c.Tag == "!!str" && c.Value == s
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Deserialize parses guide text into a document. Any failure is a
// *ParseError.
func Deserialize(text []byte) (doc.Map, error) {
	dec := yaml.NewDecoder(bytes.NewReader(text))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Msg: "document is empty"}
		}
		return nil, newParseError(err)
	}
	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case err == nil:
		return nil, &ParseError{Line: extra.Line, Column: extra.Column, Msg: "multiple documents are not supported"}
	case !errors.Is(err, io.EOF):
		return nil, newParseError(err)
	}

	v, err := decodeNode(&root)
	if err != nil {
		return nil, err
	}
	m, ok := v.(doc.Map)
	if !ok {
		line, col := root.Line, root.Column
		if len(root.Content) > 0 {
			line, col = root.Content[0].Line, root.Content[0].Column
		}
		return nil, &ParseError{Line: line, Column: col, Msg: "top level must be a mapping"}
	}
	return m, nil
}

// maxNodes bounds the nodes a document may expand to, aliases included.
const maxNodes = 100_000

// decoder turns a yaml.Node tree into a document, expanding aliases.
type decoder struct {
	nodes int
	// active holds the collection nodes being decoded, to catch anchors
	// that contain themselves.
	active map[*yaml.Node]bool
}

func decodeNode(n *yaml.Node) (any, error) {
	d := &decoder{active: make(map[*yaml.Node]bool)}
	return d.node(n)
}

func (d *decoder) node(n *yaml.Node) (any, error) {
	d.nodes++
	if d.nodes > maxNodes {
		return nil, &ParseError{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf("document expands to more than %d nodes", maxNodes)}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.node(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, &ParseError{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf("unknown anchor %q", n.Value)}
		}
		if d.active[n.Alias] {
			return nil, &ParseError{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf("anchor %q contains itself", n.Value)}
		}
		return d.node(n.Alias)
	case yaml.SequenceNode:
		d.active[n] = true
		defer delete(d.active, n)
		out := make(doc.List, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.node(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		d.active[n] = true
		defer delete(d.active, n)
		return d.mapping(n)
	case yaml.ScalarNode:
		return decodeScalar(n)
	}
	return nil, &ParseError{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf("unexpected node kind %d", n.Kind)}
}

func (d *decoder) mapping(n *yaml.Node) (doc.Map, error) {
	out := make(doc.Map, len(n.Content)/2)
	var merged []doc.Map
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, &ParseError{Line: k.Line, Column: k.Column, Msg: "mapping keys must be scalars"}
		}
		val, err := d.node(v)
		if err != nil {
			return nil, err
		}
		if k.ShortTag() == "!!merge" {
			switch m := val.(type) {
			case doc.Map:
				merged = append(merged, m)
			case doc.List:
				for _, x := range m {
					if xm, ok := x.(doc.Map); ok {
						merged = append(merged, xm)
					}
				}
			default:
				return nil, &ParseError{Line: v.Line, Column: v.Column, Msg: "merge value must be a mapping"}
			}
			continue
		}
		if _, dup := out[k.Value]; dup {
			return nil, &ParseError{Line: k.Line, Column: k.Column, Msg: fmt.Sprintf("duplicate key %q", k.Value)}
		}
		out[k.Value] = val
	}
	for _, m := range merged {
		for key, val := range m {
			if _, ok := out[key]; !ok {
				out[key] = val
			}
		}
	}
	return out, nil
}

// decodeScalar keeps timestamps and other non-core tags as strings.
func decodeScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool", "!!int", "!!float":
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &ParseError{Line: n.Line, Column: n.Column, Msg: err.Error(), Err: err}
		}
		return doc.Normalize(v), nil
	}
	return n.Value, nil
}
