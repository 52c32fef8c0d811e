package roboflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"evidence-service/internal/utils"
)

const (
	maxTreeDepth = 32
	maxTreeNodes = 10000

	minTextLen     = 6
	minFallbackLen = 7
	maxFallbackLen = 11
)

var (
	// Regional plate grammar, e.g. DL8CAB1234, HR26CT1871.
	platePattern = regexp.MustCompile(`(?i)[A-Z]{2}[0-9]{1,2}[A-Z]{1,2}[0-9]{4}`)
	whitespace   = regexp.MustCompile(`\s+`)

	errTreeLimit = errors.New("response tree exceeds node limit")
)

// ExtractPlate pulls a plate candidate out of an unstructured workflow response.
// It returns an empty string when nothing usable is found.
func ExtractPlate(raw []byte) string {
	compact := whitespace.ReplaceAll(raw, nil)
	if m := platePattern.Find(compact); m != nil {
		return strings.ToUpper(string(m))
	}

	root := parseTree(raw)
	text, ok := root.findText()
	if !ok {
		return ""
	}
	cleaned := utils.NormalizePlate(text)
	if len(cleaned) < minFallbackLen || len(cleaned) > maxFallbackLen {
		return ""
	}
	return cleaned
}

// node is a JSON value that keeps object keys in document order.
// Only string scalars carry their value.
type node struct {
	str      *string
	object   bool
	array    bool
	keys     []string
	children []*node
}

// findText returns the first string field named "text" longer than five characters,
// checking an object's own field before descending into its children.
func (n *node) findText() (string, bool) {
	if n == nil || !(n.object || n.array) {
		return "", false
	}
	if n.object {
		for i := len(n.keys) - 1; i >= 0; i-- {
			if n.keys[i] != "text" {
				continue
			}
			if s := n.children[i].str; s != nil && utf8.RuneCountInString(*s) >= minTextLen {
				return *s, true
			}
			break
		}
	}
	for _, child := range n.children {
		if text, ok := child.findText(); ok {
			return text, true
		}
	}
	return "", false
}

// parseTree decodes raw into an ordered tree. Subtrees deeper than maxTreeDepth are
// skipped and decoding stops after maxTreeNodes tokens; whatever was built is returned.
func parseTree(raw []byte) *node {
	b := &treeBuilder{dec: json.NewDecoder(bytes.NewReader(raw))}
	root, _ := b.build(0)
	return root
}

type treeBuilder struct {
	dec   *json.Decoder
	nodes int
}

func (b *treeBuilder) build(depth int) (*node, error) {
	tok, err := b.dec.Token()
	if err != nil {
		return nil, err
	}
	b.nodes++
	if b.nodes > maxTreeNodes {
		return nil, errTreeLimit
	}

	switch t := tok.(type) {
	case json.Delim:
		n := &node{object: t == '{', array: t == '['}
		for b.dec.More() {
			key := ""
			if n.object {
				keyTok, err := b.dec.Token()
				if err != nil {
					return n, err
				}
				key, _ = keyTok.(string)
			}
			child, err := b.child(depth + 1)
			if child != nil {
				n.keys = append(n.keys, key)
				n.children = append(n.children, child)
			}
			if err != nil {
				return n, err
			}
		}
		_, err := b.dec.Token()
		return n, err
	case string:
		return &node{str: &t}, nil
	default:
		return &node{}, nil
	}
}

func (b *treeBuilder) child(depth int) (*node, error) {
	if depth > maxTreeDepth {
		var skipped json.RawMessage
		if err := b.dec.Decode(&skipped); err != nil {
			return nil, err
		}
		return &node{}, nil
	}
	return b.build(depth)
}
