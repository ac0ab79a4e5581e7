package sidebars

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-book/pkg/nav"
)

var (
	// ErrInvalidItem is returned for items that are neither a string nor a mapping,
	// or mappings with unknown keys.
	ErrInvalidItem = errors.New("invalid sidebar item")

	// ErrUnknownItemType is returned for mappings whose type is not doc or category.
	ErrUnknownItemType = errors.New("unknown sidebar item type")

	// ErrMissingField is returned when a required key is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrDuplicateSidebar is returned when two sidebars share a name.
	ErrDuplicateSidebar = errors.New("duplicate sidebar")
)

// DecodeError reports an item of the declaration that could not be decoded.
type DecodeError struct {
	Tree string
	Path nav.Path
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sidebar %q: item %s: %v", e.Tree, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// item is the mapping form of a sidebar item. Child items are decoded
// separately from their yaml nodes.
type item struct {
	Type      string `mapstructure:"type"`
	ID        string `mapstructure:"id"`
	Label     string `mapstructure:"label"`
	Collapsed *bool  `mapstructure:"collapsed"`
}

// Load reads and parses the sidebars file at path.
func Load(path string) ([]nav.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidebars: %w", err)
	}
	trees, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trees, nil
}

// Parse decodes a sidebars declaration (YAML or JSON). Sidebars are returned
// in declaration order.
func Parse(data []byte) ([]nav.Tree, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse sidebars: %w", err)
	}
	trees := []nav.Tree{}
	if len(root.Content) == 0 {
		return trees, nil
	}

	doc := resolveAlias(root.Content[0])
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse sidebars: expected a mapping of sidebar names, got %s", doc.Tag)
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		if seen[name] {
			return nil, fmt.Errorf("%w %q", ErrDuplicateSidebar, name)
		}
		seen[name] = true

		items, err := decodeSequence(name, doc.Content[i+1], nil)
		if err != nil {
			return nil, err
		}
		trees = append(trees, nav.Tree{Name: name, Items: items})
	}
	return trees, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// decodeSequence decodes the item list n. A null list decodes to no items.
func decodeSequence(tree string, n *yaml.Node, parent nav.Path) ([]nav.Node, error) {
	n = resolveAlias(n)
	if isNull(n) {
		return []nav.Node{}, nil
	}
	if n.Kind != yaml.SequenceNode {
		if len(parent) == 0 {
			return nil, fmt.Errorf("sidebar %q: %w: expected a list of items, got %s", tree, ErrInvalidItem, n.Tag)
		}
		return nil, &DecodeError{Tree: tree, Path: parent, Err: fmt.Errorf("%w: items must be a list, got %s", ErrInvalidItem, n.Tag)}
	}

	nodes := make([]nav.Node, 0, len(n.Content))
	for i, c := range n.Content {
		p := make(nav.Path, len(parent), len(parent)+1)
		copy(p, parent)
		p = append(p, i)

		node, err := decodeItem(tree, c, p)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func decodeItem(tree string, n *yaml.Node, p nav.Path) (nav.Node, error) {
	fail := func(err error) error {
		return &DecodeError{Tree: tree, Path: p, Err: err}
	}

	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		// Shorthand for a doc item. The raw text is the id, so "10" and
		// "1.10" stay as written.
		if isNull(n) || n.Value == "" {
			return nil, fail(fmt.Errorf("%w: empty doc id", ErrInvalidItem))
		}
		return nav.DocRef{ID: nav.DocumentID(n.Value)}, nil
	case yaml.MappingNode:
		fields := make(map[string]any, len(n.Content)/2)
		var children *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, resolveAlias(n.Content[i+1])
			if key == "items" {
				children = val
				continue
			}
			v, err := scalarValue(val)
			if err != nil {
				return nil, fail(fmt.Errorf("%w: %s: %v", ErrInvalidItem, key, err))
			}
			fields[key] = v
		}

		var it item
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      &it,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(fields); err != nil {
			return nil, fail(fmt.Errorf("%w: %v", ErrInvalidItem, err))
		}
		return it.node(tree, p, children, fail)
	default:
		return nil, fail(fmt.Errorf("%w: unsupported value of kind %s", ErrInvalidItem, n.Tag))
	}
}

// scalarValue decodes a mapping value. Numbers keep their source text so
// numeric ids and labels decode as strings.
func scalarValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.ScalarNode && (n.Tag == "!!int" || n.Tag == "!!float") {
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (it item) node(tree string, p nav.Path, children *yaml.Node, fail func(error) error) (nav.Node, error) {
	switch it.Type {
	case "doc":
		if it.ID == "" {
			return nil, fail(fmt.Errorf("%w: doc item needs an id", ErrMissingField))
		}
		if children != nil || it.Collapsed != nil {
			return nil, fail(fmt.Errorf("%w: doc item cannot have items or collapsed", ErrInvalidItem))
		}
		return nav.DocRef{ID: nav.DocumentID(it.ID), Label: it.Label}, nil
	case "category":
		if it.Label == "" {
			return nil, fail(fmt.Errorf("%w: category needs a label", ErrMissingField))
		}
		if it.ID != "" {
			return nil, fail(fmt.Errorf("%w: category cannot have an id", ErrInvalidItem))
		}
		collapsed := true
		if it.Collapsed != nil {
			collapsed = *it.Collapsed
		}
		items := []nav.Node{}
		if children != nil {
			var err error
			if items, err = decodeSequence(tree, children, p); err != nil {
				return nil, err
			}
		}
		return nav.Category{Label: it.Label, Collapsed: collapsed, Items: items}, nil
	case "":
		return nil, fail(fmt.Errorf("%w: item needs a type", ErrMissingField))
	default:
		return nil, fail(fmt.Errorf("%w %q", ErrUnknownItemType, it.Type))
	}
}

// Labeler supplies display labels for documents.
type Labeler interface {
	Label(id nav.DocumentID) (string, bool)
}

// ApplyLabels returns copies of trees where doc items without a label take
// the label supplied by l. The input trees are not modified.
func ApplyLabels(trees []nav.Tree, l Labeler) []nav.Tree {
	out := make([]nav.Tree, len(trees))
	for i, t := range trees {
		out[i] = nav.Tree{Name: t.Name, Items: labelItems(t.Items, l)}
	}
	return out
}

func labelItems(items []nav.Node, l Labeler) []nav.Node {
	if items == nil {
		return nil
	}
	out := make([]nav.Node, len(items))
	for i, n := range items {
		switch n := nav.Normalize(n).(type) {
		case nav.DocRef:
			if n.Label == "" {
				if label, ok := l.Label(n.ID); ok {
					n.Label = label
				}
			}
			out[i] = n
		case nav.Category:
			n.Items = labelItems(n.Items, l)
			out[i] = n
		default:
			out[i] = n
		}
	}
	return out
}
