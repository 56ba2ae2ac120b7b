package flow

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/config/constants"
)

const pathSeparator = "/"

// Attributes holds the kind specific metadata of a node.
type Attributes struct {
	// Destination is the name of the object in Snowflake, defaults to the node's name.
	Destination string
	// PathFragment is appended to the export location when loading a table.
	PathFragment string
	// Location is the export location of a database node, e.g. s3://bucket/prefix.
	Location string
	// SourceKind is set on database nodes and drives type mapping for its columns.
	SourceKind constants.SourceKind
	// SourceType and DestinationType are set on column nodes.
	SourceType      string
	DestinationType string
}

// ConfigNode is one addressable object of an inflow configuration.
// Nodes are owned by a [ConfigTree] and must not be modified once the tree is built.
type ConfigNode struct {
	Path    string
	Name    string
	Kind    constants.NodeKind
	Command constants.Command
	// Filter applies to the node's children.
	Filter     *FilterRule
	Attributes Attributes
	children   []string
}

func (c ConfigNode) DestinationName() string {
	return cmp.Or(c.Attributes.Destination, c.Name)
}

// ConfigTree is an immutable arena of nodes keyed by their path, e.g. "prod/app/users/id".
type ConfigTree struct {
	nodes map[string]ConfigNode
	roots []string
}

func (c *ConfigTree) Node(path string) (ConfigNode, bool) {
	node, ok := c.nodes[path]
	return node, ok
}

// Roots returns the database node paths in configuration order.
func (c *ConfigTree) Roots() []string {
	return slices.Clone(c.roots)
}

// ChildPaths returns the paths of a node's children in configuration order.
func (c *ConfigTree) ChildPaths(path string) []string {
	return slices.Clone(c.nodes[path].children)
}

func (c *ConfigTree) Len() int {
	return len(c.nodes)
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + pathSeparator + name
}

type treeBuilder struct {
	tree *ConfigTree
}

// add validates [node] and stores it under its parent.
func (t *treeBuilder) add(parent string, node ConfigNode, filter *config.Filter) (ConfigNode, error) {
	if strings.TrimSpace(node.Name) == "" {
		return ConfigNode{}, NewConfigError(childPath(parent, "<empty>"), "%s name is empty", node.Kind)
	}

	if strings.Contains(node.Name, pathSeparator) {
		return ConfigNode{}, NewConfigError(childPath(parent, node.Name), "%s name cannot contain %q", node.Kind, pathSeparator)
	}

	node.Path = childPath(parent, node.Name)
	if _, ok := t.tree.nodes[node.Path]; ok {
		return ConfigNode{}, NewConfigError(node.Path, "duplicate %s name %q", node.Kind, node.Name)
	}

	if node.Command != "" && !node.Command.IsValid() {
		return ConfigNode{}, NewConfigError(node.Path, "invalid command: %q", node.Command)
	}

	rule, err := filterRuleFromConfig(filter)
	if err != nil {
		return ConfigNode{}, ConfigError{Path: node.Path, Err: err}
	}
	node.Filter = rule

	t.tree.nodes[node.Path] = node
	if parent == "" {
		t.tree.roots = append(t.tree.roots, node.Path)
	} else {
		parentNode := t.tree.nodes[parent]
		parentNode.children = append(parentNode.children, node.Path)
		t.tree.nodes[parent] = parentNode
	}

	return node, nil
}

func inflowLocation(s3 config.S3Settings) string {
	location := "s3://" + s3.Bucket
	if prefix := strings.Trim(s3.Prefix, pathSeparator); prefix != "" {
		location += pathSeparator + prefix
	}

	return location
}

// BuildTree turns the inflows of a config into a [ConfigTree].
// Invalid commands, malformed filters and duplicate sibling names are returned as a [ConfigError].
func BuildTree(cfg config.Config) (*ConfigTree, error) {
	builder := treeBuilder{tree: &ConfigTree{nodes: make(map[string]ConfigNode)}}
	for _, inflow := range cfg.Inflows {
		if err := builder.addInflow(inflow, inflowLocation(cfg.S3For(inflow))); err != nil {
			return nil, err
		}
	}

	return builder.tree, nil
}

func (t *treeBuilder) addInflow(inflow config.Inflow, location string) error {
	database, err := t.add("", ConfigNode{
		Name:    inflow.Name,
		Kind:    constants.Database,
		Command: inflow.Command,
		Attributes: Attributes{
			Destination:  inflow.Destination,
			PathFragment: inflow.Path,
			Location:     location,
			SourceKind:   inflow.Type,
		},
	}, inflow.Filter)
	if err != nil {
		return err
	}

	for _, schema := range inflow.Schemas {
		if err = t.addSchema(database.Path, schema); err != nil {
			return err
		}
	}

	return nil
}

func (t *treeBuilder) addSchema(parent string, schemaCfg config.Schema) error {
	schema, err := t.add(parent, ConfigNode{
		Name:    schemaCfg.Name,
		Kind:    constants.Schema,
		Command: schemaCfg.Command,
		Attributes: Attributes{
			Destination:  schemaCfg.Destination,
			PathFragment: cmp.Or(schemaCfg.Path, schemaCfg.Name),
		},
	}, schemaCfg.Filter)
	if err != nil {
		return err
	}

	for _, table := range schemaCfg.Tables {
		if err = t.addTable(schema.Path, table); err != nil {
			return err
		}
	}

	return nil
}

func (t *treeBuilder) addTable(parent string, tableCfg config.Table) error {
	table, err := t.add(parent, ConfigNode{
		Name:    tableCfg.Name,
		Kind:    constants.Table,
		Command: tableCfg.Command,
		Attributes: Attributes{
			Destination:  tableCfg.Destination,
			PathFragment: cmp.Or(tableCfg.Path, tableCfg.Name),
		},
	}, tableCfg.Filter)
	if err != nil {
		return err
	}

	for _, column := range tableCfg.Columns {
		if _, err = t.add(table.Path, ConfigNode{
			Name:    column.Name,
			Kind:    constants.Column,
			Command: column.Command,
			Attributes: Attributes{
				Destination:     column.Destination,
				SourceType:      column.Type,
				DestinationType: column.DestinationType,
			},
		}, nil); err != nil {
			return err
		}
	}

	return nil
}

func (c *ConfigTree) String() string {
	return fmt.Sprintf("ConfigTree(roots=%v, nodes=%d)", c.roots, len(c.nodes))
}
