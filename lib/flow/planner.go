package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/stringutil"
	"github.com/artie-labs/snowflow/lib/telemetry/metrics"
	"github.com/artie-labs/snowflow/lib/telemetry/metrics/base"
)

const reasonAlreadyExists = "already exists"

type Options struct {
	StorageIntegration string
	FileFormat         string
	// Parallelism is the number of sibling table existence checks that may be in flight at once, 1 disables prefetching.
	Parallelism int
	// AssumeMissingOnError treats a failed existence check as "does not exist" instead of failing the plan.
	AssumeMissingOnError bool
	Metrics              base.Client
}

// ResolvedNode is a [ConfigNode] with its filter and command resolved for a single planning run.
type ResolvedNode struct {
	ConfigNode
	Included         bool
	EffectiveCommand constants.Command
}

// Resolve evaluates [parentFilter] against the node's name and resolves its command from the inherited one.
// The effective command of an excluded node is left empty.
func Resolve(node ConfigNode, parentFilter *FilterRule, inherited constants.Command) ResolvedNode {
	resolved := ResolvedNode{ConfigNode: node, Included: parentFilter.Matches(node.Name)}
	if resolved.Included {
		resolved.EffectiveCommand = ResolveCommand(node.Command, inherited)
	}

	return resolved
}

type Planner struct {
	checker    ExistenceChecker
	typeMapper TypeMapper
	opts       Options
}

func NewPlanner(checker ExistenceChecker, typeMapper TypeMapper, opts Options) (*Planner, error) {
	if checker == nil {
		return nil, fmt.Errorf("existence checker is nil")
	}

	if typeMapper == nil {
		return nil, fmt.Errorf("type mapper is nil")
	}

	if opts.StorageIntegration == "" {
		return nil, fmt.Errorf("storage integration is empty")
	}

	if opts.FileFormat == "" {
		opts.FileFormat = constants.DefaultFileFormat
	}

	if opts.Metrics == nil {
		opts.Metrics = metrics.NullMetricsProvider{}
	}

	return &Planner{
		checker:    checker,
		typeMapper: typeMapper,
		opts:       opts,
	}, nil
}

// Plan walks the tree depth-first in configuration order and returns the resulting operations.
// Either a complete plan or the first error encountered is returned.
func (p *Planner) Plan(ctx context.Context, tree *ConfigTree) (*FlowPlan, error) {
	if tree == nil {
		return nil, PlanningInvariantError{Message: "config tree is nil"}
	}

	start := time.Now()
	run := &planRun{Planner: p, tree: tree}
	for _, path := range tree.Roots() {
		if err := run.visitDatabase(ctx, path); err != nil {
			p.opts.Metrics.Incr("flow.plan.failed", nil)
			return nil, err
		}
	}

	plan := NewFlowPlan(run.operations)
	p.opts.Metrics.Timing("flow.plan.duration", time.Since(start), nil)
	p.opts.Metrics.Count("flow.plan.operations", int64(plan.Len()), nil)
	return plan, nil
}

type existenceResult struct {
	exists bool
	err    error
}

// scope is the chain of ancestors of the node being visited.
type scope struct {
	database ConfigNode
	schema   ConfigNode
}

func (s scope) objectPath(table string) ObjectPath {
	return ObjectPath{
		Database: s.database.DestinationName(),
		Schema:   s.schema.DestinationName(),
		Table:    table,
	}
}

func (s scope) location(table ConfigNode) string {
	return strings.TrimSuffix(s.database.Attributes.Location, "/") + "/" +
		stringutil.JoinNonEmpty("/", s.database.Attributes.PathFragment, s.schema.Attributes.PathFragment, table.Attributes.PathFragment) + "/"
}

type planRun struct {
	*Planner
	tree       *ConfigTree
	operations []FlowOperation
}

func (r *planRun) resolve(ctx context.Context, path string, kind constants.NodeKind, parentFilter *FilterRule, inherited constants.Command) (ResolvedNode, error) {
	if err := ctx.Err(); err != nil {
		return ResolvedNode{}, err
	}

	if inherited == constants.Skip {
		return ResolvedNode{}, PlanningInvariantError{Path: path, Message: "visited a node below a skipped ancestor"}
	}

	node, ok := r.tree.Node(path)
	if !ok {
		return ResolvedNode{}, PlanningInvariantError{Path: path, Message: "node is missing from the config tree"}
	}

	if node.Kind != kind {
		return ResolvedNode{}, PlanningInvariantError{Path: path, Message: fmt.Sprintf("expected a %s node, got: %s", kind, node.Kind)}
	}

	return Resolve(node, parentFilter, inherited), nil
}

func omitted(node ResolvedNode) bool {
	if !node.Included {
		slog.Debug("Excluded by filter", slog.String("path", node.Path))
		return true
	}

	if node.EffectiveCommand == constants.Skip {
		slog.Debug("Skipping", slog.String("path", node.Path))
		return true
	}

	return false
}

func (r *planRun) visitDatabase(ctx context.Context, path string) error {
	database, err := r.resolve(ctx, path, constants.Database, nil, "")
	if err != nil {
		return err
	}

	if omitted(database) {
		return nil
	}

	// Databases emit no operations of their own, so there is nothing to check for writenx here.
	sc := scope{database: database.ConfigNode}
	for _, schemaPath := range r.tree.ChildPaths(database.Path) {
		if err = r.visitSchema(ctx, sc, schemaPath, database.Filter, database.EffectiveCommand); err != nil {
			return err
		}
	}

	return nil
}

func (r *planRun) visitSchema(ctx context.Context, sc scope, path string, parentFilter *FilterRule, inherited constants.Command) error {
	schema, err := r.resolve(ctx, path, constants.Schema, parentFilter, inherited)
	if err != nil {
		return err
	}

	if omitted(schema) {
		return nil
	}

	sc.schema = schema.ConfigNode
	objectPath := sc.objectPath("")
	write, err := r.shouldWrite(ctx, schema, objectPath, nil)
	if err != nil {
		return err
	}

	if write {
		r.append(FlowOperation{
			Kind:     constants.CreateSchema,
			Target:   objectPath.String(),
			NodePath: schema.Path,
			Parameters: Parameters{
				ParamDatabase: objectPath.Database,
				ParamSchema:   objectPath.Schema,
				ParamSource:   schema.Path,
			},
		})
	} else {
		// A pre-existing schema says nothing about its tables, they are still evaluated.
		r.appendSkip(schema, objectPath)
	}

	tablePaths := r.tree.ChildPaths(schema.Path)
	prefetched, err := r.prefetch(ctx, sc, tablePaths, schema.Filter, schema.EffectiveCommand)
	if err != nil {
		return err
	}

	for i, tablePath := range tablePaths {
		if err = r.visitTable(ctx, sc, tablePath, schema.Filter, schema.EffectiveCommand, prefetched[i]); err != nil {
			return err
		}
	}

	return nil
}

// prefetch runs the existence checks of writenx tables concurrently when parallelism is enabled.
// Results are indexed by configuration position so the plan order does not depend on completion order.
func (r *planRun) prefetch(ctx context.Context, sc scope, paths []string, parentFilter *FilterRule, inherited constants.Command) ([]*existenceResult, error) {
	results := make([]*existenceResult, len(paths))
	if r.opts.Parallelism <= 1 {
		return results, nil
	}

	var group errgroup.Group
	group.SetLimit(r.opts.Parallelism)
	for i, path := range paths {
		table, err := r.resolve(ctx, path, constants.Table, parentFilter, inherited)
		if err != nil {
			_ = group.Wait()
			return nil, err
		}

		if !table.Included || table.EffectiveCommand != constants.WriteNX {
			continue
		}

		objectPath := sc.objectPath(table.DestinationName())
		group.Go(func() error {
			exists, err := r.checkExists(ctx, table.ConfigNode, objectPath)
			results[i] = &existenceResult{exists: exists, err: err}
			return nil
		})
	}

	// Errors are kept per table and surfaced in configuration order by [visitTable].
	_ = group.Wait()
	return results, nil
}

func (r *planRun) visitTable(ctx context.Context, sc scope, path string, parentFilter *FilterRule, inherited constants.Command, prefetched *existenceResult) error {
	table, err := r.resolve(ctx, path, constants.Table, parentFilter, inherited)
	if err != nil {
		return err
	}

	if omitted(table) {
		return nil
	}

	objectPath := sc.objectPath(table.DestinationName())
	write, err := r.shouldWrite(ctx, table, objectPath, prefetched)
	if err != nil {
		return err
	}

	if !write {
		r.appendSkip(table, objectPath)
		return nil
	}

	columns, err := r.resolveColumns(ctx, sc, table)
	if err != nil {
		return err
	}

	if len(columns) == 0 {
		return NewConfigError(table.Path, "table has no columns to load")
	}

	r.append(FlowOperation{
		Kind:     constants.CreateTable,
		Target:   objectPath.String(),
		NodePath: table.Path,
		Parameters: Parameters{
			ParamDatabase: objectPath.Database,
			ParamSchema:   objectPath.Schema,
			ParamTable:    objectPath.Table,
			ParamSource:   table.Path,
			ParamColumns:  columns,
			ParamCommand:  string(table.EffectiveCommand),
		},
	})

	r.append(FlowOperation{
		Kind:     constants.LoadTable,
		Target:   objectPath.String(),
		NodePath: table.Path,
		Parameters: Parameters{
			ParamDatabase:           objectPath.Database,
			ParamSchema:             objectPath.Schema,
			ParamTable:              objectPath.Table,
			ParamSource:             table.Path,
			ParamColumns:            columns,
			ParamLocation:           sc.location(table.ConfigNode),
			ParamStage:              objectPath.Table + constants.StageSuffix,
			ParamStorageIntegration: r.opts.StorageIntegration,
			ParamFileFormat:         r.opts.FileFormat,
			ParamCommand:            string(table.EffectiveCommand),
		},
	})

	return nil
}

func (r *planRun) resolveColumns(ctx context.Context, sc scope, table ResolvedNode) ([]Column, error) {
	var columns []Column
	for _, columnPath := range r.tree.ChildPaths(table.Path) {
		column, err := r.resolve(ctx, columnPath, constants.Column, table.Filter, table.EffectiveCommand)
		if err != nil {
			return nil, err
		}

		// Columns only contribute to their table, writenx has nothing of its own to check.
		if omitted(column) {
			continue
		}

		destinationType := column.Attributes.DestinationType
		if destinationType == "" {
			destinationType, err = r.typeMapper.MapType(sc.database.Attributes.SourceKind, column.Attributes.SourceType)
			if err != nil {
				return nil, ConfigError{Path: column.Path, Err: err}
			}
		}

		columns = append(columns, Column{
			Name:            column.DestinationName(),
			SourceType:      column.Attributes.SourceType,
			DestinationType: destinationType,
		})
	}

	return columns, nil
}

func (r *planRun) checkExists(ctx context.Context, node ConfigNode, objectPath ObjectPath) (bool, error) {
	start := time.Now()
	exists, err := r.checker.Exists(ctx, objectPath, node.Kind)
	r.opts.Metrics.Timing("flow.existence_check.duration", time.Since(start), map[string]string{"kind": string(node.Kind)})
	slog.Debug("Checked existence",
		slog.String("path", node.Path),
		slog.String("object", objectPath.String()),
		slog.Bool("exists", exists),
		slog.Any("err", err),
	)
	return exists, err
}

// shouldWrite returns whether operations should be emitted for [node], promoting writenx to write when the object is missing.
func (r *planRun) shouldWrite(ctx context.Context, node ResolvedNode, objectPath ObjectPath, prefetched *existenceResult) (bool, error) {
	switch node.EffectiveCommand {
	case constants.Write:
		return true, nil
	case constants.WriteNX:
		var exists bool
		var err error
		if prefetched != nil {
			exists, err = prefetched.exists, prefetched.err
		} else {
			exists, err = r.checkExists(ctx, node.ConfigNode, objectPath)
		}

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false, err
			}

			checkErr := ExistenceCheckError{Path: node.Path, Object: objectPath, Err: err}
			if !r.opts.AssumeMissingOnError {
				return false, checkErr
			}

			r.opts.Metrics.Incr("flow.existence_check.assumed_missing", map[string]string{"kind": string(node.Kind)})
			slog.Warn("Existence check failed, assuming the object does not exist", slog.String("path", node.Path), slog.Any("err", checkErr))
			return true, nil
		}

		if exists {
			slog.Info("Skipping previously written object", slog.String("path", node.Path), slog.String("object", objectPath.String()))
		}

		return !exists, nil
	default:
		return false, PlanningInvariantError{Path: node.Path, Message: fmt.Sprintf("unexpected command %q", node.EffectiveCommand)}
	}
}

func (r *planRun) append(op FlowOperation) {
	r.operations = append(r.operations, op)
}

func (r *planRun) appendSkip(node ResolvedNode, objectPath ObjectPath) {
	r.append(FlowOperation{
		Kind:     constants.SkipObject,
		Target:   objectPath.String(),
		NodePath: node.Path,
		Parameters: Parameters{
			ParamDatabase:   objectPath.Database,
			ParamSchema:     objectPath.Schema,
			ParamTable:      objectPath.Table,
			ParamSource:     node.Path,
			ParamObjectKind: string(node.Kind),
			ParamReason:     reasonAlreadyExists,
		},
	})
}
