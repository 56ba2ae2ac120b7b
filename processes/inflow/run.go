package inflow

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/artie-labs/snowflow/clients/snowflake/dialect"
	"github.com/artie-labs/snowflow/lib"
	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
	"github.com/artie-labs/snowflow/lib/maputil"
	"github.com/artie-labs/snowflow/lib/render"
	"github.com/artie-labs/snowflow/lib/runlog"
	"github.com/artie-labs/snowflow/lib/telemetry/metrics"
	"github.com/artie-labs/snowflow/lib/telemetry/metrics/base"
)

const heartbeatInterval = time.Minute

type Executor interface {
	ExecuteStatement(ctx context.Context, statement render.Statement) error
}

// Marker records that a table has been loaded, e.g. by staging a marker file for the path existence strategy.
type Marker interface {
	MarkLoaded(ctx context.Context, path flow.ObjectPath) error
}

type Args struct {
	Config config.Config
	// Execute - if disabled, the rendered statements are written to [Output] instead.
	Execute bool
	// Force - start from an empty run log instead of the previous one.
	Force bool

	Checker    flow.ExistenceChecker
	TypeMapper flow.TypeMapper
	Executor   Executor
	RunLogs    runlog.Store
	// Marker is optional.
	Marker  Marker
	Metrics base.Client
	Output  io.Writer
}

func (a Args) Validate() error {
	if a.Config.Snowflake == nil {
		return fmt.Errorf("snowflake config is nil")
	}

	if a.Execute {
		if a.Executor == nil {
			return fmt.Errorf("executor is nil")
		}

		if a.RunLogs == nil {
			return fmt.Errorf("run log store is nil")
		}
	} else if a.Output == nil {
		return fmt.Errorf("output is nil")
	}

	return nil
}

type Result struct {
	Plan *flow.FlowPlan
	// Statements is the number of statements that were printed or executed.
	Statements   int
	FailedTables []string
}

// Run plans every configured inflow and then either prints or executes the resulting statements.
func Run(ctx context.Context, args Args) (Result, error) {
	if err := args.Validate(); err != nil {
		return Result{}, err
	}

	if args.Metrics == nil {
		args.Metrics = metrics.NullMetricsProvider{}
	}

	tree, err := flow.BuildTree(args.Config)
	if err != nil {
		return Result{}, err
	}

	planner, err := flow.NewPlanner(args.Checker, args.TypeMapper, flow.Options{
		StorageIntegration:   args.Config.Snowflake.StorageIntegration,
		Parallelism:          args.Config.Existence.Parallelism,
		AssumeMissingOnError: args.Config.Existence.AssumeMissingOnError,
		Metrics:              args.Metrics,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create planner: %w", err)
	}

	plan, err := planner.Plan(ctx, tree)
	if err != nil {
		switch {
		case flow.IsConfigError(err):
			return Result{}, fmt.Errorf("invalid inflow config: %w", err)
		case flow.IsExistenceCheckError(err):
			slog.Warn("Set existence.assumeMissingOnError to treat objects whose existence cannot be determined as missing")
		}
		return Result{}, fmt.Errorf("failed to plan: %w", err)
	}

	counts := plan.CountByKind()
	slog.Info("Planned inflows",
		slog.Int("createSchema", counts[constants.CreateSchema]),
		slog.Int("createTable", counts[constants.CreateTable]),
		slog.Int("loadTable", counts[constants.LoadTable]),
		slog.Int("skip", counts[constants.SkipObject]),
	)

	renderer, err := render.NewRenderer(dialect.SnowflakeDialect{})
	if err != nil {
		return Result{}, err
	}

	if !args.Execute {
		statements, err := printPlan(args.Output, renderer, plan)
		return Result{Plan: plan, Statements: statements}, err
	}

	exec := &execution{Args: args, renderer: renderer, logs: maputil.NewOrderedMap[*runlog.Log](true), failed: make(map[string]bool)}
	err = exec.run(ctx, plan)
	result := Result{Plan: plan, Statements: exec.statements, FailedTables: exec.failedTables}
	args.Metrics.Gauge("inflow.tables.failed", float64(len(result.FailedTables)), nil)
	if err != nil {
		return result, err
	}

	if len(result.FailedTables) > 0 {
		return result, fmt.Errorf("%d table(s) failed to load: %s", len(result.FailedTables), strings.Join(result.FailedTables, ", "))
	}

	return result, nil
}

func printPlan(w io.Writer, renderer *render.Renderer, plan *flow.FlowPlan) (int, error) {
	var count int
	for _, op := range plan.Operations() {
		if op.Kind == constants.SkipObject {
			if _, err := fmt.Fprintf(w, "-- skip %s: %s\n\n", op.Target, op.Parameters.String(flow.ParamReason)); err != nil {
				return count, err
			}
			continue
		}

		statements, err := renderer.RenderOperation(op)
		if err != nil {
			return count, err
		}

		for _, statement := range statements {
			if _, err = fmt.Fprintf(w, "%s;\n\n", statement.SQL); err != nil {
				return count, err
			}
			count++
		}
	}

	return count, nil
}

type execution struct {
	Args
	renderer *render.Renderer
	// logs holds the run log of every schema touched by this run, keyed by [runlog.Key.String].
	logs         *maputil.OrderedMap[*runlog.Log]
	tableStarts  map[string]time.Time
	failed       map[string]bool
	failedTables []string
	statements   int
}

func objectPath(op flow.FlowOperation) flow.ObjectPath {
	return flow.ObjectPath{
		Database: op.Parameters.String(flow.ParamDatabase),
		Schema:   op.Parameters.String(flow.ParamSchema),
		Table:    op.Parameters.String(flow.ParamTable),
	}
}

// tableCommand returns the command [op]'s table was configured with.
func tableCommand(op flow.FlowOperation) constants.Command {
	return cmp.Or(constants.Command(op.Parameters.String(flow.ParamCommand)), constants.Write)
}

func (e *execution) runLog(ctx context.Context, path flow.ObjectPath) (*runlog.Log, error) {
	key := runlog.Key{Database: path.Database, Schema: path.Schema}
	if log, ok := e.logs.Get(key.String()); ok {
		return log, nil
	}

	log := runlog.NewLog(key)
	if !e.Force {
		previous, err := e.RunLogs.Load(ctx, key)
		if err == nil {
			log = previous
		} else if !errors.Is(err, runlog.ErrNotFound) {
			return nil, fmt.Errorf("failed to load run log for %q: %w", key.String(), err)
		}
	}

	log.StartRun(time.Now())
	e.logs.Add(key.String(), log)
	return log, nil
}

func (e *execution) run(ctx context.Context, plan *flow.FlowPlan) error {
	e.tableStarts = make(map[string]time.Time)
	runErr := e.executeAll(ctx, plan)

	// Run logs are saved even when the run was aborted or cancelled.
	saveCtx := context.WithoutCancel(ctx)
	for key, log := range e.logs.All() {
		log.FinishRun(time.Now())
		if err := e.RunLogs.Save(saveCtx, runlog.Key{Database: log.Database, Schema: log.Schema}, log); err != nil {
			slog.Error("Failed to save run log", slog.String("key", key), slog.Any("err", err))
			if runErr == nil {
				runErr = fmt.Errorf("failed to save run log for %q: %w", key, err)
			}
		}
	}

	return runErr
}

func (e *execution) executeAll(ctx context.Context, plan *flow.FlowPlan) error {
	for _, op := range plan.Operations() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if op.Kind == constants.SkipObject {
			slog.Info("Skipping", slog.String("target", op.Target), slog.String("reason", op.Parameters.String(flow.ParamReason)))
			continue
		}

		path := objectPath(op)
		log, err := e.runLog(ctx, path)
		if err != nil {
			return err
		}

		switch op.Kind {
		case constants.CreateSchema:
			if err = e.execute(ctx, op); err != nil {
				log.Success = false
				return fmt.Errorf("failed to create schema %q: %w", op.Target, err)
			}
			log.SchemaCreated = true
		case constants.CreateTable:
			e.tableStarts[op.Target] = time.Now()
			if err = e.execute(ctx, op); err != nil {
				e.tableFailed(log, op, err)
			}
		case constants.LoadTable:
			if e.failed[op.Target] {
				slog.Warn("Not loading table since it could not be created", slog.String("target", op.Target))
				continue
			}

			if err = e.execute(ctx, op); err != nil {
				e.tableFailed(log, op, err)
				continue
			}

			e.tableLoaded(ctx, log, op, path)
		default:
			return flow.PlanningInvariantError{Path: op.NodePath, Message: fmt.Sprintf("unexpected operation kind %q", op.Kind)}
		}
	}

	return nil
}

func (e *execution) execute(ctx context.Context, op flow.FlowOperation) error {
	statements, err := e.renderer.RenderOperation(op)
	if err != nil {
		return err
	}

	for _, statement := range statements {
		start := time.Now()
		stop := lib.NewHeartbeats(heartbeatInterval, heartbeatInterval, "Statement is still running",
			slog.String("operation", string(op.Kind)),
			slog.String("target", op.Target),
		).Start(ctx)
		err = e.Executor.ExecuteStatement(ctx, statement)
		stop()
		e.Metrics.Timing("inflow.statement.duration", time.Since(start), map[string]string{
			"operation": string(op.Kind),
			"success":   fmt.Sprint(err == nil),
		})

		if err != nil {
			return err
		}
		e.statements++
	}

	return nil
}

func (e *execution) tableFailed(log *runlog.Log, op flow.FlowOperation, err error) {
	slog.Error("Failed to write table", slog.String("target", op.Target), slog.String("operation", string(op.Kind)), slog.Any("err", err))
	e.Metrics.Incr("inflow.table.failed", map[string]string{"operation": string(op.Kind)})
	log.RecordTable(op.Parameters.String(flow.ParamTable), tableCommand(op), e.tableStart(op), time.Now(), err)
	if !e.failed[op.Target] {
		e.failed[op.Target] = true
		e.failedTables = append(e.failedTables, op.Target)
	}
}

func (e *execution) tableLoaded(ctx context.Context, log *runlog.Log, op flow.FlowOperation, path flow.ObjectPath) {
	slog.Info("Loaded table", slog.String("target", op.Target), slog.Duration("duration", time.Since(e.tableStart(op))))
	e.Metrics.Incr("inflow.table.loaded", nil)
	log.RecordTable(path.Table, tableCommand(op), e.tableStart(op), time.Now(), nil)

	if e.Marker != nil {
		if err := e.Marker.MarkLoaded(ctx, path); err != nil {
			// The table was loaded, a missing marker only means it is reloaded by the next writenx run.
			slog.Warn("Failed to mark table as loaded", slog.String("target", op.Target), slog.Any("err", err))
		}
	}
}

func (e *execution) tableStart(op flow.FlowOperation) time.Time {
	if start, ok := e.tableStarts[op.Target]; ok {
		return start
	}

	return time.Now()
}
