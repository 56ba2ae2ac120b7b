package flow

import (
	"maps"
	"slices"

	"github.com/artie-labs/snowflow/lib/config/constants"
)

// Template variables bound by the renderer.
const (
	ParamDatabase           = "database"
	ParamSchema             = "schema"
	ParamTable              = "table"
	ParamSource             = "source"
	ParamColumns            = "columns"
	ParamLocation           = "location"
	ParamStage              = "stage"
	ParamStorageIntegration = "storage_integration"
	ParamFileFormat         = "file_format"
	ParamObjectKind         = "object_kind"
	ParamReason             = "reason"
	// ParamCommand is the command the table was configured with, before writenx was promoted to a write.
	ParamCommand = "command"
)

// Column is a resolved column of a table, it is bound into the [ParamColumns] parameter.
type Column struct {
	Name            string
	SourceType      string
	DestinationType string
}

type Parameters map[string]any

func (p Parameters) String(key string) string {
	value, _ := p[key].(string)
	return value
}

func (p Parameters) Columns() []Column {
	columns, _ := p[ParamColumns].([]Column)
	return columns
}

func (p Parameters) clone() Parameters {
	cloned := maps.Clone(p)
	if columns, ok := cloned[ParamColumns].([]Column); ok {
		cloned[ParamColumns] = slices.Clone(columns)
	}

	return cloned
}

type FlowOperation struct {
	Kind constants.OperationKind
	// Target is the destination path, e.g. "DB.SCHEMA.TABLE".
	Target     string
	Parameters Parameters
	// NodePath is the config node the operation was resolved from.
	NodePath string
}

// FlowPlan is the ordered list of destination operations produced by a [Planner]. It is not modified once returned.
type FlowPlan struct {
	operations []FlowOperation
}

func NewFlowPlan(operations []FlowOperation) *FlowPlan {
	plan := &FlowPlan{}
	for _, op := range operations {
		op.Parameters = op.Parameters.clone()
		plan.operations = append(plan.operations, op)
	}

	return plan
}

// Operations returns a copy of the plan's operations.
func (f *FlowPlan) Operations() []FlowOperation {
	operations := make([]FlowOperation, len(f.operations))
	for i, op := range f.operations {
		op.Parameters = op.Parameters.clone()
		operations[i] = op
	}

	return operations
}

func (f *FlowPlan) Len() int {
	return len(f.operations)
}

// CountByKind returns the number of operations of each kind.
func (f *FlowPlan) CountByKind() map[constants.OperationKind]int {
	counts := make(map[constants.OperationKind]int)
	for _, op := range f.operations {
		counts[op.Kind]++
	}

	return counts
}
