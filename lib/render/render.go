package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
	"github.com/artie-labs/snowflow/lib/sql"
)

// Statement is a single SQL statement rendered from a flow operation.
type Statement struct {
	Operation flow.FlowOperation
	SQL       string
}

type Renderer struct {
	templates map[constants.OperationKind][]*template.Template
}

func NewRenderer(dialect sql.Dialect) (*Renderer, error) {
	funcs := template.FuncMap{
		"ident":   dialect.QuoteIdentifier,
		"column":  dialect.QuoteColumn,
		"literal": sql.QuoteLiteral,
		"upper":   strings.ToUpper,
	}

	renderer := &Renderer{templates: make(map[constants.OperationKind][]*template.Template)}
	for kind, texts := range dialect.Templates() {
		for i, text := range texts {
			tmpl, err := template.New(fmt.Sprintf("%s_%d", kind, i)).Funcs(funcs).Option("missingkey=error").Parse(text)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s template: %w", kind, err)
			}

			renderer.templates[kind] = append(renderer.templates[kind], tmpl)
		}
	}

	return renderer, nil
}

// RenderOperation renders the statements of a single operation. Skip operations render no statements.
func (r *Renderer) RenderOperation(op flow.FlowOperation) ([]Statement, error) {
	if op.Kind == constants.SkipObject {
		return nil, nil
	}

	templates, ok := r.templates[op.Kind]
	if !ok {
		return nil, fmt.Errorf("no templates for operation kind: %q", op.Kind)
	}

	for key, value := range op.Parameters {
		if value == nil {
			return nil, fmt.Errorf("parameter %q of %s %q is null", key, op.Kind, op.Target)
		}
	}

	var statements []Statement
	for _, tmpl := range templates {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, map[string]any(op.Parameters)); err != nil {
			return nil, fmt.Errorf("failed to render %s %q: %w", op.Kind, op.Target, err)
		}

		statements = append(statements, Statement{Operation: op, SQL: sb.String()})
	}

	return statements, nil
}
