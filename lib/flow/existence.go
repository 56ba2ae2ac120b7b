package flow

import (
	"context"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/stringutil"
)

// ObjectPath is the destination address of an object, empty parts are omitted.
type ObjectPath struct {
	Database string
	Schema   string
	Table    string
}

func (o ObjectPath) String() string {
	return stringutil.JoinNonEmpty(".", o.Database, o.Schema, o.Table)
}

// ExistenceChecker reports whether a destination object already exists.
// Implementations return [ErrAmbiguousState] (wrapped) when the answer is neither yes nor no.
type ExistenceChecker interface {
	Exists(ctx context.Context, path ObjectPath, kind constants.NodeKind) (bool, error)
}

// TypeMapper maps a source column type to the Snowflake type it is created with.
type TypeMapper interface {
	MapType(source constants.SourceKind, sourceType string) (string, error)
}
