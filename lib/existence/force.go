package existence

import (
	"context"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
)

// NeverExists reports every object as missing, writenx then behaves like write. It backs the --force flag.
type NeverExists struct{}

func (NeverExists) Exists(_ context.Context, _ flow.ObjectPath, _ constants.NodeKind) (bool, error) {
	return false, nil
}
