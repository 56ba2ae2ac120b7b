package runlog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
)

// Checker implements [flow.ExistenceChecker] by inspecting the run logs of previous runs.
// Logs are loaded once per schema and cached for the lifetime of the checker.
type Checker struct {
	store Store
	mu    sync.Mutex
	logs  map[Key]*Log
}

func NewChecker(store Store) *Checker {
	return &Checker{
		store: store,
		logs:  make(map[Key]*Log),
	}
}

func (c *Checker) load(ctx context.Context, key Key) (*Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if log, ok := c.logs[key]; ok {
		return log, nil
	}

	log, err := c.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log = nil
	}

	c.logs[key] = log
	return log, nil
}

func (c *Checker) Exists(ctx context.Context, path flow.ObjectPath, kind constants.NodeKind) (bool, error) {
	log, err := c.load(ctx, Key{Database: path.Database, Schema: path.Schema})
	if err != nil {
		return false, err
	}

	switch kind {
	case constants.Schema:
		// A log is also saved when the schema could not be created.
		return log != nil && log.SchemaCreated, nil
	case constants.Table:
		if log == nil {
			return false, nil
		}

		entry, ok := log.Tables[path.Table]
		if !ok {
			return false, nil
		}

		if !entry.Success {
			return false, fmt.Errorf("previous run of %q failed (%s): %w", path.String(), entry.Message, flow.ErrAmbiguousState)
		}

		return true, nil
	default:
		return false, fmt.Errorf("existence checks are not supported for %s nodes", kind)
	}
}
