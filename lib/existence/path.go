package existence

import (
	"context"
	"fmt"
	"strings"

	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
	"github.com/artie-labs/snowflow/lib/stringutil"
)

const markerFileName = "_SUCCESS"

// MarkerStore is implemented by the S3 and GCS clients.
type MarkerStore interface {
	HasPrefix(ctx context.Context, bucket, prefix string) (bool, error)
	PutMarker(ctx context.Context, bucket, key string) error
}

// PathChecker treats an object as existing when a marker has been staged under its path,
// e.g. s3://markers/snowflow/PROD/APP/USERS/_SUCCESS once the users table was loaded.
type PathChecker struct {
	store  MarkerStore
	bucket string
	prefix string
}

func NewPathChecker(store MarkerStore, settings config.PathProbeSettings) (*PathChecker, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("path probe bucket is empty")
	}

	return &PathChecker{
		store:  store,
		bucket: settings.Bucket,
		prefix: strings.Trim(settings.Prefix, "/"),
	}, nil
}

func (p *PathChecker) objectPrefix(path flow.ObjectPath) string {
	return stringutil.JoinNonEmpty("/", p.prefix, strings.ToUpper(path.Database), strings.ToUpper(path.Schema), strings.ToUpper(path.Table)) + "/"
}

func (p *PathChecker) Exists(ctx context.Context, path flow.ObjectPath, kind constants.NodeKind) (bool, error) {
	switch kind {
	case constants.Schema, constants.Table:
		return p.store.HasPrefix(ctx, p.bucket, p.objectPrefix(path))
	default:
		return false, fmt.Errorf("existence checks are not supported for %s nodes", kind)
	}
}

// MarkLoaded stages the marker of [path] so subsequent checks report it as existing.
func (p *PathChecker) MarkLoaded(ctx context.Context, path flow.ObjectPath) error {
	return p.store.PutMarker(ctx, p.bucket, p.objectPrefix(path)+markerFileName)
}
