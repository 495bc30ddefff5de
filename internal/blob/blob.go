// Package blob selects and constructs the blob storage backend that holds
// submission file uploads.
package blob

import (
	"context"
	"fmt"

	"formcore/internal/blob/core"
	"formcore/internal/infra/blob/fs"
	"formcore/internal/infra/blob/memory"
	"formcore/internal/infra/blob/s3"
)

// Re-exported abstractions so callers depend on one package.
type (
	// Store is the backend-agnostic blob interface.
	Store = core.Store
	// Info describes a stored blob.
	Info = core.Info
	// PutOptions specifies optional parameters for Put.
	PutOptions = core.PutOptions
	// SignedURLOptions holds options for generating a pre-signed URL.
	SignedURLOptions = core.SignedURLOptions
	// Driver identifies a backend implementation.
	Driver = core.Driver
)

// Driver identifiers.
const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrUnsupported is returned when an optional capability is not available.
var ErrUnsupported = core.ErrUnsupported

// Options selects and parameterises a backend.
type Options struct {
	Driver Driver
	FSRoot string
	S3     s3.Config
}

// Open constructs the configured blob store. The filesystem driver is the
// default.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fs.New(opts.FSRoot)
	case DriverS3:
		return s3.New(ctx, opts.S3)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
