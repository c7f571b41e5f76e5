// Package publish uploads report artifacts to remote storage so CI jobs can
// fetch them after the runner's workspace is gone.
package publish

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Artifact is a single file to publish, already loaded in memory.
type Artifact struct {
	// TargetPath is the storage key, relative to the backend's root.
	TargetPath string
	Body       []byte
}

// Uploader sends one artifact to a storage backend.
type Uploader interface {
	Upload(ctx context.Context, targetPath string, body []byte) error
}

// UploadAll publishes every artifact concurrently. The first failure cancels
// the uploads still in flight and is returned.
func UploadAll(ctx context.Context, uploader Uploader, artifacts []Artifact) error {
	errG, ctx := errgroup.WithContext(ctx)

	for _, artifact := range artifacts {
		artifact := artifact
		errG.Go(func() error {
			return uploader.Upload(ctx, artifact.TargetPath, artifact.Body)
		})
	}

	return errG.Wait()
}
