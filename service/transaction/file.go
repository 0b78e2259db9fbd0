package transaction

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// Snapshot captures the current content of URL and returns a hold restoring it;
// when URL does not exist the hold removes whatever is created there later.
func Snapshot(ctx context.Context, fs afs.Service, URL string) (Hold, error) {
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, err
	}
	if !exists {
		return Remove(fs, URL), nil
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", URL, err)
	}
	return NewHold("restore "+URL, func(ctx context.Context) error {
		return fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data))
	}), nil
}

// Remove returns a hold deleting a produced artifact.
func Remove(fs afs.Service, URL string) Hold {
	return NewHold("remove "+URL, func(ctx context.Context) error {
		exists, err := fs.Exists(ctx, URL)
		if err != nil || !exists {
			return err
		}
		return fs.Delete(ctx, URL)
	})
}
