package connector

import (
	"context"
	"io"
	"os"
)

// Connection is an established channel to a target host. It can run
// commands and move files until closed.
type Connection interface {
	// Exec runs a command on the target and returns stdout, stderr, the
	// exit code and any transport-level error.
	Exec(ctx context.Context, cmd string) (stdout []byte, stderr []byte, exitCode int, err error)

	// UploadFile copies a local file to the target.
	UploadFile(ctx context.Context, localPath, remotePath string, mode os.FileMode) error

	// DownloadFile copies a file from the target to a local path.
	DownloadFile(ctx context.Context, remotePath, localPath string) error

	// Fetch opens a file on the target for reading. The caller closes
	// the returned reader.
	Fetch(ctx context.Context, remotePath string) (io.ReadCloser, error)

	Close() error
}
