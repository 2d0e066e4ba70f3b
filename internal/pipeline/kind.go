package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/AndreCostaaa/ejlv-builder/internal/build"
	"github.com/AndreCostaaa/ejlv-builder/internal/idf"
	"github.com/AndreCostaaa/ejlv-builder/internal/monitor"
)

// Error kinds recorded in history and metrics.
const (
	KindLaunch      = "launch"
	KindReconfigure = "reconfigure"
	KindRebuild     = "rebuild"
	KindFlash       = "flash"
	KindSerialOpen  = "serial_open"
	KindTimeout     = "timeout"
	KindFilesystem  = "filesystem"
	KindCanceled    = "canceled"
	KindInternal    = "internal"
)

// ErrorKind maps an error returned by a run to its kind. It returns "" for
// a nil error.
func ErrorKind(err error) string {
	var (
		pathErr *fs.PathError
		linkErr *os.LinkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, idf.ErrLaunch):
		return KindLaunch
	case errors.Is(err, build.ErrReconfigureFailed):
		return KindReconfigure
	case errors.Is(err, build.ErrRebuildFailed):
		return KindRebuild
	case errors.Is(err, monitor.ErrFlashFailed):
		return KindFlash
	case errors.Is(err, monitor.ErrSerialOpen):
		return KindSerialOpen
	case errors.Is(err, monitor.ErrTimeout):
		return KindTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &pathErr), errors.As(err, &linkErr):
		return KindFilesystem
	}
	return KindInternal
}
