package monitor

import (
	"errors"
	"fmt"
)

var (
	ErrFlashFailed = errors.New("flash failed")
	ErrSerialOpen  = errors.New("open serial port")
	ErrTimeout     = errors.New("timeout waiting for benchmark to end")
)

// TimeoutError is returned when a read produced no data before the sentinel
// was seen. Output holds everything captured up to that point.
type TimeoutError struct {
	Output string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v (%d bytes captured)", ErrTimeout, len(e.Output))
}

// Is lets errors.Is(err, ErrTimeout) match.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
