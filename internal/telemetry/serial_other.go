//go:build !linux

package telemetry

import (
	"errors"
	"os"
)

// OpenSerial returns an error on non-Linux platforms.
func OpenSerial(path string, baud int) (*os.File, error) {
	return nil, errors.New("serial: not supported on this platform (requires Linux)")
}
