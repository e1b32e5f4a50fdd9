package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrGather = errors.New("metrics gather failed")
)

// Gather snapshots the custom registry, wrapping failures with ErrGather.
func Gather() (int, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, errors.Join(ErrGather, err)
	}
	return len(families), nil
}
