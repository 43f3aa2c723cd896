package simulator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when process descriptors or scheduling
	// parameters are rejected by NewSimulator or UpdateConfig.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrSimulationFinished is returned by Step once every process has completed.
	ErrSimulationFinished = errors.New("simulation finished")
	// ErrNoData is returned by AggregateStats before any process has completed.
	ErrNoData = errors.New("no completed processes")
)

// SimError is a custom error type for simulation errors
type SimError struct {
	Kind    error
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("simulation error: %v: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is match on the error kind
func (e SimError) Unwrap() error {
	return e.Kind
}

func errInvalidConfig(format string, args ...interface{}) error {
	return SimError{Kind: ErrInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

func errFinished(clock int) error {
	return SimError{Kind: ErrSimulationFinished, Message: fmt.Sprintf("step called at t=%d after all processes completed", clock)}
}

func errNoData() error {
	return SimError{Kind: ErrNoData, Message: "aggregate statistics need at least one completed process"}
}
