// Package smoketest drives a running todo service through the full CRUD
// lifecycle and reports what it saw.
package smoketest

import (
	"errors"
	"time"
)

// Sentinel errors for smoke test failures.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrUnexpected   = errors.New("unexpected response")
	ErrVerification = errors.New("verification failed")
)

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusNotFound = 404
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
)

// Config holds configuration for the smoke test
type Config struct {
	BaseURL    string        // Base URL of the service
	NumTodos   int           // Number of todos to create
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for created todos, empty to skip
	Verbose    bool          // Enable verbose logging
}

// Stats holds test statistics
type Stats struct {
	TodosCreated   int
	TodosVerified  int
	TodosUpdated   int
	TodosDeleted   int
	TodosGone      int
	Failed         int
	ListBefore     int
	ListAfter      int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	RequestsIssued int64
}

// SuccessRate is the share of created todos that completed every phase.
func (s *Stats) SuccessRate() float64 {
	if s.TodosCreated == 0 {
		return 0
	}
	return float64(s.TodosGone) / float64(s.TodosCreated) * PercentageMultiplier
}
