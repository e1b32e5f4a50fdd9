package smoketest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/todos/internal/domain/model"
	"github.com/okian/todos/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run executes the complete smoke test and returns its statistics. A
// non-nil error means at least one check failed.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Named("smoketest")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting todo smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("todos", config.NumTodos),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	before, err := client.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("initial list failed: %w", err)
	}
	stats.ListBefore = len(before)

	// Step 2: Create todos concurrently
	inputs := generateInputs(config.NumTodos)
	var (
		mu      sync.Mutex
		created []model.Todo
	)
	fail := func(phase string) func(model.Todo, error) {
		return func(t model.Todo, err error) {
			stats.Failed++
			log.Warn(ctx, "check failed", logger.String("phase", phase), logger.Int64("id", t.ID), logger.Error(err))
		}
	}

	stats.TodosCreated = runPool(ctx, config.Workers, inputs, func(ctx context.Context, in model.Input) error {
		t, err := client.Create(ctx, in)
		if err != nil {
			return err
		}
		if err := verifyCreated(in, t); err != nil {
			return err
		}
		mu.Lock()
		created = append(created, t)
		mu.Unlock()
		return nil
	}, func(in model.Input, err error) {
		stats.Failed++
		log.Warn(ctx, "check failed", logger.String("phase", "create"), logger.String("title", in.Title), logger.Error(err))
	})
	log.Info(ctx, "todos created", logger.Int("created", stats.TodosCreated))

	// Step 3: Each todo round-trips through GET
	stats.TodosVerified = runPool(ctx, config.Workers, created, func(ctx context.Context, want model.Todo) error {
		got, err := client.Get(ctx, want.ID)
		if err != nil {
			return err
		}
		return verifyRoundTrip(want, got)
	}, fail("get"))

	// Step 4: The list grew by at least the number created
	after, err := client.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list after create failed: %w", err)
	}
	stats.ListAfter = len(after)
	if err := verifyListGrowth(stats.ListBefore, after, created); err != nil {
		stats.Failed++
		log.Warn(ctx, "check failed", logger.String("phase", "list"), logger.Error(err))
	}

	// Step 5: Toggle each todo to completed
	stats.TodosUpdated = runPool(ctx, config.Workers, created, func(ctx context.Context, t model.Todo) error {
		got, err := client.Update(ctx, t.ID, model.Input{Title: t.Title, Completed: true})
		if err != nil {
			return err
		}
		return verifyUpdated(t, got)
	}, fail("update"))

	// Step 6: Save before deleting so the file reflects what was created
	if config.OutputFile != "" {
		if err := saveTodosToFile(config.OutputFile, created); err != nil {
			log.Warn(ctx, "failed to save todos to file", logger.Error(err))
		}
	}

	// Step 7: Delete each todo, then confirm it is gone
	stats.TodosDeleted = runPool(ctx, config.Workers, created, func(ctx context.Context, t model.Todo) error {
		return client.Delete(ctx, t.ID)
	}, fail("delete"))

	stats.TodosGone = runPool(ctx, config.Workers, created, func(ctx context.Context, t model.Todo) error {
		return client.Gone(ctx, t.ID)
	}, fail("gone"))

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	stats.RequestsIssued = client.requests.Load()

	displayFinalStats(ctx, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("smoke test interrupted: %w", err)
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d checks failed", ErrVerification, stats.Failed)
	}
	log.Info(ctx, "test completed successfully")
	return stats, nil
}

// generateInputs builds n todo bodies with unique titles.
func generateInputs(n int) []model.Input {
	inputs := make([]model.Input, n)
	for i := range inputs {
		inputs[i] = model.Input{Title: "smoke-" + uuid.NewString()}
	}
	return inputs
}

// saveTodosToFile writes todos as a JSON array.
func saveTodosToFile(filename string, todos []model.Todo) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal todos: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var requestsPerSecond float64
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsIssued) / stats.Duration.Seconds()
	}

	logger.Named("smoketest").Info(ctx, "final statistics",
		logger.Int("created", stats.TodosCreated),
		logger.Int("verified", stats.TodosVerified),
		logger.Int("updated", stats.TodosUpdated),
		logger.Int("deleted", stats.TodosDeleted),
		logger.Int("gone", stats.TodosGone),
		logger.Int("failed", stats.Failed),
		logger.Int("listBefore", stats.ListBefore),
		logger.Int("listAfter", stats.ListAfter),
		logger.Int64("requests", stats.RequestsIssued),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", stats.SuccessRate()),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
