package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/todos/internal/domain/model"
)

// HTTPClient wraps http.Client with timeout and the todo routes.
type HTTPClient struct {
	client   *http.Client
	baseURL  string
	requests atomic.Int64
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request with an optional JSON body and returns the status and
// the response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.requests.Add(1)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

// expectTodo sends a request that must answer 200 with a todo object.
func (c *HTTPClient) expectTodo(ctx context.Context, method, path string, body any) (model.Todo, error) {
	status, data, err := c.do(ctx, method, path, body)
	if err != nil {
		return model.Todo{}, err
	}
	if status != StatusOK {
		return model.Todo{}, fmt.Errorf("%w: %s %s returned %d: %s", ErrUnexpected, method, path, status, data)
	}
	var t model.Todo
	if err := json.Unmarshal(data, &t); err != nil {
		return model.Todo{}, fmt.Errorf("%w: %s %s: %w", ErrUnexpected, method, path, err)
	}
	return t, nil
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	status, data, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	if status != StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUnhealthy, status, data)
	}
	return nil
}

// List fetches every todo.
func (c *HTTPClient) List(ctx context.Context) ([]model.Todo, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/todos", nil)
	if err != nil {
		return nil, err
	}
	if status != StatusOK {
		return nil, fmt.Errorf("%w: GET /todos returned %d", ErrUnexpected, status)
	}
	var todos []model.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, fmt.Errorf("%w: GET /todos: %w", ErrUnexpected, err)
	}
	return todos, nil
}

// Create posts a new todo.
func (c *HTTPClient) Create(ctx context.Context, in model.Input) (model.Todo, error) {
	return c.expectTodo(ctx, http.MethodPost, "/todos", in)
}

// Get fetches one todo.
func (c *HTTPClient) Get(ctx context.Context, id int64) (model.Todo, error) {
	return c.expectTodo(ctx, http.MethodGet, todoPath(id), nil)
}

// Update replaces a todo's fields.
func (c *HTTPClient) Update(ctx context.Context, id int64, in model.Input) (model.Todo, error) {
	return c.expectTodo(ctx, http.MethodPut, todoPath(id), in)
}

// Delete removes a todo.
func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	status, data, err := c.do(ctx, http.MethodDelete, todoPath(id), nil)
	if err != nil {
		return err
	}
	if status != StatusOK {
		return fmt.Errorf("%w: DELETE %s returned %d: %s", ErrUnexpected, todoPath(id), status, data)
	}
	return nil
}

// Gone reports nil when GET on id answers 404.
func (c *HTTPClient) Gone(ctx context.Context, id int64) error {
	status, _, err := c.do(ctx, http.MethodGet, todoPath(id), nil)
	if err != nil {
		return err
	}
	if status != StatusNotFound {
		return fmt.Errorf("%w: deleted todo %d answered %d", ErrVerification, id, status)
	}
	return nil
}

func todoPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

// runPool feeds items to workers goroutines calling fn and returns how many
// calls succeeded. The first error per item is passed to onErr.
func runPool[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error, onErr func(T, error)) int {
	if workers < 1 {
		workers = 1
	}

	var (
		ok   int64
		wg   sync.WaitGroup
		mu   sync.Mutex
		feed = make(chan T, workers*WorkerChannelMultiplier)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range feed {
				if ctx.Err() != nil {
					continue
				}
				if err := fn(ctx, item); err != nil {
					mu.Lock()
					onErr(item, err)
					mu.Unlock()
					continue
				}
				atomic.AddInt64(&ok, 1)
			}
		}()
	}

	go func() {
		defer close(feed)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case feed <- item:
			}
		}
	}()

	wg.Wait()
	return int(atomic.LoadInt64(&ok))
}
