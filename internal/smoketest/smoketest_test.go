package smoketest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/todos/internal/adapters/http/api"
	repository "github.com/okian/todos/internal/adapters/repository"
	service "github.com/okian/todos/internal/app"
	"github.com/okian/todos/internal/domain/model"
	"github.com/okian/todos/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

// newTodoServer runs the real API over a memory store.
func newTodoServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(service.WithStore(repository.NewMemoryStore()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running todo service", t, func() {
		srv := newTodoServer(t)
		out := filepath.Join(t.TempDir(), "out", "todos.json")
		cfg := &Config{
			BaseURL:    srv.URL,
			NumTodos:   25,
			Workers:    4,
			Timeout:    5 * time.Second,
			OutputFile: out,
		}

		Convey("When running the smoke test", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every phase should succeed", func() {
				So(err, ShouldBeNil)
				So(stats.TodosCreated, ShouldEqual, 25)
				So(stats.TodosVerified, ShouldEqual, 25)
				So(stats.TodosUpdated, ShouldEqual, 25)
				So(stats.TodosDeleted, ShouldEqual, 25)
				So(stats.TodosGone, ShouldEqual, 25)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.ListAfter, ShouldEqual, stats.ListBefore+25)
				So(stats.SuccessRate(), ShouldEqual, 100.0)
				So(stats.RequestsIssued, ShouldBeGreaterThan, 25*5)
			})

			Convey("And the created todos should be saved", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var todos []model.Todo
				So(json.Unmarshal(data, &todos), ShouldBeNil)
				So(todos, ShouldHaveLength, 25)
			})

			Convey("And the service should be empty again", func() {
				todos, err := newHTTPClient(srv.URL, time.Second).List(context.Background())
				So(err, ShouldBeNil)
				So(todos, ShouldBeEmpty)
			})
		})
	})

	Convey("Given an unhealthy service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("Then Run should stop at the health check", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, NumTodos: 1, Workers: 1, Timeout: time.Second})
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})

	Convey("Given a service that never deletes", t, func() {
		inner := newTodoServer(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodDelete {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"message":"Deleted"}`))
				return
			}
			proxy(inner.URL, w, r)
		}))
		defer srv.Close()

		Convey("Then Run should report the todos that are still there", func() {
			stats, err := Run(context.Background(), &Config{BaseURL: srv.URL, NumTodos: 3, Workers: 2, Timeout: time.Second})
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
			So(stats.TodosDeleted, ShouldEqual, 3)
			So(stats.TodosGone, ShouldEqual, 0)
			So(stats.Failed, ShouldEqual, 3)
		})
	})
}

// proxy forwards r to base and copies the response back.
func proxy(base string, w http.ResponseWriter, r *http.Request) {
	req, err := http.NewRequestWithContext(r.Context(), r.Method, base+r.URL.Path, r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	req.Header = r.Header.Clone()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func TestVerification(t *testing.T) {
	Convey("Given verification helpers", t, func() {
		todo := model.Todo{ID: 7, Title: "Buy milk"}

		Convey("Then a matching create passes and mismatches fail", func() {
			So(verifyCreated(model.Input{Title: "Buy milk"}, todo), ShouldBeNil)
			So(errors.Is(verifyCreated(model.Input{Title: "Buy eggs"}, todo), ErrVerification), ShouldBeTrue)
			So(errors.Is(verifyCreated(model.Input{Title: "Buy milk"}, model.Todo{Title: "Buy milk"}), ErrVerification), ShouldBeTrue)
		})

		Convey("Then round trips compare every field", func() {
			So(verifyRoundTrip(todo, todo), ShouldBeNil)
			So(verifyRoundTrip(todo, model.Todo{ID: 7, Title: "Buy milk", Completed: true}), ShouldNotBeNil)
		})

		Convey("Then updates must keep id and title and set completed", func() {
			So(verifyUpdated(todo, model.Todo{ID: 7, Title: "Buy milk", Completed: true}), ShouldBeNil)
			So(verifyUpdated(todo, todo), ShouldNotBeNil)
			So(verifyUpdated(todo, model.Todo{ID: 8, Title: "Buy milk", Completed: true}), ShouldNotBeNil)
		})

		Convey("Then list growth requires every created id", func() {
			created := []model.Todo{{ID: 1}, {ID: 2}}
			So(verifyListGrowth(0, []model.Todo{{ID: 1}, {ID: 2}, {ID: 3}}, created), ShouldBeNil)
			So(verifyListGrowth(2, []model.Todo{{ID: 1}, {ID: 2}}, created), ShouldNotBeNil)
			So(verifyListGrowth(0, []model.Todo{{ID: 1}, {ID: 3}}, created), ShouldNotBeNil)
		})
	})
}

func TestRunPool(t *testing.T) {
	Convey("Given a worker pool", t, func() {
		items := make([]int, 100)
		for i := range items {
			items[i] = i
		}

		Convey("When some items fail", func() {
			var calls atomic.Int64
			var failed []int
			ok := runPool(context.Background(), 8, items, func(_ context.Context, n int) error {
				calls.Add(1)
				if n%10 == 0 {
					return errors.New("boom")
				}
				return nil
			}, func(n int, _ error) {
				failed = append(failed, n)
			})

			Convey("Then successes and failures are counted separately", func() {
				So(calls.Load(), ShouldEqual, int64(100))
				So(ok, ShouldEqual, 90)
				So(failed, ShouldHaveLength, 10)
			})
		})

		Convey("When the context is already canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			ok := runPool(ctx, 0, items, func(context.Context, int) error { return nil }, func(int, error) {})

			Convey("Then nothing runs", func() {
				So(ok, ShouldEqual, 0)
			})
		})
	})
}
