package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	repository "github.com/okian/todos/internal/adapters/repository"
	"github.com/okian/todos/internal/domain/model"
	"github.com/okian/todos/pkg/logger"
)

const detailNotFound = "Todo not found"

// TodosHandler serves the todo CRUD routes.
type TodosHandler struct {
	deps         Dependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewTodosHandler creates a todos handler. A non-positive maxBodyBytes
// falls back to 1 MiB.
func NewTodosHandler(deps Dependencies, maxBodyBytes int64, l logger.Logger) *TodosHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	if l == nil {
		l = logger.Named("api")
	}
	return &TodosHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleList handles GET /todos requests.
func (h *TodosHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	todos, err := h.deps.List(r.Context())
	if err != nil {
		h.fail(w, r, Wrap("api.list_todos", err), "Error fetching todos")
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// HandleGet handles GET /todos/{id} requests.
func (h *TodosHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_todo"
	id, err := pathID(op, r)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	todo, err := h.deps.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, Wrap(op, err), "Error fetching todo")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// HandleCreate handles POST /todos requests.
func (h *TodosHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_todo"
	in, err := h.readInput(op, w, r)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	todo, err := h.deps.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, Wrap(op, err), "Error creating todo")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// HandleUpdate handles PUT /todos/{id} requests.
func (h *TodosHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_todo"
	id, err := pathID(op, r)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	in, err := h.readInput(op, w, r)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	todo, err := h.deps.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, Wrap(op, err), "Error updating todo")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// HandleDelete handles DELETE /todos/{id} requests.
func (h *TodosHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_todo"
	id, err := pathID(op, r)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	if err := h.deps.Delete(r.Context(), id); err != nil {
		h.fail(w, r, Wrap(op, err), "Error deleting todo")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted"})
}

// readInput reads at most maxBodyBytes and decodes a todo body.
func (h *TodosHandler) readInput(op string, w http.ResponseWriter, r *http.Request) (model.Input, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.Input{}, NewKind(op, ErrBodyTooLarge)
		}
		return model.Input{}, WrapKind(op, ErrBadRequest, err)
	}
	in, err := decodeInput(body)
	if err != nil {
		return model.Input{}, WrapKind(op, ErrBadRequest, err)
	}
	return in, nil
}

// fail maps err to a response. Server errors are logged and answered with
// serverDetail so driver messages never reach the client.
func (h *TodosHandler) fail(w http.ResponseWriter, r *http.Request, err error, serverDetail string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", detailNotFound)
	case errors.Is(err, ErrBodyTooLarge):
		writeError(w, http.StatusBadRequest, "bad_request", ErrBodyTooLarge.Error())
	case errors.Is(err, ErrInvalidID):
		writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidID.Error())
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidTitle):
		writeError(w, http.StatusBadRequest, "bad_request", detail(err))
	default:
		h.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", serverDetail)
	}
}

// pathID parses the {id} path segment.
func pathID(op string, r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, WrapKind(op, ErrInvalidID, err)
	}
	return id, nil
}
