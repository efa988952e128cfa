package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"taskboard/internal/domain"
	"taskboard/internal/ports"
	"taskboard/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

type taskHandler struct {
	store *usecase.TaskStore
	feed  ports.StreamSource
}

// GET /tasks
func (h *taskHandler) list(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GET /tasks/{id}
func (h *taskHandler) get(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// POST /tasks
func (h *taskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTaskReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}

	in, err := req.toNewTask()
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	task, err := h.store.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// PUT /tasks/{id}
func (h *taskHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateTaskReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	task, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err, "Failed to update task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DELETE /tasks/{id}
func (h *taskHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to delete task")
		return
	}
	if !deleted {
		writeError(w, r, &domain.NotFoundError{ID: id}, "")
		return
	}
	writeMessage(w, http.StatusOK, "Task deleted successfully")
}

// GET /tasks/{id}/streaming
func (h *taskHandler) getWithStreaming(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.FindByID(r.Context(), id); err != nil {
		writeError(w, r, err, "")
		return
	}

	items, err := h.feed.Fetch(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch streaming data")
		return
	}

	task, err := h.store.AttachStreaming(r.Context(), id, items)
	if err != nil {
		writeError(w, r, err, "Failed to fetch streaming data")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GET /streaming
func (h *taskHandler) streaming(w http.ResponseWriter, r *http.Request) {
	items, err := h.feed.Fetch(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch streaming data")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return &domain.ValidationError{Field: "body", Message: "invalid JSON payload"}
	}
	return nil
}

// writeError maps the domain error taxonomy onto status codes. fallback is
// the message used for unexpected errors.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		verr *domain.ValidationError
		nerr *domain.NotFoundError
	)

	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &nerr):
		writeMessage(w, http.StatusNotFound, nerr.Error())
	case errors.Is(err, domain.ErrUpstream):
		hlog.FromRequest(r).Warn().Err(err).Msg("upstream failure")
		writeMessage(w, http.StatusInternalServerError, fallback)
	default:
		if fallback == "" {
			fallback = "An unexpected error occurred"
		}
		hlog.FromRequest(r).Error().Err(err).Msg(fallback)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResp{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
