// Package handler provides HTTP handlers for all API endpoints. Every data
// endpoint goes through the action dispatcher, so the HTTP path returns
// exactly what an in-process caller would get.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pable/footstats/internal/actions"
	"github.com/pable/footstats/internal/api/respond"
	"github.com/pable/footstats/internal/chat"
	"github.com/pable/footstats/internal/model"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

// Performer runs named actions. *actions.Dispatcher implements it.
type Performer interface {
	Describe() []actions.Spec
	Perform(name string, params map[string]any) any
}

// Dataset is the reloadable data context. *dataset.Source implements it.
type Dataset interface {
	Table() *model.Table
	Path() string
	LoadedAt() time.Time
	Reload() error
}

// Asker answers free-text questions. *chat.Assistant implements it.
type Asker interface {
	Ask(ctx context.Context, question string) (chat.Answer, error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	actions Performer
	data    Dataset
	asker   Asker
	logger  *slog.Logger
}

// New creates a Handler. asker may be nil, which disables /api/v1/ask.
func New(p Performer, d Dataset, asker Asker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{actions: p, data: d, asker: asker, logger: logger}
}

// HealthCheck returns basic health status and dataset facts.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"dataset": map[string]any{
			"path":      h.data.Path(),
			"rows":      h.data.Table().Len(),
			"loaded_at": h.data.LoadedAt().UTC().Format(time.RFC3339),
		},
	})
}

// ListActions returns the action vocabulary.
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.actions.Describe())
}

// PerformAction runs the action named in the path with the JSON body as
// parameters. Action failures are results, not HTTP errors.
func (h *Handler) PerformAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	params, err := decodeParams(r)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "BAD_REQUEST", "Request body must be a JSON object", err.Error())
		return
	}
	result := h.actions.Perform(name, params)
	if f, ok := actions.AsFailure(result); ok {
		h.logger.Debug("action failed", "action", name, "reason", f.Reason)
	}
	respond.WriteJSONObject(w, http.StatusOK, result)
}

// ListTeams returns the sorted team names.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.actions.Perform("list_teams", nil))
}

// ListPlayers returns the sorted player names of a team.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	team := chi.URLParam(r, "team")
	respond.WriteJSONObject(w, http.StatusOK, h.actions.Perform("list_players", map[string]any{"team": team}))
}

// Reload re-reads the dataset. A failed reload keeps the previous table.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.data.Reload(); err != nil {
		h.logger.Error("dataset reload failed", "path", h.data.Path(), "error", err)
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "RELOAD_FAILED", "Dataset reload failed", err.Error())
		return
	}
	h.logger.Info("dataset reloaded", "path", h.data.Path(), "rows", h.data.Table().Len())
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "reloaded",
		"rows":      h.data.Table().Len(),
		"loaded_at": h.data.LoadedAt().UTC().Format(time.RFC3339),
	})
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask answers a free-text question through the chat assistant.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.asker == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "CHAT_DISABLED", "No language model is configured")
		return
	}
	var req askRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "BAD_REQUEST", "Request body must be a JSON object", err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "question is required")
		return
	}
	ans, err := h.asker.Ask(r.Context(), req.Question)
	if err != nil {
		h.logger.Error("ask failed", "error", err)
		respond.WriteErrorDetail(w, http.StatusBadGateway, "CHAT_FAILED", "Could not answer the question", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, ans)
}

// decodeParams reads an optional JSON object body.
func decodeParams(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, err
	}
	params := map[string]any{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(body, &params); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, errors.New("body is null")
	}
	return params, nil
}
