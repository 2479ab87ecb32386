package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/verdicttrace/verdicttrace/pkg/domain/interfaces"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
	"github.com/verdicttrace/verdicttrace/pkg/utils/apperr"
)

const defaultListLimit = 100

// caseActionRequest is the JSON body of a human case action
type caseActionRequest struct {
	ActorID   string `json:"actorId"`
	ActorName string `json:"actorName"`
	Reason    string `json:"reason"`
}

// caseActionFunc matches the ActionUseCase operation signatures
type caseActionFunc func(ctx context.Context, caseID types.CaseID, actorID types.ActorID, actorName, reason string) (*model.Case, error)

// handleCaseAction applies one human action to the case in the URL and
// returns the mutated case
func handleCaseAction(action caseActionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caseID := types.CaseID(chi.URLParam(r, "caseID"))
		if caseID == "" {
			http.Error(w, "case ID is required", http.StatusBadRequest)
			return
		}

		var req caseActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.ActorID == "" {
			http.Error(w, "actorId is required", http.StatusBadRequest)
			return
		}

		c, err := action(ctx, caseID, types.ActorID(req.ActorID), req.ActorName, req.Reason)
		if err != nil {
			writeCaseError(w, r, err)
			return
		}

		writeJSON(w, r, c)
	}
}

// handleGetCase returns one case by ID
func handleGetCase(repo interfaces.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caseID := types.CaseID(chi.URLParam(r, "caseID"))
		if caseID == "" {
			http.Error(w, "case ID is required", http.StatusBadRequest)
			return
		}

		c, err := repo.GetCase(r.Context(), caseID)
		if err != nil {
			writeCaseError(w, r, err)
			return
		}

		writeJSON(w, r, c)
	}
}

// handleListCases lists cases newest first, with optional ?status=a,b and
// ?limit=n filters
func handleListCases(repo interfaces.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := parseStatusFilter(r.URL.Query().Get("status"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
		}

		cases, err := repo.ListCases(r.Context(), statuses, limit)
		if err != nil {
			writeCaseError(w, r, err)
			return
		}

		writeJSON(w, r, map[string]any{"cases": cases})
	}
}

// handleListNotifications lists in-app notifications newest first
func handleListNotifications(repo interfaces.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notifications, err := repo.ListNotifications(r.Context(), defaultListLimit)
		if err != nil {
			writeCaseError(w, r, err)
			return
		}

		writeJSON(w, r, map[string]any{"notifications": notifications})
	}
}

// handleGetSettings returns the mutable scan settings
func handleGetSettings(repo interfaces.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := repo.GetScanSettings(r.Context())
		if err != nil {
			writeCaseError(w, r, err)
			return
		}

		writeJSON(w, r, settings)
	}
}

// handlePutSettings replaces the mutable scan settings, effective from the
// next scan
func handlePutSettings(repo interfaces.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings model.ScanSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := settings.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := repo.PutScanSettings(r.Context(), settings); err != nil {
			writeCaseError(w, r, err)
			return
		}

		writeJSON(w, r, settings)
	}
}

// parseStatusFilter parses a comma-separated status list
func parseStatusFilter(raw string) ([]types.CaseStatus, error) {
	if raw == "" {
		return nil, nil
	}

	var statuses []types.CaseStatus
	for _, part := range strings.Split(raw, ",") {
		s := types.CaseStatus(strings.TrimSpace(part))
		if !s.IsValid() {
			return nil, errors.New("invalid status: " + s.String())
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// writeCaseError maps domain errors to HTTP status codes
func writeCaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrCaseNotFound):
		http.Error(w, "case not found", http.StatusNotFound)
	case errors.Is(err, model.ErrCaseTerminal):
		http.Error(w, "case is in a terminal state", http.StatusConflict)
	default:
		apperr.Handle(r.Context(), err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apperr.Handle(r.Context(), err)
	}
}
