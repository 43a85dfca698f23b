// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alchemorsel/recipefinder/internal/application/presenter"
	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/security"
	"github.com/alchemorsel/recipefinder/internal/ports/inbound"
	apperrors "github.com/alchemorsel/recipefinder/pkg/errors"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Response messages
const (
	MessageNoQuery       = "No query provided"
	MessageNotUnderstood = "Could not understand request."
	MessageNoMatches     = "No recipes found."
)

// GetRecipeRequest is the body of POST /get_recipe
type GetRecipeRequest struct {
	Query string `json:"query" validate:"query_text,max=1000,no_script"`
}

// RecipesResponse is returned when recipes were found
type RecipesResponse struct {
	Success bool                      `json:"success"`
	Recipes []presenter.RecipePayload `json:"recipes"`
}

// MessageResponse is returned for business outcomes without recipes
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RecipeHandlers handles the recipe discovery endpoint
type RecipeHandlers struct {
	finder     inbound.RecipeFinder
	validation *security.ValidationService
	logger     *zap.Logger
}

// NewRecipeHandlers creates a new recipe handlers instance
func NewRecipeHandlers(
	finder inbound.RecipeFinder,
	validation *security.ValidationService,
	logger *zap.Logger,
) *RecipeHandlers {
	return &RecipeHandlers{
		finder:     finder,
		validation: validation,
		logger:     logger.Named("api"),
	}
}

// GetRecipe handles POST /get_recipe. With ?format=text found recipes are
// rendered as plain text.
func (h *RecipeHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	var req GetRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, r, apperrors.NewBadRequestError("Request body too large"))
			return
		}
		if !errors.Is(err, io.EOF) {
			h.logger.Debug("Malformed request body", zap.Error(err))
		}
		h.writeJSON(w, http.StatusBadRequest, apperrors.ErrorBody{Error: MessageNoQuery})
		return
	}

	req.Query = h.validation.SanitizeQuery(req.Query)
	if err := h.validation.ValidateStruct(req); err != nil {
		if security.HasTag(err, "Query", "query_text") {
			h.writeJSON(w, http.StatusBadRequest, apperrors.ErrorBody{Error: MessageNoQuery})
			return
		}
		h.writeError(w, r, err)
		return
	}

	result, err := h.finder.Handle(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.NewTimeoutError("recipe request").WithCause(err)
		}
		h.writeError(w, r, err)
		return
	}

	switch result.Outcome {
	case recipe.OutcomeUnderstood:
		if r.URL.Query().Get("format") == "text" {
			h.writeText(w, presenter.ToText(result.Recipes))
			return
		}
		h.writeJSON(w, http.StatusOK, RecipesResponse{
			Success: true,
			Recipes: presenter.ToJSON(result.Recipes),
		})
	case recipe.OutcomeNotUnderstood:
		h.writeJSON(w, http.StatusOK, MessageResponse{Success: false, Message: MessageNotUnderstood})
	case recipe.OutcomeNoMatches:
		h.writeJSON(w, http.StatusOK, MessageResponse{Success: false, Message: MessageNoMatches})
	case recipe.OutcomeProviderError:
		h.writeError(w, r, apperrors.NewProviderUnavailableError(result.Reason))
	default:
		h.writeError(w, r, apperrors.NewInternalError("Unknown pipeline outcome"))
	}
}

// writeError logs err and writes its public message with the mapped status
func (h *RecipeHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.Wrap(err, "Internal server error")
	status := appErr.StatusCode()

	fields := []zap.Field{
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		zap.String("code", string(appErr.Code)),
		zap.Int("status_code", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Info("Request rejected", fields...)
	}

	h.writeJSON(w, status, apperrors.ToErrorBody(appErr))
}

// writeJSON writes a JSON response
func (h *RecipeHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (h *RecipeHandlers) writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		h.logger.Error("Failed to write text response", zap.Error(err))
	}
}
