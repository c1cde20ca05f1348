package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"congregationhub/internal/delivery/http/helpers"
	"congregationhub/internal/domain"
)

type RosterController struct {
	Logger  *slog.Logger
	Rosters domain.RosterService
}

func NewRosterController(logger *slog.Logger, rosters domain.RosterService) *RosterController {
	return &RosterController{
		Logger:  logger,
		Rosters: rosters,
	}
}

// GetRosterSuccessResponse is the success response envelope for GET /events/{eventID}/roster (200).
type GetRosterSuccessResponse struct {
	Data  []*domain.RosterRow `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetRoster godoc
// @Summary Get the roster for an event
// @Description Returns roster rows for the event's most recent session, newest first. Optional type query param narrows to member or guest rows; all (the default) returns both.
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param type query string false "Filter by check-in type (all, member or guest)"
// @Success 200 {object} controllers.GetRosterSuccessResponse "data is an array of roster rows"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid type)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or no session yet)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/roster [get]
func (c *RosterController) GetRoster(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	rows, err := c.Rosters.GetRoster(r.Context(), eventID, helpers.ParseTypeFilter(r))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "type must be all, member or guest")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found or has no session")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if rows == nil {
		rows = []*domain.RosterRow{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rows)
}

// ExportRosterCSV godoc
// @Summary Export the roster as CSV
// @Description Streams the unfiltered roster for the event's most recent session as a CSV attachment. A session with zero check-ins yields a header-only file.
// @Tags roster
// @Produce text/csv
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {string} string "CSV file"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or no session yet)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/roster.csv [get]
func (c *RosterController) ExportRosterCSV(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	filename, data, err := c.Rosters.ExportRosterCSV(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found or has no session")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
