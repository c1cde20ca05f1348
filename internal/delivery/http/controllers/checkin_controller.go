package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"congregationhub/internal/delivery/http/helpers"
	"congregationhub/internal/delivery/http/middleware"
	"congregationhub/internal/domain"
)

type CheckInController struct {
	Logger   *slog.Logger
	CheckIns domain.CheckInService
	Sessions domain.SessionService
}

func NewCheckInController(logger *slog.Logger, checkIns domain.CheckInService, sessions domain.SessionService) *CheckInController {
	return &CheckInController{
		Logger:   logger,
		CheckIns: checkIns,
		Sessions: sessions,
	}
}

// ActiveSessionResponse is the data payload for GET /checkin/active (200).
// Both fields are null when no session is active.
type ActiveSessionResponse struct {
	Event   *domain.Event        `json:"event"`
	Session *domain.EventSession `json:"session"`
}

// ActiveSessionSuccessResponse is the success response envelope for GET /checkin/active (200).
type ActiveSessionSuccessResponse struct {
	Data  ActiveSessionResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// GetActiveSession godoc
// @Summary Get the currently active session
// @Description Returns the live event and its session, or null fields when nothing is live. Public so the check-in page can render before login.
// @Tags checkin
// @Produce json
// @Success 200 {object} controllers.ActiveSessionSuccessResponse "data contains event and session, or nulls"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin/active [get]
func (c *CheckInController) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	event, session, err := c.Sessions.GetActiveSession(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSession) {
			helpers.WriteJSONSuccess(w, http.StatusOK, ActiveSessionResponse{})
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ActiveSessionResponse{Event: event, Session: session})
}

// MemberCheckInRequest is the request body for POST /checkin.
type MemberCheckInRequest struct {
	Code string `json:"code"`
}

// Validate implements Validator.
func (m MemberCheckInRequest) Validate() []string {
	if strings.TrimSpace(m.Code) == "" {
		return []string{"code is required"}
	}
	return nil
}

// CheckInSuccessResponse is the success response envelope for POST /checkin and POST /checkin/guest (201).
type CheckInSuccessResponse struct {
	Data  *domain.CheckInRecord `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// CheckInMember godoc
// @Summary Check in as a member
// @Description Records attendance for the authenticated user's member profile against the session matching the code. A member can check in at most once per session; repeats return 409.
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MemberCheckInRequest true "Active session code"
// @Success 201 {object} controllers.CheckInSuccessResponse "data contains the check-in and its event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no active session with that code, or no member profile)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already checked in)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin [post]
func (c *CheckInController) CheckInMember(w http.ResponseWriter, r *http.Request) {
	var req MemberCheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	record, err := c.CheckIns.CheckInMember(r.Context(), strings.TrimSpace(req.Code), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no active session with that code")
			return
		}
		if errors.Is(err, domain.ErrAlreadyCheckedIn) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "already checked in to this session")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, record)
}

// GuestCheckInRequest is the request body for POST /checkin/guest. Code is
// optional; when omitted the single currently active session is used.
// ContactOK defaults to true when omitted.
type GuestCheckInRequest struct {
	Code          string `json:"code"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	FirstTime     bool   `json:"first_time"`
	ContactOK     *bool  `json:"contact_ok"`
	PrayerRequest string `json:"prayer_request"`
}

// Validate implements Validator. Presence of full_name and phone is checked
// by the service after session resolution, so a dead code reports 404 rather
// than 400; only structural problems are rejected here.
func (g GuestCheckInRequest) Validate() []string {
	var errs []string
	if g.Email != "" && !emailRegex.MatchString(strings.TrimSpace(g.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	if g.Adults < 0 {
		errs = append(errs, "adults must be non-negative")
	}
	if g.Children < 0 {
		errs = append(errs, "children must be non-negative")
	}
	return errs
}

// CheckInGuest godoc
// @Summary Check in as a guest
// @Description Records a guest check-in. No account needed. Repeated guest check-ins to the same session are allowed. First-time guests who consent to contact and leave an email receive a follow-up message.
// @Tags checkin
// @Accept json
// @Produce json
// @Param body body GuestCheckInRequest true "Guest details; code optional when one session is active"
// @Success 201 {object} controllers.CheckInSuccessResponse "data contains the check-in and its event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no active session)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin/guest [post]
func (c *CheckInController) CheckInGuest(w http.ResponseWriter, r *http.Request) {
	var req GuestCheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	contactOK := true
	if req.ContactOK != nil {
		contactOK = *req.ContactOK
	}
	guest := domain.GuestDetails{
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         strings.TrimSpace(req.Email),
		Adults:        req.Adults,
		Children:      req.Children,
		FirstTime:     req.FirstTime,
		ContactOK:     contactOK,
		PrayerRequest: req.PrayerRequest,
	}
	record, err := c.CheckIns.CheckInGuest(r.Context(), strings.TrimSpace(req.Code), guest)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSession) || errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no active session")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, record)
}
