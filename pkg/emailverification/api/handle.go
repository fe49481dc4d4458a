package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-account/pkg/client"
	"github.com/tendant/simple-account/pkg/common"
	"github.com/tendant/simple-account/pkg/emailverification"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
)

// Handler serves the email verification endpoints
type Handler struct {
	service *emailverification.EmailVerificationService
}

// NewHandler creates a new email verification API handler
func NewHandler(service *emailverification.EmailVerificationService) *Handler {
	return &Handler{
		service: service,
	}
}

// RoutesPublic mounts the endpoints that need no session.
func (h *Handler) RoutesPublic(r chi.Router) {
	r.Post("/verifyemail", h.VerifyEmail)
}

// RoutesAuthenticated mounts the endpoints that act on the session's account.
// The router must already run client.AuthUserMiddleware.
func (h *Handler) RoutesAuthenticated(r chi.Router) {
	r.Post("/send-verification", h.SendVerification)
	r.Get("/verification-status", h.GetVerificationStatus)
}

// VerifyEmail handles POST /verifyemail
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	if err := h.service.ConsumeVerificationToken(r.Context(), req.Token); err != nil {
		common.RenderError(w, r, err)
		return
	}

	common.RenderMessage(w, r, http.StatusOK, "Email verified successfully")
}

// SendVerification handles POST /send-verification
func (h *Handler) SendVerification(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.GetAuthUser(r)
	if !ok {
		common.RenderError(w, r, idmerrors.New(idmerrors.ErrCodeUnauthorized, "authentication required"))
		return
	}

	if _, err := h.service.IssueVerificationToken(r.Context(), authUser.AccountID); err != nil {
		common.RenderError(w, r, err)
		return
	}

	common.RenderMessage(w, r, http.StatusOK, "Verification email sent")
}

// GetVerificationStatus handles GET /verification-status
func (h *Handler) GetVerificationStatus(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.GetAuthUser(r)
	if !ok {
		common.RenderError(w, r, idmerrors.New(idmerrors.ErrCodeUnauthorized, "authentication required"))
		return
	}

	verified, err := h.service.GetVerificationStatus(r.Context(), authUser.AccountID)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, VerificationStatusResponse{EmailVerified: verified})
}
