package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-account/pkg/common"
	"github.com/tendant/simple-account/pkg/passwordreset"
)

// ForgotPasswordMessage is rendered for every well-formed forgot-password
// request, whether or not the email belongs to an account.
const ForgotPasswordMessage = "If an account exists for that email, a reset link has been sent"

type Handler struct {
	service *passwordreset.PasswordResetService
}

func NewHandler(service *passwordreset.PasswordResetService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/verify-reset-token", h.VerifyResetToken)
	r.Post("/reset-password", h.ResetPassword)
}

// ForgotPassword handles POST /forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	h.service.RequestReset(r.Context(), req.Email)
	common.RenderMessage(w, r, http.StatusOK, ForgotPasswordMessage)
}

// VerifyResetToken handles POST /verify-reset-token
func (h *Handler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req VerifyResetTokenRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	if err := h.service.ValidateResetToken(r.Context(), req.Token); err != nil {
		common.RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, VerifyResetTokenResponse{Valid: true})
}

// ResetPassword handles POST /reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	if err := h.service.ConsumeResetToken(r.Context(), req.Token, req.Password); err != nil {
		common.RenderError(w, r, err)
		return
	}

	common.RenderMessage(w, r, http.StatusOK, "Password has been reset successfully")
}
