package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-account/pkg/client"
	"github.com/tendant/simple-account/pkg/common"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
	"github.com/tendant/simple-account/pkg/profile"
)

type UpdateUsernameRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewUsername     string `json:"new_username" validate:"required,min=3,max=50"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type Handle struct {
	profileService *profile.ProfileService
}

func NewHandle(profileService *profile.ProfileService) *Handle {
	return &Handle{profileService: profileService}
}

// Routes mounts the profile endpoints. The router must already run
// client.AuthUserMiddleware.
func (h *Handle) Routes(r chi.Router) {
	r.Get("/me", h.GetMe)
	r.Put("/me/username", h.UpdateUsername)
	r.Put("/me/password", h.ChangePassword)
}

// GetMe handles GET /me
func (h *Handle) GetMe(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.GetAuthUser(r)
	if !ok {
		common.RenderError(w, r, idmerrors.New(idmerrors.ErrCodeUnauthorized, "authentication required"))
		return
	}

	p, err := h.profileService.GetMe(r.Context(), authUser.AccountID)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, p)
}

// UpdateUsername handles PUT /me/username
func (h *Handle) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.GetAuthUser(r)
	if !ok {
		common.RenderError(w, r, idmerrors.New(idmerrors.ErrCodeUnauthorized, "authentication required"))
		return
	}

	var req UpdateUsernameRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	p, err := h.profileService.UpdateUsername(r.Context(), profile.UpdateUsernameParams{
		AccountID:       authUser.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewUsername:     req.NewUsername,
	})
	if err != nil {
		common.RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, p)
}

// ChangePassword handles PUT /me/password
func (h *Handle) ChangePassword(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.GetAuthUser(r)
	if !ok {
		common.RenderError(w, r, idmerrors.New(idmerrors.ErrCodeUnauthorized, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	err := h.profileService.UpdatePassword(r.Context(), profile.UpdatePasswordParams{
		AccountID:       authUser.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		common.RenderError(w, r, err)
		return
	}

	common.RenderMessage(w, r, http.StatusOK, "Password updated successfully")
}
