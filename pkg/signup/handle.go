package signup

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/common"
)

// RegisterRequest is the body of POST /signup.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse describes the new account. The password hash and
// tokens are never included.
type RegisterResponse struct {
	ID                    uuid.UUID `json:"id"`
	Username              string    `json:"username"`
	Email                 string    `json:"email"`
	IsVerified            bool      `json:"is_verified"`
	CreatedAt             time.Time `json:"created_at"`
	VerificationEmailSent bool      `json:"verification_email_sent"`
}

type Handle struct {
	service *SignupService
}

func NewHandle(service *SignupService) *Handle {
	return &Handle{service: service}
}

// RegisterUser handles POST /signup
func (h *Handle) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	result, err := h.service.RegisterUser(r.Context(), RegisterUserRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		common.RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, RegisterResponse{
		ID:                    result.Account.ID,
		Username:              result.Account.Username,
		Email:                 result.Account.Email,
		IsVerified:            result.Account.IsVerified,
		CreatedAt:             result.Account.CreatedAt,
		VerificationEmailSent: result.VerificationEmailSent,
	})
}
