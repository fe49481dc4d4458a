package common

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageResponse is the body of plain confirmations.
type MessageResponse struct {
	Message string `json:"message"`
}

// RenderError writes err with the status mapped from its code. Causes are
// logged, never rendered.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	code := idmerrors.GetCode(err)
	status := idmerrors.MapErrorCodeToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "code", code, "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:   idmerrors.GetMessage(err),
		Code:    string(code),
		Details: idmerrors.GetDetails(err),
	})
}

// RenderMessage writes a MessageResponse with status.
func RenderMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, MessageResponse{Message: message})
}
