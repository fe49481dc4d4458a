package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// DecodeJSON reads a JSON body into dst and runs its `validate` tags.
// Failures come back as INVALID_INPUT or VALIDATION_FAILED errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return idmerrors.Wrap(err, idmerrors.ErrCodeInvalidInput, "invalid request body")
	}
	return Validate(dst)
}

// Validate runs validator tags on v.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return idmerrors.InternalWrap(err, "validation error")
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[jsonFieldName(fe)] = fe.Tag()
	}
	return idmerrors.ValidationFailed(details)
}

func jsonFieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}
