package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"reelmux/internal/services"
)

// Public validation messages returned to API clients verbatim.
var (
	ErrMissingURLs = errors.New("videoUrl and audioUrl are required")
	ErrInvalidURLs = errors.New("Invalid URLs") //nolint:staticcheck // wire message
)

// Request describes one merge job.
type Request struct {
	VideoURL string `json:"videoUrl" validate:"required,http_url"`
	AudioURL string `json:"audioUrl" validate:"required,http_url"`
	Title    string `json:"title,omitempty"`
}

var validate = validator.New()

// Validate checks that both URLs are present and are absolute http(s) URLs.
// It performs no I/O.
func (r Request) Validate() error {
	if strings.TrimSpace(r.VideoURL) == "" || strings.TrimSpace(r.AudioURL) == "" {
		return validationError(ErrMissingURLs)
	}
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return validationError(ErrMissingURLs)
			}
		}
		return validationError(ErrInvalidURLs)
	}
	return services.Wrap(services.ErrValidation, "merge", "validate", "", err)
}

func validationError(public error) error {
	return fmt.Errorf("%w: %w", services.ErrValidation, public)
}

// PublicMessage returns the client-facing text for a validation failure, or
// "" when err is not one.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingURLs):
		return ErrMissingURLs.Error()
	case errors.Is(err, ErrInvalidURLs):
		return ErrInvalidURLs.Error()
	default:
		return ""
	}
}
