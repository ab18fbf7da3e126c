// Package common holds the response helpers shared by the HTTP routes.
package common

import (
	"errors"

	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// KindDetail is attached to problems caused by a classified domain error.
type KindDetail struct {
	Kind domain.Kind `json:"kind"`
	Max  string      `json:"max,omitempty"`
}

// SuccessResponseJSON writes a Response envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes err as a problem document. The status is taken
// from the optional argument, or derived from err.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, status ...int) error {
	code := ErrorToStatusCode(err)
	if len(status) > 0 {
		code = status[0]
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   code,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
		var derr *domain.Error
		if errors.As(err, &derr) {
			kd := KindDetail{Kind: derr.Kind}
			if derr.Max != nil {
				kd.Max = derr.Max.String()
			}
			pd.Errors = kd
		}
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(code).JSON(pd)
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch domain.KindOf(err) {
	case domain.KindMalformedNumber, domain.KindNonPositiveAmount, domain.KindInsufficientBalance:
		return fiber.StatusUnprocessableEntity
	case domain.KindAmountRequired:
		return fiber.StatusBadRequest
	case domain.KindSameAsset, domain.KindAlreadySubmitting, domain.KindNotReady:
		return fiber.StatusConflict
	case domain.KindAssetNotFound:
		return fiber.StatusNotFound
	case domain.KindFetch, domain.KindSubmitFailure:
		return fiber.StatusBadGateway
	case domain.KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it. Failures are
// returned as a 400 *fiber.Error for the app's error handler to render.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := validate.Struct(input); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "validation failed: "+err.Error())
	}
	return &input, nil
}
