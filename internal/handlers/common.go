package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primedclinic/intake-service/internal/services"
	"github.com/primedclinic/intake-service/internal/upstream"
	"github.com/primedclinic/intake-service/internal/utils"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
	// Redirect carries the error-page path for failures the front end
	// treats as fatal to the current operation.
	Redirect string `json:"redirect,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// FieldErrorsResponse carries field-scoped validation messages; the form
// stays editable.
type FieldErrorsResponse struct {
	Errors map[string]string `json:"errors"`
}

const errorPagePath = "/page/error"

// BaseHandler provides common logging and response functionality.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	}
	c.JSON(statusCode, ErrorResponse{Message: message})
}

// RespondWithServiceError maps the service error taxonomy onto HTTP:
// field validation and registration rejections stay recoverable, anything
// upstream-fatal signals the generic error-page redirect.
func (h *BaseHandler) RespondWithServiceError(c *gin.Context, err error) {
	var fieldErr *services.FieldValidationError
	var rejected *services.RegistrationRejectedError

	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusUnprocessableEntity, FieldErrorsResponse{Errors: fieldErr.Fields})
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: rejected.Message,
			Code:    "registration_rejected",
		})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Session not found"})
	case errors.Is(err, services.ErrAlreadyFinished):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Questionnaire already finished"})
	case errors.Is(err, services.ErrNotRegistered):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Complete your details first"})
	case errors.Is(err, services.ErrSubmitNotAtEnd):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Submit is only available on the last question"})
	case errors.Is(err, services.ErrOperationInFlight):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Please wait for the previous request to finish"})
	case errors.Is(err, upstream.ErrUpstream):
		h.LogError(c, err, "Upstream request failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message:  "Server error. Please try again.",
			Code:     "error_redirect",
			Redirect: errorPagePath,
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message:  "Server error. Please try again.",
			Code:     "error_redirect",
			Redirect: errorPagePath,
		})
	}
}
