package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// errorBody is the JSON shape of every failure.
type errorBody struct {
	Error          string            `json:"error"`
	Message        string            `json:"message,omitempty"`
	ExcessHours    *float64          `json:"excessHours,omitempty"`
	RemainingHours *float64          `json:"remainingHours,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeBudgetExceeded, domain.CodeExceedsRemainingBudget, domain.CodeApprovalConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) fail(c *gin.Context, err error) {
	var ae *domain.AllocationError
	if errors.As(err, &ae) {
		body := errorBody{Error: string(ae.Code), Message: ae.Message}
		switch ae.Code {
		case domain.CodeBudgetExceeded:
			body.ExcessHours = hoursRef(ae.ExcessHours)
		case domain.CodeExceedsRemainingBudget:
			body.RemainingHours = hoursRef(ae.RemainingHours)
		}
		c.JSON(statusFor(ae.Code), body)
		return
	}

	h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorBody{Error: "InternalError", Message: "internal error"})
}

// failBinding renders a request that could not be decoded or validated.
func (h *handler) failBinding(c *gin.Context, err error) {
	body := errorBody{Error: string(domain.CodeValidation)}

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		body.Message = "invalid request"
		body.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			body.Fields[fe.Field()] = describe(fe)
		}
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		body.Message = "malformed JSON body"
	case errors.As(err, &typeErr):
		body.Message = fmt.Sprintf("field %s has the wrong type", typeErr.Field)
	default:
		body.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "hours":
		return "must be a non-negative number of hours"
	case "date":
		return "must be a date formatted YYYY-MM-DD"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "dive":
		return "has an invalid entry"
	default:
		return "failed " + fe.Tag()
	}
}
