package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	paymentdomain "github.com/haulbiz/dispatch/internal/payment/domain"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	pricingdomain "github.com/haulbiz/dispatch/internal/pricing/domain"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, orgcontext.ErrTenantContextMissing):
		return http.StatusUnauthorized, errorPayload{
			Type:    "tenant_context_missing",
			Message: "tenant context missing",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, jobdomain.ErrIllegalTransition):
		return http.StatusConflict, errorPayload{
			Type:    "illegal_transition",
			Message: "status change not permitted from the job's current state",
		}
	case errors.Is(err, paymentdomain.ErrOverAllocation):
		return http.StatusConflict, errorPayload{
			Type:    "over_allocation",
			Message: "allocation would exceed the statement total",
		}
	case errors.Is(err, statementdomain.ErrConcurrencyConflict):
		return http.StatusConflict, errorPayload{
			Type:    "concurrency_conflict",
			Message: "a concurrent operation won; retry",
		}
	case errors.Is(err, statementdomain.ErrNotDraft):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "statement is not in draft",
		}
	case errors.Is(err, pricelistdomain.ErrNoApplicablePrice):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "no_applicable_price",
			Message: "no price list entry resolves for the request",
		}
	case errors.Is(err, statementdomain.ErrNoEligibleJobs):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "no_eligible_jobs",
			Message: "no billable jobs in the period",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, jobdomain.ErrInvalidCustomer),
		errors.Is(err, jobdomain.ErrInvalidSite),
		errors.Is(err, jobdomain.ErrInvalidMaterial),
		errors.Is(err, jobdomain.ErrInvalidDriver),
		errors.Is(err, jobdomain.ErrInvalidTruck),
		errors.Is(err, jobdomain.ErrInvalidTrailer),
		errors.Is(err, jobdomain.ErrInvalidQuantity),
		errors.Is(err, jobdomain.ErrInvalidUnit),
		errors.Is(err, jobdomain.ErrInvalidStatus),
		errors.Is(err, jobdomain.ErrInvalidSchedule),
		errors.Is(err, jobdomain.ErrInvalidID),
		errors.Is(err, jobdomain.ErrActualQtyNotAllowed),
		errors.Is(err, jobdomain.ErrOverrideNeedsReason),
		errors.Is(err, pricelistdomain.ErrInvalidMaterial),
		errors.Is(err, pricelistdomain.ErrInvalidCustomer),
		errors.Is(err, pricelistdomain.ErrInvalidSite),
		errors.Is(err, pricelistdomain.ErrInvalidUnit),
		errors.Is(err, pricelistdomain.ErrInvalidBasePrice),
		errors.Is(err, pricelistdomain.ErrInvalidWindow),
		errors.Is(err, pricelistdomain.ErrInvalidID),
		errors.Is(err, pricingdomain.ErrInvalidQuantity),
		errors.Is(err, pricingdomain.ErrInvalidWaitHours),
		errors.Is(err, statementdomain.ErrInvalidCustomer),
		errors.Is(err, statementdomain.ErrInvalidPeriod),
		errors.Is(err, statementdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrInvalidCustomer),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidMethod),
		errors.Is(err, paymentdomain.ErrInvalidPaidAt),
		errors.Is(err, paymentdomain.ErrInvalidStatement),
		errors.Is(err, paymentdomain.ErrEmptyAllocation),
		errors.Is(err, referencedomain.ErrInvalidUnit):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, jobdomain.ErrNotFound),
		errors.Is(err, pricelistdomain.ErrNotFound),
		errors.Is(err, statementdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, referencedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
