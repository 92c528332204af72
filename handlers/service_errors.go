package handlers

import (
	"net/http"

	"github.com/gatewise/accesssim/services"
	"github.com/gatewise/accesssim/utils"
	"go.uber.org/zap"
)

// validationDetails flattens validator field errors into response details.
func validationDetails(err error) map[string]interface{} {
	fields := utils.GetValidationFields(err)
	if len(fields) == 0 {
		return nil
	}
	details := make(map[string]interface{}, len(fields))
	for field, message := range fields {
		details[field] = message
	}
	return details
}

// HandleServiceError maps domain errors to HTTP responses. Keeping the
// mapping in one place keeps handlers thin and guarantees the caller can
// always tell "could not evaluate" (5xx/422) apart from "denied" (200
// with granted=false).
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsNotFoundError(err):
		if werr := utils.WriteNotFound(w, err.Error()); werr != nil {
			logger.Error("failed to write not found response", zap.Error(werr))
		}

	case services.IsValidationError(err):
		if werr := utils.WriteBadRequest(w, err.Error(), details); werr != nil {
			logger.Error("failed to write bad request response", zap.Error(werr))
		}

	case services.IsUnauthorizedError(err):
		if werr := utils.WriteUnauthorized(w, err.Error()); werr != nil {
			logger.Error("failed to write unauthorized response", zap.Error(werr))
		}

	case services.IsDataUnavailableError(err):
		if werr := utils.WriteServiceUnavailable(w, err.Error()); werr != nil {
			logger.Error("failed to write service unavailable response", zap.Error(werr))
		}

	case services.IsMalformedConditionError(err):
		if werr := utils.WriteUnprocessableEntity(w, err.Error(), details); werr != nil {
			logger.Error("failed to write unprocessable entity response", zap.Error(werr))
		}

	default:
		logger.Error("unhandled service error", zap.Error(err))
		if werr := utils.WriteInternalServerError(w, "internal error"); werr != nil {
			logger.Error("failed to write internal error response", zap.Error(werr))
		}
	}
}
