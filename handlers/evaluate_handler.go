package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gatewise/accesssim/app"
	"github.com/gatewise/accesssim/middleware"
	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/services/evaluation"
	"github.com/gatewise/accesssim/utils"
	"go.uber.org/zap"
)

// EvaluateRequest is the request body for an access evaluation.
// Context, when present, overrides the deployed context snapshot for
// this request only; At pins the evaluation clock for what-if queries.
type EvaluateRequest struct {
	SubjectID string                 `json:"subject_id" validate:"required"`
	Context   *models.RequestContext `json:"context,omitempty"`
	At        *time.Time             `json:"at,omitempty"`
}

// EvaluateHandler handles POST /api/v1/evaluate
func EvaluateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetRequestIDFromContext(r.Context())
		logger := deps.Logger.With(zap.String("request_id", requestID))

		var req EvaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid evaluate request body", zap.Error(err))
			if werr := utils.WriteBadRequest(w, "invalid request body", nil); werr != nil {
				logger.Error("failed to write response", zap.Error(werr))
			}
			return
		}

		if err := utils.ValidateStruct(&req); err != nil {
			logger.Warn("evaluate request validation failed", zap.Error(err))
			if werr := utils.WriteBadRequest(w, err.Error(), validationDetails(err)); werr != nil {
				logger.Error("failed to write response", zap.Error(werr))
			}
			return
		}

		set, dir, snap, err := deps.Source.Load(r.Context())
		if err != nil {
			logger.Error("failed to load evaluation documents", zap.Error(err))
			deps.Recorder.SubmitError()
			HandleServiceError(w, err, logger)
			return
		}

		if req.Context != nil {
			snap = &models.ContextSnapshot{Context: req.Context}
		}

		at := time.Now()
		if req.At != nil {
			at = *req.At
		}

		decision, err := deps.Evaluator.Evaluate(r.Context(), set, dir, snap, evaluation.Request{
			SubjectID: req.SubjectID,
			At:        at,
		})
		if err != nil {
			logger.Warn("evaluation failed",
				zap.String("subject_id", req.SubjectID),
				zap.Error(err))
			deps.Recorder.SubmitError()
			HandleServiceError(w, err, logger)
			return
		}

		deps.Recorder.Submit(decision)

		logger.Info("evaluation completed",
			zap.String("subject_id", decision.SubjectID),
			zap.Bool("granted", decision.Granted),
			zap.String("evaluation_id", decision.EvaluationID.String()))

		if werr := utils.WriteOK(w, decision); werr != nil {
			logger.Error("failed to write response", zap.Error(werr))
		}
	}
}
