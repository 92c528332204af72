package handlers

import (
	"net/http"

	"github.com/gatewise/accesssim/app"
	"github.com/gatewise/accesssim/middleware"
	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/utils"
	"go.uber.org/zap"
)

// PolicySummary is a read-only projection of a policy for listing.
type PolicySummary struct {
	Name       string              `json:"name"`
	Status     models.PolicyStatus `json:"status"`
	Subjects   []string            `json:"subjects"`
	Access     string              `json:"access"`
	Conditions models.Conditions   `json:"conditions"`
}

// ListPoliciesResponse wraps the ordered policy list; the order is the
// precedence order used during evaluation.
type ListPoliciesResponse struct {
	Policies []PolicySummary `json:"policies"`
	Total    int             `json:"total"`
}

// ListPoliciesHandler handles GET /api/v1/policies
func ListPoliciesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetRequestIDFromContext(r.Context())
		logger := deps.Logger.With(zap.String("request_id", requestID))

		set, _, _, err := deps.Source.Load(r.Context())
		if err != nil {
			logger.Error("failed to load policies", zap.Error(err))
			HandleServiceError(w, err, logger)
			return
		}

		summaries := make([]PolicySummary, 0, len(set.Policies))
		for _, policy := range set.Policies {
			summaries = append(summaries, PolicySummary{
				Name:       policy.Name,
				Status:     policy.Status,
				Subjects:   policy.Subjects,
				Access:     policy.GrantControls.Access,
				Conditions: policy.Conditions,
			})
		}

		if werr := utils.WriteOK(w, ListPoliciesResponse{
			Policies: summaries,
			Total:    len(summaries),
		}); werr != nil {
			logger.Error("failed to write response", zap.Error(werr))
		}
	}
}
