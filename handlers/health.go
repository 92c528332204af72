package handlers

import (
	"net/http"

	"github.com/gatewise/accesssim/app"
	"github.com/gatewise/accesssim/utils"
	"go.uber.org/zap"
)

// HealthResponse reports process liveness and decision counters.
type HealthResponse struct {
	Status  string `json:"status"`
	Granted uint64 `json:"decisions_granted"`
	Denied  uint64 `json:"decisions_denied"`
	Errors  uint64 `json:"decisions_errored"`
}

// HealthCheckHandler handles GET /healthz. It reports liveness only;
// readiness is a separate probe.
func HealthCheckHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		granted, denied, errored := deps.Recorder.Counters().Snapshot()
		if err := utils.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Granted: granted,
			Denied:  denied,
			Errors:  errored,
		}); err != nil {
			deps.Logger.Error("failed to write health response", zap.Error(err))
		}
	}
}

// ReadinessCheckHandler handles GET /readyz. The service is ready when
// the document source can produce a complete evaluation snapshot and,
// in store-backed mode, the database answers a ping.
func ReadinessCheckHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.HealthCheck(r.Context()); err != nil {
				deps.Logger.Warn("readiness check failed: database unreachable", zap.Error(err))
				if werr := utils.WriteServiceUnavailable(w, "database unavailable"); werr != nil {
					deps.Logger.Error("failed to write readiness response", zap.Error(werr))
				}
				return
			}
		}

		if _, _, _, err := deps.Source.Load(r.Context()); err != nil {
			deps.Logger.Warn("readiness check failed: documents unavailable", zap.Error(err))
			if werr := utils.WriteServiceUnavailable(w, "evaluation documents unavailable"); werr != nil {
				deps.Logger.Error("failed to write readiness response", zap.Error(werr))
			}
			return
		}

		if err := utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"}); err != nil {
			deps.Logger.Error("failed to write readiness response", zap.Error(err))
		}
	}
}
