package health

import (
	"net/http"

	"MiniBase/internal/platform/api"
	"MiniBase/internal/platform/config"
	"MiniBase/internal/platform/server/handler"
)

type HealthHandler struct {
	instanceId string
}

func NewHealthHandler(cfg config.Config) *HealthHandler {
	return &HealthHandler{instanceId: cfg.InstanceId}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	handler.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", InstanceId: h.instanceId})
}
