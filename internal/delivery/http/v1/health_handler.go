package v1

import (
	"context"
	"net/http"
	"time"

	"gomarketplace-cart/pkg/kvstore"
	"gomarketplace-cart/pkg/utils"
)

type HealthHandler struct {
	store  kvstore.Store
	driver string
}

func NewHealthHandler(store kvstore.Store, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

// GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  h.driver,
			"error":  err.Error(),
		})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  h.driver,
	})
}
