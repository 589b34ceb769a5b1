package handlers

import (
	"net/http"

	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/pricing"
)

// PricingHandler publishes the read-only catalog.
type PricingHandler struct {
	catalog *pricing.Catalog
}

func NewPricingHandler(catalog *pricing.Catalog) *PricingHandler {
	return &PricingHandler{catalog: catalog}
}

func (h *PricingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /pricing/catalog", h.handleCatalog)
}

func (h *PricingHandler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"hourlyRate": pricing.HourlyRate,
		"tiers":      pricing.Tiers,
		"services":   h.catalog.Services(),
	})
}
