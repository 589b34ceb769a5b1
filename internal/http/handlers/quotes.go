package handlers

import (
	"net/http"

	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models/dto"
	"github.com/hongminglow/itarix-api/internal/quote"
)

// QuoteHandler prices, saves and lists quotes.
type QuoteHandler struct {
	quotes *quote.Service
	log    logging.Logger
}

func NewQuoteHandler(quotes *quote.Service, log logging.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, log: log}
}

func (h *QuoteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /quotes/estimate", h.handleEstimate)
	mux.Handle("POST /quotes", authed(h.handleCreate))
	mux.Handle("GET /quotes/me", authed(h.handleListMine))
}

func (h *QuoteHandler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	est, err := h.quotes.Estimate(quoteRequest(req))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", est)
}

func (h *QuoteHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	q, err := h.quotes.Create(r.Context(), identity(r), quoteRequest(req))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Quote created", dto.CreateQuoteResponse{
		Success:     true,
		QuoteID:     q.ID,
		PriceNumber: q.Price,
		Hours:       q.EstimatedHours,
	})
}

func (h *QuoteHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.quotes.ListMine(r.Context(), identity(r).AccountID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.QuoteList{Items: quotes})
}

func quoteRequest(req dto.CreateQuoteRequest) quote.Request {
	return quote.Request{
		Service:       req.Service,
		Tier:          req.Tier,
		Type:          req.Type,
		Pages:         req.Pages,
		Features:      req.Features,
		Platforms:     req.Platforms,
		Note:          req.Note,
		SaveToAccount: req.SaveToAccount,
	}
}
