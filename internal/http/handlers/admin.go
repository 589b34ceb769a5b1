package handlers

import (
	"context"
	"net/http"

	"github.com/hongminglow/itarix-api/internal/account"
	"github.com/hongminglow/itarix-api/internal/community"
	"github.com/hongminglow/itarix-api/internal/consultation"
	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models/dto"
)

// AdminHandler exposes the moderation queue and staff views of accounts
// and consultations.
type AdminHandler struct {
	moderation    *community.ModerationService
	accounts      *account.Service
	consultations *consultation.Service
	log           logging.Logger
}

func NewAdminHandler(moderation *community.ModerationService, accounts *account.Service, consultations *consultation.Service, log logging.Logger) *AdminHandler {
	return &AdminHandler{moderation: moderation, accounts: accounts, consultations: consultations, log: log}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /admin/reviews/pending", staffOnly(h.handlePendingReviews))
	mux.Handle("POST /admin/reviews/{id}/approve", staffOnly(h.handleApproveReview))
	mux.Handle("DELETE /admin/reviews/{id}", staffOnly(h.handleDeleteReview))
	mux.Handle("GET /admin/comments/flagged", staffOnly(h.handleFlaggedComments))
	mux.Handle("POST /admin/comments/{id}/approve", staffOnly(h.handleApproveComment))
	mux.Handle("DELETE /admin/comments/{id}", staffOnly(h.handleDeleteComment))

	mux.Handle("DELETE /admin/users/{id}", adminOnly(h.handleDeactivateUser))
	mux.Handle("GET /admin/users/{id}/consultations", adminOnly(h.handleUserConsultations))
	mux.Handle("GET /admin/consultations/{id}", adminOnly(h.handleConsultation))
}

func (h *AdminHandler) handlePendingReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.moderation.PendingReviews(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", reviews)
}

func (h *AdminHandler) handleApproveReview(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "Review approved", h.moderation.ApproveReview)
}

func (h *AdminHandler) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "Review deleted", h.moderation.DeleteReview)
}

func (h *AdminHandler) handleFlaggedComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.moderation.FlaggedComments(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", comments)
}

func (h *AdminHandler) handleApproveComment(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "Comment approved", h.moderation.ApproveComment)
}

func (h *AdminHandler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "Comment deleted", h.moderation.DeleteComment)
}

func (h *AdminHandler) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "User deactivated", h.accounts.Deactivate)
}

func (h *AdminHandler) handleUserConsultations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	q, err := consultationQuery(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	page, err := h.consultations.List(r.Context(), id, q)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ConsultationPage{Items: page.Items, Total: page.Total, Limit: page.Limit, Offset: page.Offset})
}

func (h *AdminHandler) handleConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.consultations.GetAny(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", c)
}

// withID runs action on the {id} path value and answers with message.
func (h *AdminHandler) withID(w http.ResponseWriter, r *http.Request, message string, action func(context.Context, int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := action(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, message, nil)
}
