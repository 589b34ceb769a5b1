package handlers

import (
	"net/http"

	"github.com/hongminglow/itarix-api/internal/community"
	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/models/dto"
)

// ReviewHandler lets signed-in accounts write, edit and report reviews and
// comments.
type ReviewHandler struct {
	reviews  *community.ReviewService
	comments *community.CommentService
	log      logging.Logger
}

func NewReviewHandler(reviews *community.ReviewService, comments *community.CommentService, log logging.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, comments: comments, log: log}
}

func (h *ReviewHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /reviews", authed(h.handleCreateReview))
	mux.Handle("PUT /reviews/{id}", authed(h.handleUpdateReview))
	mux.Handle("DELETE /reviews/{id}", authed(h.handleDeleteReview))
	mux.Handle("POST /reviews/{id}/report", authed(h.handleReportReview))
	mux.HandleFunc("GET /reviews/{id}/comments", h.handleReviewComments)

	mux.Handle("POST /comments", authed(h.handleCreateComment))
	mux.Handle("PUT /comments/{id}", authed(h.handleUpdateComment))
	mux.Handle("DELETE /comments/{id}", authed(h.handleDeleteComment))
	mux.Handle("POST /comments/{id}/report", authed(h.handleReportComment))
}

func (h *ReviewHandler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req dto.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	review, err := h.reviews.Create(r.Context(), identity(r).AccountID, req.ToolID, req.Rating, req.Text)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Review submitted for moderation", review)
}

func (h *ReviewHandler) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req dto.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	review, err := h.reviews.Update(r.Context(), identity(r).AccountID, id, req.Rating, req.Text)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Review updated", review)
}

func (h *ReviewHandler) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), identity(r).AccountID, id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Review deleted", nil)
}

func (h *ReviewHandler) handleReportReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req dto.ReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.reviews.Report(r.Context(), identity(r).AccountID, id, req.Reason); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Review reported", nil)
}

func (h *ReviewHandler) handleReviewComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	comments, err := h.comments.ListByReview(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", comments)
}

func (h *ReviewHandler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req dto.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	comment, err := h.comments.Create(r.Context(), identity(r).AccountID, models.Comment{
		ToolID:   req.ToolID,
		ReviewID: req.ReviewID,
		ParentID: req.ParentID,
		Text:     req.Text,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Comment posted", comment)
}

func (h *ReviewHandler) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req dto.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	comment, err := h.comments.Update(r.Context(), identity(r).AccountID, id, req.Text)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Comment updated", comment)
}

func (h *ReviewHandler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.comments.Delete(r.Context(), identity(r).AccountID, id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Comment deleted", nil)
}

func (h *ReviewHandler) handleReportComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req dto.ReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.comments.Report(r.Context(), identity(r).AccountID, id, req.Reason); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Comment reported", nil)
}
