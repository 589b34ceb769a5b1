package handlers

import (
	"net/http"

	"github.com/hongminglow/itarix-api/internal/community"
	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/models/dto"
)

// ToolHandler serves the AI tool directory and the public views of its
// reviews and comments.
type ToolHandler struct {
	tools    *community.ToolService
	reviews  *community.ReviewService
	comments *community.CommentService
	log      logging.Logger
}

func NewToolHandler(tools *community.ToolService, reviews *community.ReviewService, comments *community.CommentService, log logging.Logger) *ToolHandler {
	return &ToolHandler{tools: tools, reviews: reviews, comments: comments, log: log}
}

func (h *ToolHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tools", h.handleList)
	mux.HandleFunc("GET /tools/categories", h.handleCategories)
	mux.HandleFunc("GET /tools/{id}", h.handleGet)
	mux.HandleFunc("GET /tools/{id}/reviews", h.handleReviews)
	mux.HandleFunc("GET /tools/{id}/rating", h.handleRating)
	mux.HandleFunc("GET /tools/{id}/comments", h.handleComments)
	mux.HandleFunc("GET /tools/{id}/comments/count", h.handleCommentCount)
	mux.Handle("POST /tools", staffOnly(h.handleCreate))
	mux.Handle("PUT /tools/{id}", staffOnly(h.handleUpdate))
	mux.Handle("DELETE /tools/{id}", staffOnly(h.handleDelete))
}

func (h *ToolHandler) handleList(w http.ResponseWriter, r *http.Request) {
	tools, err := h.tools.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", tools)
}

func (h *ToolHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.tools.Categories(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", cats)
}

func (h *ToolHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	tool, err := h.tools.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", tool)
}

func (h *ToolHandler) handleReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	reviews, err := h.reviews.ListByTool(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", reviews)
}

func (h *ToolHandler) handleRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	rating, err := h.reviews.Rating(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", rating)
}

func (h *ToolHandler) handleComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	comments, err := h.comments.ListByTool(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", comments)
}

func (h *ToolHandler) handleCommentCount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	n, err := h.comments.CountByTool(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.CountResponse{Count: n})
}

func (h *ToolHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.ToolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	tool, err := h.tools.Create(r.Context(), toolFrom(req))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Tool created", tool)
}

func (h *ToolHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req dto.ToolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	tool, err := h.tools.Update(r.Context(), id, toolFrom(req))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Tool updated", tool)
}

func (h *ToolHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.tools.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Tool deleted", nil)
}

func toolFrom(req dto.ToolRequest) models.Tool {
	return models.Tool{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		WebsiteURL:  req.WebsiteURL,
	}
}
