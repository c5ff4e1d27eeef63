package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adilzhan-s/crowdsolve/internal/services"
	"github.com/adilzhan-s/crowdsolve/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments.
type CommentHandler struct {
	Service *services.CommentService
}

// NewCommentHandler creates a new instance of CommentHandler.
func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{Service: service}
}

// CreateCommentHandler posts a comment or a reply on a solution.
func (h *CommentHandler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	var req struct {
		Content         string `json:"content"`
		SolutionID      string `json:"solutionId"`
		ParentCommentID string `json:"parentCommentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	solutionID, err := primitive.ObjectIDFromHex(req.SolutionID)
	if err != nil {
		http.Error(w, "Invalid solution ID", http.StatusBadRequest)
		return
	}

	var parentID *primitive.ObjectID
	if req.ParentCommentID != "" {
		parsed, err := primitive.ObjectIDFromHex(req.ParentCommentID)
		if err != nil {
			http.Error(w, "Invalid parent comment ID", http.StatusBadRequest)
			return
		}
		parentID = &parsed
	}

	comment, err := h.Service.CreateComment(r.Context(), userID, solutionID, parentID, req.Content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(comment)
}

// GetCommentsHandler lists a solution's top-level comments.
func (h *CommentHandler) GetCommentsHandler(w http.ResponseWriter, r *http.Request) {
	solutionID, err := primitive.ObjectIDFromHex(mux.Vars(r)["solutionId"])
	if err != nil {
		http.Error(w, "Invalid solution ID", http.StatusBadRequest)
		return
	}

	page, limit := parsePaging(r, 20)
	result, err := h.Service.GetCommentsBySolution(r.Context(), solutionID, page, limit)
	if err != nil {
		http.Error(w, "Solution not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"comments":   result.Comments,
		"pagination": buildPagination(page, limit, result.Total),
	})
}

// UpdateCommentHandler lets the author edit a comment.
func (h *CommentHandler) UpdateCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	comment, err := h.Service.UpdateComment(r.Context(), id, userID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comment)
}

// DeleteCommentHandler soft-deletes a comment.
func (h *CommentHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteComment(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Comment deleted successfully"})
}

// UpvoteCommentHandler toggles the caller's vote on a comment.
func (h *CommentHandler) UpvoteCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	count, hasUpvoted, err := h.Service.ToggleUpvote(r.Context(), id, userID)
	if err != nil {
		http.Error(w, "Comment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"upvoteCount": count,
		"hasUpvoted":  hasUpvoted,
	})
}
