package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/adilzhan-s/crowdsolve/internal/models"
	"github.com/adilzhan-s/crowdsolve/internal/services"
	"github.com/adilzhan-s/crowdsolve/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SolutionHandler handles HTTP requests related to solutions.
type SolutionHandler struct {
	Service   *services.SolutionService
	UploadDir string
}

// NewSolutionHandler creates a new instance of SolutionHandler.
func NewSolutionHandler(service *services.SolutionService, uploadDir string) *SolutionHandler {
	return &SolutionHandler{Service: service, UploadDir: uploadDir}
}

// CreateSolutionHandler posts a new solution to a problem.
func (h *SolutionHandler) CreateSolutionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	solution := &models.Solution{AuthorID: userID}

	// Accept either JSON or a multipart form with images, matching the clients.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		solution.Content = r.FormValue("content")
		problemID, err := primitive.ObjectIDFromHex(r.FormValue("problemId"))
		if err != nil {
			http.Error(w, "Invalid problem ID", http.StatusBadRequest)
			return
		}
		solution.ProblemID = problemID
		if files := r.MultipartForm.File["images"]; len(files) > 0 {
			images, _ := saveUploads(h.UploadDir, files)
			solution.Images = images
		}
	} else {
		var req struct {
			Content   string `json:"content"`
			ProblemID string `json:"problemId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		problemID, err := primitive.ObjectIDFromHex(req.ProblemID)
		if err != nil {
			http.Error(w, "Invalid problem ID", http.StatusBadRequest)
			return
		}
		solution.Content = req.Content
		solution.ProblemID = problemID
	}

	created, err := h.Service.CreateSolution(r.Context(), solution)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetSolutionsHandler lists a problem's solutions.
func (h *SolutionHandler) GetSolutionsHandler(w http.ResponseWriter, r *http.Request) {
	problemID, err := primitive.ObjectIDFromHex(mux.Vars(r)["problemId"])
	if err != nil {
		http.Error(w, "Invalid problem ID", http.StatusBadRequest)
		return
	}

	page, limit := parsePaging(r, 10)
	result, err := h.Service.GetSolutionsByProblem(r.Context(), problemID, page, limit)
	if err != nil {
		http.Error(w, "Problem not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"solutions":  result.Solutions,
		"pagination": buildPagination(page, limit, result.Total),
	})
}

// UpdateSolutionHandler lets the author edit a solution.
func (h *SolutionHandler) UpdateSolutionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid solution ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	solution, err := h.Service.UpdateSolution(r.Context(), id, userID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(solution)
}

// DeleteSolutionHandler soft-deletes a solution.
func (h *SolutionHandler) DeleteSolutionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid solution ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteSolution(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Solution deleted successfully"})
}

// UpvoteSolutionHandler toggles the caller's vote on a solution.
func (h *SolutionHandler) UpvoteSolutionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid solution ID", http.StatusBadRequest)
		return
	}

	count, hasUpvoted, err := h.Service.ToggleUpvote(r.Context(), id, userID)
	if err != nil {
		http.Error(w, "Solution not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"upvoteCount": count,
		"hasUpvoted":  hasUpvoted,
	})
}

// AcceptSolutionHandler marks a solution as the accepted answer.
func (h *SolutionHandler) AcceptSolutionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid solution ID", http.StatusBadRequest)
		return
	}

	solution, err := h.Service.AcceptSolution(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(solution)
}
