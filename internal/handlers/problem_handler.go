package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/adilzhan-s/crowdsolve/internal/models"
	"github.com/adilzhan-s/crowdsolve/internal/repository"
	"github.com/adilzhan-s/crowdsolve/internal/services"
	"github.com/adilzhan-s/crowdsolve/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProblemHandler handles HTTP requests related to problems.
type ProblemHandler struct {
	Service   *services.ProblemService
	UploadDir string
}

// NewProblemHandler creates a new instance of ProblemHandler.
func NewProblemHandler(service *services.ProblemService, uploadDir string) *ProblemHandler {
	return &ProblemHandler{Service: service, UploadDir: uploadDir}
}

// CreateProblemHandler handles problem creation with optional multipart images.
func (h *ProblemHandler) CreateProblemHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	problem := &models.Problem{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Priority:    r.FormValue("priority"),
		AuthorID:    userID,
	}

	if raw := r.FormValue("location"); raw != "" {
		var loc models.Location
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			// Tolerate a plain address string the same way the clients send it.
			loc = models.Location{Address: raw}
		}
		problem.Location = &loc
	}

	if files := r.MultipartForm.File["images"]; len(files) > 0 {
		images, err := saveUploads(h.UploadDir, files)
		if err != nil {
			log.WithError(err).Warn("Image upload failed")
		}
		problem.Images = images
	}

	created, err := h.Service.CreateProblem(r.Context(), problem)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetProblemsHandler returns a filtered, paginated problem listing.
func (h *ProblemHandler) GetProblemsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePaging(r, 10)

	filter := repository.ProblemFilter{
		Category: r.URL.Query().Get("category"),
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
		Search:   r.URL.Query().Get("search"),
	}

	result, err := h.Service.GetProblems(r.Context(), filter, page, limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch problems")
		http.Error(w, "Failed to retrieve problems", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"problems":   result.Problems,
		"pagination": buildPagination(page, limit, result.Total),
	})
}

// GetProblemHandler returns one problem and bumps its view counter.
func (h *ProblemHandler) GetProblemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid problem ID", http.StatusBadRequest)
		return
	}

	problem, err := h.Service.GetProblem(r.Context(), id)
	if err != nil {
		http.Error(w, "Problem not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(problem)
}

// UpdateProblemHandler lets the author edit a problem.
func (h *ProblemHandler) UpdateProblemHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid problem ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Priority    string `json:"priority"`
		Status      string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	problem, err := h.Service.UpdateProblem(r.Context(), id, userID, req.Title, req.Description, req.Category, req.Priority, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(problem)
}

// DeleteProblemHandler soft-deletes a problem.
func (h *ProblemHandler) DeleteProblemHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid problem ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteProblem(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Problem deleted successfully"})
}

// UpvoteProblemHandler toggles the caller's vote on a problem.
func (h *ProblemHandler) UpvoteProblemHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid problem ID", http.StatusBadRequest)
		return
	}

	count, hasUpvoted, err := h.Service.ToggleUpvote(r.Context(), id, userID)
	if err != nil {
		http.Error(w, "Problem not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"upvoteCount": count,
		"hasUpvoted":  hasUpvoted,
	})
}

// writeServiceError maps service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrNotOwner) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// saveUploads writes multipart files under dir and returns image references.
func saveUploads(dir string, files []*multipart.FileHeader) ([]models.Image, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %v", err)
	}

	var images []models.Image
	for _, header := range files {
		src, err := header.Open()
		if err != nil {
			log.WithError(err).Warn("Failed to read uploaded file")
			continue
		}

		name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename))
		dst, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			src.Close()
			log.WithError(err).Warn("Failed to save uploaded file")
			continue
		}
		if _, err := io.Copy(dst, src); err != nil {
			log.WithError(err).Warn("Failed to save uploaded file")
		} else {
			images = append(images, models.Image{URL: "/uploads/" + name, PublicID: name})
		}
		dst.Close()
		src.Close()
	}
	return images, nil
}
