package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adilzhan-s/crowdsolve/internal/repository"
	"github.com/adilzhan-s/crowdsolve/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler serves public user profiles, their content and the leaderboard.
type UserHandler struct {
	UserService     *services.UserService
	ProblemService  *services.ProblemService
	SolutionService *services.SolutionService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(userService *services.UserService, problemService *services.ProblemService, solutionService *services.SolutionService) *UserHandler {
	return &UserHandler{
		UserService:     userService,
		ProblemService:  problemService,
		SolutionService: solutionService,
	}
}

// GetUserHandler returns a public profile.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Public())
}

// GetUserProblemsHandler lists a user's problems.
func (h *UserHandler) GetUserProblemsHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	page, limit := parsePaging(r, 10)
	filter := repository.ProblemFilter{AuthorID: &authorID}

	result, err := h.ProblemService.GetProblems(r.Context(), filter, page, limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch user problems")
		http.Error(w, "Failed to retrieve problems", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"problems":   result.Problems,
		"pagination": buildPagination(page, limit, result.Total),
	})
}

// GetUserSolutionsHandler lists a user's solutions.
func (h *UserHandler) GetUserSolutionsHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	page, limit := parsePaging(r, 10)
	solutions, err := h.SolutionService.GetSolutionsByAuthor(r.Context(), authorID, page, limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch user solutions")
		http.Error(w, "Failed to retrieve solutions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"solutions": solutions})
}

// GetLeaderboardHandler returns the top users by reputation.
func (h *UserHandler) GetLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	_, limit := parsePaging(r, 10)

	users, err := h.UserService.GetLeaderboard(r.Context(), limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch leaderboard")
		http.Error(w, "Failed to retrieve leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"leaderboard": users})
}
