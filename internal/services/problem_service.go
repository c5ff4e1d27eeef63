package services

import (
	"context"
	"fmt"

	"github.com/adilzhan-s/crowdsolve/internal/models"
	"github.com/adilzhan-s/crowdsolve/internal/realtime"
	"github.com/adilzhan-s/crowdsolve/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProblemService encapsulates the business logic for problem operations.
type ProblemService struct {
	repo         *repository.ProblemRepository
	solutionRepo *repository.SolutionRepository
	userRepo     *repository.UserRepository
	notifService *NotificationService
	broadcaster  realtime.Broadcaster
}

// NewProblemService creates a new instance of ProblemService.
func NewProblemService(
	repo *repository.ProblemRepository,
	solutionRepo *repository.SolutionRepository,
	userRepo *repository.UserRepository,
	notifService *NotificationService,
	broadcaster realtime.Broadcaster,
) *ProblemService {
	return &ProblemService{
		repo:         repo,
		solutionRepo: solutionRepo,
		userRepo:     userRepo,
		notifService: notifService,
		broadcaster:  broadcaster,
	}
}

// CreateProblem validates and persists a new problem.
func (s *ProblemService) CreateProblem(ctx context.Context, problem *models.Problem) (*models.Problem, error) {
	if problem.Title == "" || problem.Description == "" || problem.Category == "" {
		return nil, fmt.Errorf("title, description and category are required")
	}
	if len(problem.Title) > 100 {
		return nil, fmt.Errorf("title cannot exceed 100 characters")
	}
	if len(problem.Description) > 2000 {
		return nil, fmt.Errorf("description cannot exceed 2000 characters")
	}
	if !models.ValidCategory(problem.Category) {
		return nil, fmt.Errorf("unknown category %q", problem.Category)
	}
	if problem.Priority == "" {
		problem.Priority = "Medium"
	}
	if !models.ValidPriority(problem.Priority) {
		return nil, fmt.Errorf("unknown priority %q", problem.Priority)
	}
	problem.Status = "Open"

	return s.repo.CreateProblem(ctx, problem)
}

// ProblemPage is a listing page with its total.
type ProblemPage struct {
	Problems []models.Problem `json:"problems"`
	Total    int64            `json:"total"`
}

// GetProblems returns a filtered page of active problems.
func (s *ProblemService) GetProblems(ctx context.Context, filter repository.ProblemFilter, page, limit int64) (*ProblemPage, error) {
	problems, err := s.repo.GetProblems(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountProblems(ctx, filter)
	if err != nil {
		return nil, err
	}
	if problems == nil {
		problems = []models.Problem{}
	}
	return &ProblemPage{Problems: problems, Total: total}, nil
}

// GetProblem fetches a problem, bumps its view counter and fans the new
// counter out to the problem room.
func (s *ProblemService) GetProblem(ctx context.Context, id primitive.ObjectID) (*models.Problem, error) {
	problem, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("problem not found")
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(id.Hex()), realtime.EventViewCountUpdated, realtime.ViewCountPayload{
		ProblemID: id.Hex(),
		Views:     problem.Views,
	})
	return problem, nil
}

// UpdateProblem lets the author edit mutable fields.
func (s *ProblemService) UpdateProblem(ctx context.Context, id, userID primitive.ObjectID, title, description, category, priority, status string) (*models.Problem, error) {
	problem, err := s.repo.GetProblemByID(ctx, id)
	if err != nil || !problem.IsActive {
		return nil, fmt.Errorf("problem not found")
	}
	if problem.AuthorID != userID {
		return nil, ErrNotOwner
	}

	update := bson.M{}
	if title != "" {
		if len(title) > 100 {
			return nil, fmt.Errorf("title cannot exceed 100 characters")
		}
		update["title"] = title
	}
	if description != "" {
		if len(description) > 2000 {
			return nil, fmt.Errorf("description cannot exceed 2000 characters")
		}
		update["description"] = description
	}
	if category != "" {
		if !models.ValidCategory(category) {
			return nil, fmt.Errorf("unknown category %q", category)
		}
		update["category"] = category
	}
	if priority != "" {
		if !models.ValidPriority(priority) {
			return nil, fmt.Errorf("unknown priority %q", priority)
		}
		update["priority"] = priority
	}
	if status != "" {
		if !models.ValidStatus(status) {
			return nil, fmt.Errorf("unknown status %q", status)
		}
		update["status"] = status
	}
	if len(update) == 0 {
		return problem, nil
	}
	return s.repo.UpdateProblem(ctx, id, update)
}

// DeleteProblem soft-deletes a problem and cascades to its solutions.
func (s *ProblemService) DeleteProblem(ctx context.Context, id, userID primitive.ObjectID) error {
	problem, err := s.repo.GetProblemByID(ctx, id)
	if err != nil {
		return fmt.Errorf("problem not found")
	}
	if problem.AuthorID != userID {
		return ErrNotOwner
	}

	if err := s.repo.SoftDeleteProblem(ctx, id); err != nil {
		return err
	}
	return s.solutionRepo.SoftDeleteByProblem(ctx, id)
}

// ToggleUpvote adds or withdraws the user's vote, announces the new count
// to the problem room and notifies the author on a fresh vote.
func (s *ProblemService) ToggleUpvote(ctx context.Context, id, userID primitive.ObjectID) (int, bool, error) {
	problem, err := s.repo.GetProblemByID(ctx, id)
	if err != nil || !problem.IsActive {
		return 0, false, fmt.Errorf("problem not found")
	}

	hadUpvoted := problem.HasUpvoted(userID)
	if hadUpvoted {
		err = s.repo.RemoveUpvote(ctx, id, userID)
	} else {
		err = s.repo.AddUpvote(ctx, id, userID)
	}
	if err != nil {
		return 0, false, err
	}

	count := problem.UpvoteCount()
	if hadUpvoted {
		count--
	} else {
		count++
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(id.Hex()), realtime.EventProblemUpvoteUpdate, realtime.ProblemUpvotePayload{
		ProblemID:   id.Hex(),
		UpvoteCount: count,
		HasUpvoted:  !hadUpvoted,
	})

	if !hadUpvoted {
		upvoter, err := s.userRepo.GetUserByID(ctx, userID)
		if err == nil {
			if _, err := s.notifService.NotifyProblemUpvoted(ctx, problem.AuthorID, upvoter, problem); err != nil {
				logrus.WithError(err).Warn("Failed to notify problem author about upvote")
			}
		}
	}
	return count, !hadUpvoted, nil
}
