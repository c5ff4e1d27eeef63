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

// SolutionService encapsulates the business logic for solution operations.
type SolutionService struct {
	repo         *repository.SolutionRepository
	problemRepo  *repository.ProblemRepository
	userRepo     *repository.UserRepository
	notifService *NotificationService
	broadcaster  realtime.Broadcaster
}

// NewSolutionService creates a new instance of SolutionService.
func NewSolutionService(
	repo *repository.SolutionRepository,
	problemRepo *repository.ProblemRepository,
	userRepo *repository.UserRepository,
	notifService *NotificationService,
	broadcaster realtime.Broadcaster,
) *SolutionService {
	return &SolutionService{
		repo:         repo,
		problemRepo:  problemRepo,
		userRepo:     userRepo,
		notifService: notifService,
		broadcaster:  broadcaster,
	}
}

// CreateSolution persists a solution, links it to its problem, fans it out
// to the problem room and notifies the problem author.
func (s *SolutionService) CreateSolution(ctx context.Context, solution *models.Solution) (*models.Solution, error) {
	if solution.Content == "" {
		return nil, fmt.Errorf("solution content is required")
	}
	if len(solution.Content) > 2000 {
		return nil, fmt.Errorf("solution cannot exceed 2000 characters")
	}

	problem, err := s.problemRepo.GetProblemByID(ctx, solution.ProblemID)
	if err != nil || !problem.IsActive {
		return nil, fmt.Errorf("problem not found")
	}

	created, err := s.repo.CreateSolution(ctx, solution)
	if err != nil {
		return nil, err
	}
	if err := s.problemRepo.AddSolutionRef(ctx, problem.ID, created.ID); err != nil {
		logrus.WithError(err).Warn("Failed to attach solution to problem")
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(problem.ID.Hex()), realtime.EventNewSolution, realtime.SolutionPayload{
		Solution:  created,
		ProblemID: problem.ID.Hex(),
	})

	author, err := s.userRepo.GetUserByID(ctx, created.AuthorID)
	if err == nil {
		if _, err := s.notifService.NotifyNewSolution(ctx, problem.AuthorID, author, problem, created); err != nil {
			logrus.WithError(err).Warn("Failed to notify problem author about new solution")
		}
	}
	return created, nil
}

// SolutionPage is a listing page with its total.
type SolutionPage struct {
	Solutions []models.Solution `json:"solutions"`
	Total     int64             `json:"total"`
}

// GetSolutionsByProblem returns a page of a problem's solutions.
func (s *SolutionService) GetSolutionsByProblem(ctx context.Context, problemID primitive.ObjectID, page, limit int64) (*SolutionPage, error) {
	problem, err := s.problemRepo.GetProblemByID(ctx, problemID)
	if err != nil || !problem.IsActive {
		return nil, fmt.Errorf("problem not found")
	}

	solutions, err := s.repo.GetSolutionsByProblem(ctx, problemID, page, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountSolutionsByProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if solutions == nil {
		solutions = []models.Solution{}
	}
	return &SolutionPage{Solutions: solutions, Total: total}, nil
}

// GetSolutionsByAuthor returns a page of solutions written by a user.
func (s *SolutionService) GetSolutionsByAuthor(ctx context.Context, authorID primitive.ObjectID, page, limit int64) ([]models.Solution, error) {
	solutions, err := s.repo.GetSolutionsByAuthor(ctx, authorID, page, limit)
	if err != nil {
		return nil, err
	}
	if solutions == nil {
		solutions = []models.Solution{}
	}
	return solutions, nil
}

// UpdateSolution lets the author edit the content and fans the change out.
func (s *SolutionService) UpdateSolution(ctx context.Context, id, userID primitive.ObjectID, content string) (*models.Solution, error) {
	solution, err := s.repo.GetSolutionByID(ctx, id)
	if err != nil || !solution.IsActive {
		return nil, fmt.Errorf("solution not found")
	}
	if solution.AuthorID != userID {
		return nil, ErrNotOwner
	}
	if content == "" {
		return solution, nil
	}
	if len(content) > 2000 {
		return nil, fmt.Errorf("solution cannot exceed 2000 characters")
	}

	updated, err := s.repo.UpdateSolution(ctx, id, bson.M{"content": content})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(updated.ProblemID.Hex()), realtime.EventSolutionUpdated, realtime.SolutionPayload{
		Solution:  updated,
		ProblemID: updated.ProblemID.Hex(),
	})
	return updated, nil
}

// DeleteSolution soft-deletes a solution and detaches it from its problem.
func (s *SolutionService) DeleteSolution(ctx context.Context, id, userID primitive.ObjectID) error {
	solution, err := s.repo.GetSolutionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("solution not found")
	}
	if solution.AuthorID != userID {
		return ErrNotOwner
	}

	if err := s.repo.SoftDeleteSolution(ctx, id); err != nil {
		return err
	}
	if err := s.problemRepo.RemoveSolutionRef(ctx, solution.ProblemID, id); err != nil {
		logrus.WithError(err).Warn("Failed to detach solution from problem")
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(solution.ProblemID.Hex()), realtime.EventSolutionDeleted, realtime.SolutionRefPayload{
		SolutionID: id.Hex(),
		ProblemID:  solution.ProblemID.Hex(),
	})
	return nil
}

// ToggleUpvote adds or withdraws the user's vote on a solution.
func (s *SolutionService) ToggleUpvote(ctx context.Context, id, userID primitive.ObjectID) (int, bool, error) {
	solution, err := s.repo.GetSolutionByID(ctx, id)
	if err != nil || !solution.IsActive {
		return 0, false, fmt.Errorf("solution not found")
	}

	hadUpvoted := solution.HasUpvoted(userID)
	if hadUpvoted {
		err = s.repo.RemoveUpvote(ctx, id, userID)
	} else {
		err = s.repo.AddUpvote(ctx, id, userID)
	}
	if err != nil {
		return 0, false, err
	}

	count := solution.UpvoteCount()
	if hadUpvoted {
		count--
	} else {
		count++
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(solution.ProblemID.Hex()), realtime.EventSolutionUpvoteUpdate, realtime.SolutionUpvotePayload{
		SolutionID:  id.Hex(),
		UpvoteCount: count,
		HasUpvoted:  !hadUpvoted,
		ProblemID:   solution.ProblemID.Hex(),
	})

	if !hadUpvoted {
		upvoter, err := s.userRepo.GetUserByID(ctx, userID)
		if err == nil {
			if _, err := s.notifService.NotifySolutionUpvoted(ctx, solution.AuthorID, upvoter, solution); err != nil {
				logrus.WithError(err).Warn("Failed to notify solution author about upvote")
			}
		}
	}
	return count, !hadUpvoted, nil
}

// AcceptSolution marks a solution as the answer. Only the problem author
// may accept; siblings are un-accepted, the problem is closed as Solved and
// the solution author is rewarded.
func (s *SolutionService) AcceptSolution(ctx context.Context, id, userID primitive.ObjectID) (*models.Solution, error) {
	solution, err := s.repo.GetSolutionByID(ctx, id)
	if err != nil || !solution.IsActive {
		return nil, fmt.Errorf("solution not found")
	}

	problem, err := s.problemRepo.GetProblemByID(ctx, solution.ProblemID)
	if err != nil {
		return nil, fmt.Errorf("problem not found")
	}
	if problem.AuthorID != userID {
		return nil, ErrNotOwner
	}

	if err := s.repo.UnacceptAllForProblem(ctx, problem.ID); err != nil {
		return nil, err
	}
	if err := s.repo.SetAccepted(ctx, id); err != nil {
		return nil, err
	}
	if err := s.problemRepo.SetStatus(ctx, problem.ID, "Solved"); err != nil {
		logrus.WithError(err).Warn("Failed to mark problem solved")
	}
	if err := s.userRepo.AwardAcceptedSolution(ctx, solution.AuthorID); err != nil {
		logrus.WithError(err).Warn("Failed to award reputation")
	}
	solution.IsAccepted = true

	s.broadcaster.Broadcast(realtime.ProblemTopic(problem.ID.Hex()), realtime.EventSolutionAccepted, realtime.SolutionRefPayload{
		SolutionID: id.Hex(),
		ProblemID:  problem.ID.Hex(),
	})

	problemAuthor, err := s.userRepo.GetUserByID(ctx, userID)
	if err == nil {
		if _, err := s.notifService.NotifySolutionAccepted(ctx, solution.AuthorID, problemAuthor, solution); err != nil {
			logrus.WithError(err).Warn("Failed to notify solution author about acceptance")
		}
	}
	return solution, nil
}
