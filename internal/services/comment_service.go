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

// CommentService encapsulates the business logic for comment operations.
type CommentService struct {
	repo         *repository.CommentRepository
	solutionRepo *repository.SolutionRepository
	userRepo     *repository.UserRepository
	notifService *NotificationService
	broadcaster  realtime.Broadcaster
}

// NewCommentService creates a new instance of CommentService.
func NewCommentService(
	repo *repository.CommentRepository,
	solutionRepo *repository.SolutionRepository,
	userRepo *repository.UserRepository,
	notifService *NotificationService,
	broadcaster realtime.Broadcaster,
) *CommentService {
	return &CommentService{
		repo:         repo,
		solutionRepo: solutionRepo,
		userRepo:     userRepo,
		notifService: notifService,
		broadcaster:  broadcaster,
	}
}

// CreateComment persists a comment (or reply), links it to its solution and
// parent, fans it out to the problem room and notifies the right author:
// the parent comment's author for a reply, the solution's author otherwise.
func (s *CommentService) CreateComment(ctx context.Context, authorID, solutionID primitive.ObjectID, parentCommentID *primitive.ObjectID, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}
	if len(content) > 500 {
		return nil, fmt.Errorf("comment cannot exceed 500 characters")
	}

	solution, err := s.solutionRepo.GetSolutionByID(ctx, solutionID)
	if err != nil || !solution.IsActive {
		return nil, fmt.Errorf("solution not found")
	}

	var parent *models.Comment
	if parentCommentID != nil {
		parent, err = s.repo.GetCommentByID(ctx, *parentCommentID)
		if err != nil || !parent.IsActive {
			return nil, fmt.Errorf("parent comment not found")
		}
	}

	comment := &models.Comment{
		Content:         content,
		AuthorID:        authorID,
		SolutionID:      solutionID,
		ProblemID:       solution.ProblemID,
		ParentCommentID: parentCommentID,
	}

	created, err := s.repo.CreateComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	if err := s.solutionRepo.AddCommentRef(ctx, solutionID, created.ID); err != nil {
		logrus.WithError(err).Warn("Failed to attach comment to solution")
	}
	if parent != nil {
		if err := s.repo.AddReplyRef(ctx, parent.ID, created.ID); err != nil {
			logrus.WithError(err).Warn("Failed to attach reply to parent comment")
		}
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(solution.ProblemID.Hex()), realtime.EventNewComment, realtime.CommentPayload{
		Comment:    created,
		SolutionID: solutionID.Hex(),
		ProblemID:  solution.ProblemID.Hex(),
	})

	author, err := s.userRepo.GetUserByID(ctx, authorID)
	if err == nil {
		if parent != nil {
			if _, err := s.notifService.NotifyCommentReply(ctx, parent.AuthorID, author, parent, created); err != nil {
				logrus.WithError(err).Warn("Failed to notify parent comment author")
			}
		} else {
			if _, err := s.notifService.NotifyNewComment(ctx, solution.AuthorID, author, solution, created); err != nil {
				logrus.WithError(err).Warn("Failed to notify solution author about comment")
			}
		}
	}
	return created, nil
}

// CommentPage is a listing page with its total.
type CommentPage struct {
	Comments []models.Comment `json:"comments"`
	Total    int64            `json:"total"`
}

// GetCommentsBySolution returns a page of top-level comments.
func (s *CommentService) GetCommentsBySolution(ctx context.Context, solutionID primitive.ObjectID, page, limit int64) (*CommentPage, error) {
	solution, err := s.solutionRepo.GetSolutionByID(ctx, solutionID)
	if err != nil || !solution.IsActive {
		return nil, fmt.Errorf("solution not found")
	}

	comments, err := s.repo.GetCommentsBySolution(ctx, solutionID, page, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountCommentsBySolution(ctx, solutionID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return &CommentPage{Comments: comments, Total: total}, nil
}

// UpdateComment lets the author edit the content and fans the change out.
func (s *CommentService) UpdateComment(ctx context.Context, id, userID primitive.ObjectID, content string) (*models.Comment, error) {
	comment, err := s.repo.GetCommentByID(ctx, id)
	if err != nil || !comment.IsActive {
		return nil, fmt.Errorf("comment not found")
	}
	if comment.AuthorID != userID {
		return nil, ErrNotOwner
	}
	if content == "" {
		return comment, nil
	}
	if len(content) > 500 {
		return nil, fmt.Errorf("comment cannot exceed 500 characters")
	}

	updated, err := s.repo.UpdateComment(ctx, id, bson.M{"content": content})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(updated.ProblemID.Hex()), realtime.EventCommentUpdated, realtime.CommentPayload{
		Comment:    updated,
		SolutionID: updated.SolutionID.Hex(),
		ProblemID:  updated.ProblemID.Hex(),
	})
	return updated, nil
}

// DeleteComment soft-deletes a comment and fans the removal out.
func (s *CommentService) DeleteComment(ctx context.Context, id, userID primitive.ObjectID) error {
	comment, err := s.repo.GetCommentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("comment not found")
	}
	if comment.AuthorID != userID {
		return ErrNotOwner
	}

	if err := s.repo.SoftDeleteComment(ctx, id); err != nil {
		return err
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(comment.ProblemID.Hex()), realtime.EventCommentDeleted, realtime.CommentRefPayload{
		CommentID:  id.Hex(),
		SolutionID: comment.SolutionID.Hex(),
		ProblemID:  comment.ProblemID.Hex(),
	})
	return nil
}

// ToggleUpvote adds or withdraws the user's vote on a comment.
func (s *CommentService) ToggleUpvote(ctx context.Context, id, userID primitive.ObjectID) (int, bool, error) {
	comment, err := s.repo.GetCommentByID(ctx, id)
	if err != nil || !comment.IsActive {
		return 0, false, fmt.Errorf("comment not found")
	}

	hadUpvoted := comment.HasUpvoted(userID)
	if hadUpvoted {
		err = s.repo.RemoveUpvote(ctx, id, userID)
	} else {
		err = s.repo.AddUpvote(ctx, id, userID)
	}
	if err != nil {
		return 0, false, err
	}

	count := comment.UpvoteCount()
	if hadUpvoted {
		count--
	} else {
		count++
	}

	s.broadcaster.Broadcast(realtime.ProblemTopic(comment.ProblemID.Hex()), realtime.EventCommentUpvoteUpdate, realtime.CommentUpvotePayload{
		CommentID:   id.Hex(),
		UpvoteCount: count,
		HasUpvoted:  !hadUpvoted,
		SolutionID:  comment.SolutionID.Hex(),
		ProblemID:   comment.ProblemID.Hex(),
	})

	if !hadUpvoted {
		upvoter, err := s.userRepo.GetUserByID(ctx, userID)
		if err == nil {
			if _, err := s.notifService.NotifyCommentUpvoted(ctx, comment.AuthorID, upvoter, comment); err != nil {
				logrus.WithError(err).Warn("Failed to notify comment author about upvote")
			}
		}
	}
	return count, !hadUpvoted, nil
}
