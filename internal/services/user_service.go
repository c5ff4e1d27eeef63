package services

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/adilzhan-s/crowdsolve/internal/models"
	"github.com/adilzhan-s/crowdsolve/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo *repository.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, username, email, password, location, bio string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("missing required user fields")
	}
	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}

	if existing, _ := s.repo.GetUserByEmail(ctx, email); existing != nil {
		return nil, fmt.Errorf("email already in use")
	}
	if existing, _ := s.repo.GetUserByUsername(ctx, username); existing != nil {
		return nil, fmt.Errorf("username already taken")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashedPwd),
		Location:       location,
		Bio:            bio,
		IsActive:       true,
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	logrus.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	return createdUser, nil
}

// AuthenticateUser verifies credentials and returns the matching user.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return user, nil
}

// GetUser fetches a user by hex id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id")
	}
	return s.repo.GetUserByID(ctx, objID)
}

// UpdateProfile applies the editable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, location, bio *string) (*models.User, error) {
	update := bson.M{}
	if username != nil && *username != "" {
		existing, _ := s.repo.GetUserByUsername(ctx, *username)
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("username already taken")
		}
		update["username"] = *username
	}
	if location != nil {
		update["location"] = *location
	}
	if bio != nil {
		update["bio"] = *bio
	}
	if len(update) == 0 {
		return s.repo.GetUserByID(ctx, id)
	}
	return s.repo.UpdateUser(ctx, id, update)
}

// GetLeaderboard returns the top users by reputation as public profiles.
func (s *UserService) GetLeaderboard(ctx context.Context, limit int64) ([]models.PublicUser, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	users, err := s.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}
