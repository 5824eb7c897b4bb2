package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.UserRole, facultyID *string) error
}

// UserService manages login accounts: provisioning and role assignment.
type UserService struct {
	repo      userRepository
	faculty   facultyFinder
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
}

func NewUserService(repo userRepository, faculty facultyFinder, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		repo:      repo,
		faculty:   faculty,
		activity:  activityOrNoop(activity),
		validator: validate,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
	}
}

// List returns accounts and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create provisions an account with a bcrypt password hash.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, invalid("username is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to check email")
	}

	role := models.UserRole(req.Role)
	facultyID, err := s.facultyLink(ctx, role, normalizeOptional(req.FacultyID))
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		FacultyID:    facultyID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, persistError(err, "failed to create user")
	}
	s.activity.Record("created", "user "+username, ActivityUser, actorID)
	return user, nil
}

// AssignRole changes the role of an account. Moving to faculty keeps the
// current link unless a new faculty_id is given; moving to admin clears it.
func (s *UserService) AssignRole(ctx context.Context, req dto.AssignRoleRequest, actorID string) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid role assignment")
	}
	user, err := s.find(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	role := models.UserRole(req.Role)
	link := normalizeOptional(req.FacultyID)
	if link == nil && role == models.RoleFaculty {
		link = user.FacultyID
	}
	facultyID, err := s.facultyLink(ctx, role, link)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRole(ctx, user.ID, role, facultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, persistError(err, "failed to assign role")
	}
	user.Role, user.FacultyID = role, facultyID
	s.activity.Record("updated", fmt.Sprintf("assigned role %q to user %s", role, user.Username), ActivityUser, actorID)
	return user, nil
}

// facultyLink resolves the faculty_id stored for role: required and existing
// for faculty accounts, rejected for admins.
func (s *UserService) facultyLink(ctx context.Context, role models.UserRole, facultyID *string) (*string, error) {
	if role != models.RoleFaculty {
		if facultyID != nil && *facultyID != "" {
			return nil, invalid("faculty_id only applies to faculty accounts")
		}
		return nil, nil
	}
	if facultyID == nil || *facultyID == "" {
		return nil, invalid("faculty accounts must be linked to a faculty")
	}
	if _, err := s.faculty.FindByID(ctx, *facultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, internalError(err, "failed to load faculty")
	}
	return facultyID, nil
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	return user, nil
}
