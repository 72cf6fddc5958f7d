package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/classboard/classboard-api/internal/models"
	appErrors "github.com/classboard/classboard-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter, opts models.ListOptions) ([]models.Course, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, id primitive.ObjectID, patch models.CoursePatch) (*models.Course, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type studentCascader interface {
	PullCourseFromAll(ctx context.Context, courseID primitive.ObjectID) error
}

// CreateCourseRequest describes the add-course payload.
type CreateCourseRequest struct {
	Title      string `validate:"required"`
	Code       string `validate:"required"`
	Credits    int    `validate:"required,min=1,max=6"`
	Instructor string `validate:"required"`
}

// CourseService orchestrates course CRUD including the delete cascade.
type CourseService struct {
	repo      courseRepository
	students  studentCascader
	cache     *ListCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, students studentCascader, cache *ListCache, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns courses matching the filter, serving from the read cache when possible.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter, opts models.ListOptions) ([]models.Course, error) {
	key := s.cache.Key(models.CourseCollection, filter, opts)

	var cached []models.Course
	if s.cache.Lookup(ctx, key, &cached) {
		return cached, nil
	}

	courses, err := s.repo.List(ctx, filter, opts)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	s.cache.Store(ctx, key, courses)
	return courses, nil
}

// Get fetches one course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	course, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// GetByIDs hydrates the given relation ids into course documents.
func (s *CourseService) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	courses, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	return courses, nil
}

// Create validates and inserts a new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a course with this code already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}

	course := &models.Course{
		Title:      req.Title,
		Code:       req.Code,
		Credits:    req.Credits,
		Instructor: req.Instructor,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.cache.Invalidate(ctx, models.CourseCollection)
	return course, nil
}

// Update applies a partial patch; only provided fields change.
func (s *CourseService) Update(ctx context.Context, id string, patch models.CoursePatch) (*models.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course patch")
	}

	if patch.Code != nil {
		if existing, err := s.repo.FindByCode(ctx, *patch.Code); err == nil && existing.ID != oid {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a course with this code already exists")
		} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
		}
	}

	course, err := s.repo.Update(ctx, oid, patch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.cache.Invalidate(ctx, models.CourseCollection)
	return course, nil
}

// Delete removes the course and pulls its id out of every student's course
// list across the whole collection.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	if err := s.repo.Delete(ctx, oid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	if err := s.students.PullCourseFromAll(ctx, oid); err != nil {
		s.logger.Error("cascade removal from students failed", zap.String("course_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detach course from students")
	}

	s.cache.Invalidate(ctx, models.CourseCollection)
	s.cache.Invalidate(ctx, models.StudentCollection)
	return nil
}
