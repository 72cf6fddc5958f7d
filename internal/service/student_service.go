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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter, opts models.ListOptions) ([]models.Student, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, id primitive.ObjectID, patch models.StudentPatch) (*models.Student, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type courseCascader interface {
	PullStudentFromAll(ctx context.Context, studentID primitive.ObjectID) error
}

// CreateStudentRequest describes the add-student payload.
type CreateStudentRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Age   int    `validate:"required,gte=16"`
	Major string
}

// StudentService orchestrates student CRUD including the delete cascade.
type StudentService struct {
	repo      studentRepository
	courses   courseCascader
	cache     *ListCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, courses courseCascader, cache *ListCache, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, courses: courses, cache: cache, validator: validate, logger: logger}
}

// List returns students matching the filter, serving from the read cache when
// an identical query was answered recently.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter, opts models.ListOptions) ([]models.Student, error) {
	key := s.cache.Key(models.StudentCollection, filter, opts)

	var cached []models.Student
	if s.cache.Lookup(ctx, key, &cached) {
		return cached, nil
	}

	students, err := s.repo.List(ctx, filter, opts)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	s.cache.Store(ctx, key, students)
	return students, nil
}

// Get fetches one student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	student, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetByIDs hydrates the given relation ids into student documents.
func (s *StudentService) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Student, error) {
	students, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	return students, nil
}

// Create validates and inserts a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this email already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	student := &models.Student{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
		Major: req.Major,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.cache.Invalidate(ctx, models.StudentCollection)
	return student, nil
}

// Update applies a partial patch; only provided fields change.
func (s *StudentService) Update(ctx context.Context, id string, patch models.StudentPatch) (*models.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student patch")
	}

	if patch.Email != nil {
		if existing, err := s.repo.FindByEmail(ctx, *patch.Email); err == nil && existing.ID != oid {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this email already exists")
		} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
	}

	student, err := s.repo.Update(ctx, oid, patch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.cache.Invalidate(ctx, models.StudentCollection)
	return student, nil
}

// Delete removes the student and pulls its id out of every course's student
// list, whether or not the student's own relation array recorded the pairing.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	if err := s.repo.Delete(ctx, oid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	if err := s.courses.PullStudentFromAll(ctx, oid); err != nil {
		// The student document is already gone; the sweep will repair any
		// remaining references on its next pass.
		s.logger.Error("cascade removal from courses failed", zap.String("student_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detach student from courses")
	}

	s.cache.Invalidate(ctx, models.StudentCollection)
	s.cache.Invalidate(ctx, models.CourseCollection)
	return nil
}
