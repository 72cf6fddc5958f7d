package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/classboard/classboard-api/internal/models"
	appErrors "github.com/classboard/classboard-api/pkg/errors"
)

type enrollmentStudentStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	AddCourse(ctx context.Context, studentID, courseID primitive.ObjectID) error
	RemoveCourse(ctx context.Context, studentID, courseID primitive.ObjectID) error
	All(ctx context.Context) ([]models.Student, error)
}

type enrollmentCourseStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	AddStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error
	RemoveStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error
	All(ctx context.Context) ([]models.Course, error)
}

// EnrollmentService maintains the bidirectional student/course relation. Every
// pairing lives redundantly on both documents, so each operation updates both
// sides. There is no cross-document transaction: a failure between the two
// persist calls leaves a one-sided pairing until Reconcile repairs it.
type EnrollmentService struct {
	students enrollmentStudentStore
	courses  enrollmentCourseStore
	cache    *ListCache
	logger   *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(students enrollmentStudentStore, courses enrollmentCourseStore, cache *ListCache, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{students: students, courses: courses, cache: cache, logger: logger}
}

// Enroll pairs a student with a course on both sides. Enrolling an already
// enrolled pair changes nothing. Returns the updated student.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID string) (*models.Student, error) {
	sid, cid, err := s.resolvePair(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.students.AddCourse(ctx, sid, cid); err != nil {
		return nil, s.pairError(err, "failed to record enrollment on student")
	}
	if err := s.courses.AddStudent(ctx, cid, sid); err != nil {
		return nil, s.pairError(err, "failed to record enrollment on course")
	}

	s.cache.Invalidate(ctx, models.StudentCollection)
	s.cache.Invalidate(ctx, models.CourseCollection)

	student, err := s.students.FindByID(ctx, sid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload student")
	}
	return student, nil
}

// Unenroll removes the pairing from both sides. Removing an absent pairing is
// a no-op, not an error. Returns the updated student.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, courseID string) (*models.Student, error) {
	sid, cid, err := s.resolvePair(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.students.RemoveCourse(ctx, sid, cid); err != nil {
		return nil, s.pairError(err, "failed to remove enrollment from student")
	}
	if err := s.courses.RemoveStudent(ctx, cid, sid); err != nil {
		return nil, s.pairError(err, "failed to remove enrollment from course")
	}

	s.cache.Invalidate(ctx, models.StudentCollection)
	s.cache.Invalidate(ctx, models.CourseCollection)

	student, err := s.students.FindByID(ctx, sid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload student")
	}
	return student, nil
}

// Reconcile scans both collections and repairs relation drift: dangling
// references to deleted documents are pulled, and one-sided pairings between
// live documents get the missing side re-added. Returns the repair count.
func (s *EnrollmentService) Reconcile(ctx context.Context) (int, error) {
	students, err := s.students.All(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan students")
	}
	courses, err := s.courses.All(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan courses")
	}

	courseSides := make(map[primitive.ObjectID]map[primitive.ObjectID]bool, len(courses))
	for _, course := range courses {
		side := make(map[primitive.ObjectID]bool, len(course.Students))
		for _, sid := range course.Students {
			side[sid] = true
		}
		courseSides[course.ID] = side
	}
	studentSides := make(map[primitive.ObjectID]map[primitive.ObjectID]bool, len(students))
	for _, student := range students {
		side := make(map[primitive.ObjectID]bool, len(student.Courses))
		for _, cid := range student.Courses {
			side[cid] = true
		}
		studentSides[student.ID] = side
	}

	repaired := 0
	for _, student := range students {
		for _, cid := range student.Courses {
			side, exists := courseSides[cid]
			if !exists {
				if err := s.students.RemoveCourse(ctx, student.ID, cid); err != nil {
					return repaired, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop dangling course reference")
				}
				repaired++
				continue
			}
			if !side[student.ID] {
				if err := s.courses.AddStudent(ctx, cid, student.ID); err != nil {
					return repaired, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore course side of pairing")
				}
				repaired++
			}
		}
	}
	for _, course := range courses {
		for _, sid := range course.Students {
			side, exists := studentSides[sid]
			if !exists {
				if err := s.courses.RemoveStudent(ctx, course.ID, sid); err != nil {
					return repaired, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop dangling student reference")
				}
				repaired++
				continue
			}
			if !side[course.ID] {
				if err := s.students.AddCourse(ctx, sid, course.ID); err != nil {
					return repaired, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore student side of pairing")
				}
				repaired++
			}
		}
	}

	if repaired > 0 {
		s.cache.Invalidate(ctx, models.StudentCollection)
		s.cache.Invalidate(ctx, models.CourseCollection)
		s.logger.Info("enrollment drift repaired", zap.Int("repairs", repaired))
	}
	return repaired, nil
}

// Run executes Reconcile on a fixed interval until the context is cancelled.
func (s *EnrollmentService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx); err != nil {
				s.logger.Error("enrollment reconcile failed", zap.Error(err))
			}
		}
	}
}

func (s *EnrollmentService) resolvePair(ctx context.Context, studentID, courseID string) (primitive.ObjectID, primitive.ObjectID, error) {
	sid, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	cid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	if _, err := s.students.FindByID(ctx, sid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, primitive.NilObjectID, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return primitive.NilObjectID, primitive.NilObjectID, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.courses.FindByID(ctx, cid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, primitive.NilObjectID, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return primitive.NilObjectID, primitive.NilObjectID, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return sid, cid, nil
}

func (s *EnrollmentService) pairError(err error, message string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment target no longer exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
