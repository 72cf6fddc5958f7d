package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/classboard/classboard-api/internal/models"
	appErrors "github.com/classboard/classboard-api/pkg/errors"
)

type mockCourseRepo struct {
	courses   map[primitive.ObjectID]models.Course
	byCode    map[string]models.Course
	updateErr error
	deleteErr error
	deleted   []primitive.ObjectID
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		courses: make(map[primitive.ObjectID]models.Course),
		byCode:  make(map[string]models.Course),
	}
}

func (m *mockCourseRepo) add(course models.Course) {
	m.courses[course.ID] = course
	m.byCode[course.Code] = course
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter, opts models.ListOptions) ([]models.Course, error) {
	out := make([]models.Course, 0, len(m.courses))
	for _, course := range m.courses {
		out = append(out, course)
	}
	return out, nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &course, nil
}

func (m *mockCourseRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	out := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		if course, ok := m.courses[id]; ok {
			out = append(out, course)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	course, ok := m.byCode[code]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &course, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = primitive.NewObjectID()
	if course.Students == nil {
		course.Students = []primitive.ObjectID{}
	}
	m.add(*course)
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, id primitive.ObjectID, patch models.CoursePatch) (*models.Course, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	course, ok := m.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if patch.Title != nil {
		course.Title = *patch.Title
	}
	if patch.Code != nil {
		course.Code = *patch.Code
	}
	if patch.Credits != nil {
		course.Credits = *patch.Credits
	}
	if patch.Instructor != nil {
		course.Instructor = *patch.Instructor
	}
	m.add(course)
	return &course, nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	course, ok := m.courses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.courses, id)
	delete(m.byCode, course.Code)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStudentCascader struct {
	pulled []primitive.ObjectID
}

func (m *mockStudentCascader) PullCourseFromAll(ctx context.Context, courseID primitive.ObjectID) error {
	m.pulled = append(m.pulled, courseID)
	return nil
}

func newTestCourseService(repo *mockCourseRepo, cascader *mockStudentCascader) *CourseService {
	return NewCourseService(repo, cascader, nil, validator.New(), zap.NewNop())
}

func TestCourseServiceCreate(t *testing.T) {
	repo := newMockCourseRepo()
	svc := newTestCourseService(repo, &mockStudentCascader{})

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Title:      "Databases",
		Code:       "CS301",
		Credits:    4,
		Instructor: "Dr. Gray",
	})
	require.NoError(t, err)
	assert.False(t, course.ID.IsZero())
	assert.NotNil(t, course.Students)
	assert.Empty(t, course.Students)
}

func TestCourseServiceCreateCreditBounds(t *testing.T) {
	svc := newTestCourseService(newMockCourseRepo(), &mockStudentCascader{})

	for _, credits := range []int{0, 7, -1} {
		_, err := svc.Create(context.Background(), CreateCourseRequest{Title: "X", Code: "X1", Credits: credits, Instructor: "Y"})
		require.Error(t, err, "credits %d", credits)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	}
	for _, credits := range []int{1, 6} {
		repo := newMockCourseRepo()
		ok := newTestCourseService(repo, &mockStudentCascader{})
		_, err := ok.Create(context.Background(), CreateCourseRequest{Title: "X", Code: "X1", Credits: credits, Instructor: "Y"})
		assert.NoError(t, err, "credits %d", credits)
	}
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := newMockCourseRepo()
	repo.add(models.Course{ID: primitive.NewObjectID(), Code: "CS301"})
	svc := newTestCourseService(repo, &mockStudentCascader{})

	_, err := svc.Create(context.Background(), CreateCourseRequest{Title: "Databases", Code: "CS301", Credits: 4, Instructor: "Dr. Gray"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestCourseServiceGetInvalidID(t *testing.T) {
	svc := newTestCourseService(newMockCourseRepo(), &mockStudentCascader{})

	_, err := svc.Get(context.Background(), "zzz")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCourseServiceUpdatePartialPatch(t *testing.T) {
	repo := newMockCourseRepo()
	id := primitive.NewObjectID()
	repo.add(models.Course{ID: id, Title: "Databases", Code: "CS301", Credits: 4, Instructor: "Dr. Gray"})
	svc := newTestCourseService(repo, &mockStudentCascader{})

	credits := 3
	course, err := svc.Update(context.Background(), id.Hex(), models.CoursePatch{Credits: &credits})
	require.NoError(t, err)
	assert.Equal(t, 3, course.Credits)
	assert.Equal(t, "Databases", course.Title)
	assert.Equal(t, "CS301", course.Code)
}

func TestCourseServiceUpdateRejectsBadCredits(t *testing.T) {
	repo := newMockCourseRepo()
	id := primitive.NewObjectID()
	repo.add(models.Course{ID: id, Title: "Databases", Code: "CS301", Credits: 4, Instructor: "Dr. Gray"})
	svc := newTestCourseService(repo, &mockStudentCascader{})

	credits := 9
	_, err := svc.Update(context.Background(), id.Hex(), models.CoursePatch{Credits: &credits})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCourseServiceDeleteCascades(t *testing.T) {
	repo := newMockCourseRepo()
	id := primitive.NewObjectID()
	repo.add(models.Course{ID: id, Title: "Databases", Code: "CS301"})
	cascader := &mockStudentCascader{}
	svc := newTestCourseService(repo, cascader)

	require.NoError(t, svc.Delete(context.Background(), id.Hex()))
	assert.Equal(t, []primitive.ObjectID{id}, repo.deleted)
	assert.Equal(t, []primitive.ObjectID{id}, cascader.pulled)
}

func TestCourseServiceDeleteMissing(t *testing.T) {
	cascader := &mockStudentCascader{}
	svc := newTestCourseService(newMockCourseRepo(), cascader)

	err := svc.Delete(context.Background(), primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, cascader.pulled)
}
