package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/classboard/classboard-api/internal/models"
)

// CourseRepository manages persistence for course documents.
type CourseRepository struct {
	col      *mongo.Collection
	observer QueryObserver
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *mongo.Database, observer QueryObserver) *CourseRepository {
	return &CourseRepository{col: db.Collection(models.CourseCollection), observer: observer}
}

// List returns courses matching the provided filter and options.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter, opts models.ListOptions) ([]models.Course, error) {
	defer r.observe("courses.list", time.Now())

	cursor, err := r.col.Find(ctx, BuildCourseQuery(filter), BuildFindOptions(opts, courseSortFields))
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return courses, nil
}

// All returns every course document for the consistency sweep.
func (r *CourseRepository) All(ctx context.Context) ([]models.Course, error) {
	defer r.observe("courses.all", time.Now())

	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("scan courses: %w", err)
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a single course document.
func (r *CourseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	defer r.observe("courses.find_by_id", time.Now())

	var course models.Course
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDs fetches the courses whose ids appear in the given set.
func (r *CourseRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	defer r.observe("courses.find_by_ids", time.Now())

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find courses by ids: %w", err)
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return courses, nil
}

// FindByCode fetches a course by its code, matching case-insensitively.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	defer r.observe("courses.find_by_code", time.Now())

	var course models.Course
	if err := r.col.FindOne(ctx, bson.M{"code": exactInsensitivePattern(code)}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a new course document and assigns its id.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	defer r.observe("courses.create", time.Now())

	now := time.Now().UTC()
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	if course.Students == nil {
		course.Students = []primitive.ObjectID{}
	}
	course.CreatedAt = now
	course.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update applies the non-nil patch fields and returns the updated course.
// Returns mongo.ErrNoDocuments when the id does not resolve.
func (r *CourseRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.CoursePatch) (*models.Course, error) {
	defer r.observe("courses.update", time.Now())

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Code != nil {
		set["code"] = *patch.Code
	}
	if patch.Credits != nil {
		set["credits"] = *patch.Credits
	}
	if patch.Instructor != nil {
		set["instructor"] = *patch.Instructor
	}

	var course models.Course
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdatedDocument()).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Delete removes the course document. Returns mongo.ErrNoDocuments when the id
// does not resolve.
func (r *CourseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.observe("courses.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddStudent records the student id on the course's relation array.
func (r *CourseRepository) AddStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	defer r.observe("courses.add_student", time.Now())

	update := bson.M{
		"$addToSet": bson.M{"students": studentID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": courseID}, update)
	if err != nil {
		return fmt.Errorf("add student to course: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveStudent pulls the student id from the course's relation array.
func (r *CourseRepository) RemoveStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	defer r.observe("courses.remove_student", time.Now())

	update := bson.M{
		"$pull": bson.M{"students": studentID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": courseID}, update)
	if err != nil {
		return fmt.Errorf("remove student from course: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PullStudentFromAll removes the student id from every course document,
// repairing any drifted relation arrays along the way.
func (r *CourseRepository) PullStudentFromAll(ctx context.Context, studentID primitive.ObjectID) error {
	defer r.observe("courses.pull_student_from_all", time.Now())

	if _, err := r.col.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"students": studentID}}); err != nil {
		return fmt.Errorf("pull student from courses: %w", err)
	}
	return nil
}

func (r *CourseRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}
