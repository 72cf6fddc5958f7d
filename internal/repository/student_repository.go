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

// QueryObserver receives database timing samples. Satisfied by the metrics
// service; a nil observer disables instrumentation.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// StudentRepository manages persistence for student documents.
type StudentRepository struct {
	col      *mongo.Collection
	observer QueryObserver
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *mongo.Database, observer QueryObserver) *StudentRepository {
	return &StudentRepository{col: db.Collection(models.StudentCollection), observer: observer}
}

// List returns students matching the provided filter and options.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter, opts models.ListOptions) ([]models.Student, error) {
	defer r.observe("students.list", time.Now())

	cursor, err := r.col.Find(ctx, BuildStudentQuery(filter), BuildFindOptions(opts, studentSortFields))
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer cursor.Close(ctx)

	students := []models.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}

// All returns every student document. Used by the consistency sweep, which
// needs the full relation picture rather than a page.
func (r *StudentRepository) All(ctx context.Context) ([]models.Student, error) {
	defer r.observe("students.all", time.Now())

	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("scan students: %w", err)
	}
	defer cursor.Close(ctx)

	students := []models.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}

// FindByID fetches a single student document.
func (r *StudentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	defer r.observe("students.find_by_id", time.Now())

	var student models.Student
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&student); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByIDs fetches the students whose ids appear in the given set. Missing ids
// are skipped silently; relation arrays may reference deleted documents briefly.
func (r *StudentRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	defer r.observe("students.find_by_ids", time.Now())

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find students by ids: %w", err)
	}
	defer cursor.Close(ctx)

	students := []models.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}

// FindByEmail fetches a student by email, matching case-insensitively.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	defer r.observe("students.find_by_email", time.Now())

	var student models.Student
	if err := r.col.FindOne(ctx, bson.M{"email": exactInsensitivePattern(email)}).Decode(&student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student document and assigns its id.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	defer r.observe("students.create", time.Now())

	now := time.Now().UTC()
	if student.ID.IsZero() {
		student.ID = primitive.NewObjectID()
	}
	if student.Courses == nil {
		student.Courses = []primitive.ObjectID{}
	}
	student.CreatedAt = now
	student.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update applies the non-nil patch fields to the document and returns the
// updated student. Returns mongo.ErrNoDocuments when the id does not resolve.
func (r *StudentRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.StudentPatch) (*models.Student, error) {
	defer r.observe("students.update", time.Now())

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Age != nil {
		set["age"] = *patch.Age
	}
	if patch.Major != nil {
		set["major"] = *patch.Major
	}

	opts := returnUpdatedDocument()
	var student models.Student
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Delete removes the student document. Returns mongo.ErrNoDocuments when the
// id does not resolve.
func (r *StudentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.observe("students.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddCourse records the course id on the student's relation array. $addToSet
// keeps the insert idempotent.
func (r *StudentRepository) AddCourse(ctx context.Context, studentID, courseID primitive.ObjectID) error {
	defer r.observe("students.add_course", time.Now())

	update := bson.M{
		"$addToSet": bson.M{"courses": courseID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": studentID}, update)
	if err != nil {
		return fmt.Errorf("add course to student: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveCourse pulls the course id from the student's relation array. Removing
// an absent pairing is a no-op.
func (r *StudentRepository) RemoveCourse(ctx context.Context, studentID, courseID primitive.ObjectID) error {
	defer r.observe("students.remove_course", time.Now())

	update := bson.M{
		"$pull": bson.M{"courses": courseID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": studentID}, update)
	if err != nil {
		return fmt.Errorf("remove course from student: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PullCourseFromAll removes the course id from every student document. The
// sweep is deliberately unscoped so it also repairs relation arrays that had
// drifted out of sync with the deleted course.
func (r *StudentRepository) PullCourseFromAll(ctx context.Context, courseID primitive.ObjectID) error {
	defer r.observe("students.pull_course_from_all", time.Now())

	if _, err := r.col.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"courses": courseID}}); err != nil {
		return fmt.Errorf("pull course from students: %w", err)
	}
	return nil
}

func (r *StudentRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}
