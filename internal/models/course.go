package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseCollection is the MongoDB collection backing course records.
const CourseCollection = "courses"

// Course is a persisted course document. Students mirrors Student.Courses.
type Course struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title      string               `bson:"title" json:"title"`
	Code       string               `bson:"code" json:"code"`
	Credits    int                  `bson:"credits" json:"credits"`
	Instructor string               `bson:"instructor" json:"instructor"`
	Students   []primitive.ObjectID `bson:"students" json:"students"`
	CreatedAt  time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updatedAt"`
}

// CourseFilter captures the optional query constraints for course lists.
type CourseFilter struct {
	TitleContains string
	CodePrefix    string
	Instructor    string
	MinCredits    *int
	MaxCredits    *int
}

// CoursePatch describes a partial update; only non-nil fields are applied.
type CoursePatch struct {
	Title      *string `validate:"omitempty,min=1"`
	Code       *string `validate:"omitempty,min=1"`
	Credits    *int    `validate:"omitempty,min=1,max=6"`
	Instructor *string `validate:"omitempty,min=1"`
}
