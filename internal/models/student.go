package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentCollection is the MongoDB collection backing student records.
const StudentCollection = "students"

// Student is a persisted student document. Courses holds the ids of courses the
// student is enrolled in; the same pairing is mirrored on Course.Students and
// both sides must be updated together.
type Student struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Age       int                  `bson:"age" json:"age"`
	Major     string               `bson:"major" json:"major"`
	Courses   []primitive.ObjectID `bson:"courses" json:"courses"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updatedAt"`
}

// StudentFilter captures the optional query constraints for student lists.
// Nil fields impose no constraint.
type StudentFilter struct {
	NameContains  string
	EmailContains string
	Major         string
	MinAge        *int
	MaxAge        *int
}

// StudentPatch describes a partial update; only non-nil fields are applied.
type StudentPatch struct {
	Name  *string `validate:"omitempty,min=1"`
	Email *string `validate:"omitempty,email"`
	Age   *int    `validate:"omitempty,gte=16"`
	Major *string
}
