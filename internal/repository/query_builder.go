package repository

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/classboard/classboard-api/internal/models"
)

// Sortable fields per collection. Unknown sort keys are ignored rather than
// rejected; the filter contract is permissive throughout.
var (
	studentSortFields = map[string]string{
		"name":      "name",
		"email":     "email",
		"age":       "age",
		"major":     "major",
		"createdAt": "created_at",
	}
	courseSortFields = map[string]string{
		"title":      "title",
		"code":       "code",
		"credits":    "credits",
		"instructor": "instructor",
		"createdAt":  "created_at",
	}
)

// BuildStudentQuery translates a sparse student filter into a Mongo query
// document. Absent fields impose no constraint.
func BuildStudentQuery(filter models.StudentFilter) bson.M {
	query := bson.M{}

	if filter.NameContains != "" {
		query["name"] = containsPattern(filter.NameContains)
	}
	if filter.EmailContains != "" {
		query["email"] = containsPattern(filter.EmailContains)
	}
	if filter.Major != "" {
		query["major"] = filter.Major
	}
	if rng := rangeConstraint(filter.MinAge, filter.MaxAge); rng != nil {
		query["age"] = rng
	}

	return query
}

// BuildCourseQuery translates a sparse course filter into a Mongo query document.
func BuildCourseQuery(filter models.CourseFilter) bson.M {
	query := bson.M{}

	if filter.TitleContains != "" {
		query["title"] = containsPattern(filter.TitleContains)
	}
	if filter.CodePrefix != "" {
		query["code"] = prefixPattern(filter.CodePrefix)
	}
	if filter.Instructor != "" {
		query["instructor"] = filter.Instructor
	}
	if rng := rangeConstraint(filter.MinCredits, filter.MaxCredits); rng != nil {
		query["credits"] = rng
	}

	return query
}

// BuildFindOptions produces find options with pagination clamped to the hard
// result ceiling. The ceiling holds for any requested limit.
func BuildFindOptions(opts models.ListOptions, sortFields map[string]string) *options.FindOptions {
	limit := opts.Limit
	if limit <= 0 {
		limit = models.DefaultLimit
	}
	if limit > models.MaxLimit {
		limit = models.MaxLimit
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	findOpts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset))

	if opts.SortBy != "" {
		if field, ok := sortFields[opts.SortBy]; ok {
			direction := 1
			if opts.SortOrder == models.SortDesc {
				direction = -1
			}
			findOpts.SetSort(bson.D{{Key: field, Value: direction}})
		}
	}

	return findOpts
}

// containsPattern matches the given text anywhere in the field, case-insensitively.
func containsPattern(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}

// prefixPattern matches the given text at the start of the field, case-insensitively.
func prefixPattern(text string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(text), Options: "i"}
}

// exactInsensitivePattern matches the whole field case-insensitively. Used for
// uniqueness lookups on email and course code.
func exactInsensitivePattern(text string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(text) + "$", Options: "i"}
}

// returnUpdatedDocument makes FindOneAndUpdate return the post-update state.
func returnUpdatedDocument() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func rangeConstraint(min, max *int) bson.M {
	if min == nil && max == nil {
		return nil
	}
	rng := bson.M{}
	if min != nil {
		rng["$gte"] = *min
	}
	if max != nil {
		rng["$lte"] = *max
	}
	return rng
}
