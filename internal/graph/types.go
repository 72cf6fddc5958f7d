package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/classboard/classboard-api/internal/models"
)

// sortOrderEnum maps the SortOrder GraphQL enum onto the list option values.
var sortOrderEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "SortOrder",
	Values: graphql.EnumValueConfigMap{
		models.SortAsc:  &graphql.EnumValueConfig{Value: models.SortAsc},
		models.SortDesc: &graphql.EnumValueConfig{Value: models.SortDesc},
	},
})

var queryOptionsInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "QueryOptionsInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"limit":     &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"offset":    &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"sortBy":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"sortOrder": &graphql.InputObjectFieldConfig{Type: sortOrderEnum},
	},
})

var studentFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "StudentFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"nameContains":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"emailContains": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"major":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"minAge":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"maxAge":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

var courseFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CourseFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"titleContains": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"codePrefix":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"instructor":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"minCredits":    &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"maxCredits":    &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

var addStudentInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "AddStudentInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"age":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"major": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var updateStudentInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateStudentInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"email": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"age":   &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"major": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var addCourseInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "AddCourseInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"code":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"credits":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"instructor": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var updateCourseInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateCourseInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"code":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"credits":    &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"instructor": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var identityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Identity",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"email": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"token": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				payload, ok := p.Source.(*models.AuthPayload)
				if !ok {
					return nil, nil
				}
				return payload.Token, nil
			},
		},
		"identity": &graphql.Field{
			Type: graphql.NewNonNull(identityType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				payload, ok := p.Source.(*models.AuthPayload)
				if !ok {
					return nil, nil
				}
				return payload.Identity, nil
			},
		},
	},
})

func studentSource(p graphql.ResolveParams) (models.Student, bool) {
	switch s := p.Source.(type) {
	case models.Student:
		return s, true
	case *models.Student:
		return *s, true
	}
	return models.Student{}, false
}

func courseSource(p graphql.ResolveParams) (models.Course, bool) {
	switch c := p.Source.(type) {
	case models.Course:
		return c, true
	case *models.Course:
		return *c, true
	}
	return models.Course{}, false
}

// buildEntityTypes constructs the Student and Course object types. The two
// reference each other through their relation fields, so the relation fields
// are attached after both objects exist.
func (b *schemaBuilder) buildEntityTypes() {
	b.studentType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Student",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					student, ok := studentSource(p)
					if !ok {
						return nil, nil
					}
					return student.ID.Hex(), nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					student, ok := studentSource(p)
					if !ok {
						return nil, nil
					}
					return student.Name, nil
				},
			},
			"email": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					student, ok := studentSource(p)
					if !ok {
						return nil, nil
					}
					return student.Email, nil
				},
			},
			"age": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					student, ok := studentSource(p)
					if !ok {
						return nil, nil
					}
					return student.Age, nil
				},
			},
			"major": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					student, ok := studentSource(p)
					if !ok {
						return nil, nil
					}
					return student.Major, nil
				},
			},
		},
	})

	b.courseType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Course",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					course, ok := courseSource(p)
					if !ok {
						return nil, nil
					}
					return course.ID.Hex(), nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					course, ok := courseSource(p)
					if !ok {
						return nil, nil
					}
					return course.Title, nil
				},
			},
			"code": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					course, ok := courseSource(p)
					if !ok {
						return nil, nil
					}
					return course.Code, nil
				},
			},
			"credits": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					course, ok := courseSource(p)
					if !ok {
						return nil, nil
					}
					return course.Credits, nil
				},
			},
			"instructor": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					course, ok := courseSource(p)
					if !ok {
						return nil, nil
					}
					return course.Instructor, nil
				},
			},
		},
	})

	// Relation fields re-query the opposite collection lazily, per request.
	b.studentType.AddFieldConfig("courses", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(b.courseType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			student, ok := studentSource(p)
			if !ok {
				return nil, nil
			}
			return b.svc.Courses.GetByIDs(p.Context, student.Courses)
		},
	})
	b.courseType.AddFieldConfig("students", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(b.studentType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			course, ok := courseSource(p)
			if !ok {
				return nil, nil
			}
			return b.svc.Students.GetByIDs(p.Context, course.Students)
		},
	})
}
