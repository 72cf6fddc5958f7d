// Package graph builds the GraphQL schema and binds its resolvers to the
// domain services. Reads are open; every other mutation runs behind the
// access gate in auth.go.
package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/classboard/classboard-api/internal/service"
)

// Services bundles the domain services the schema resolves against.
type Services struct {
	Students   *service.StudentService
	Courses    *service.CourseService
	Enrollment *service.EnrollmentService
	Auth       *service.AuthService
}

type schemaBuilder struct {
	svc         Services
	studentType *graphql.Object
	courseType  *graphql.Object
}

// NewSchema constructs the executable schema.
func NewSchema(svc Services) (graphql.Schema, error) {
	b := &schemaBuilder{svc: svc}
	b.buildEntityTypes()

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.queryType(),
		Mutation: b.mutationType(),
	})
}

func (b *schemaBuilder) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getAllStudents": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.studentType))),
				Args: graphql.FieldConfigArgument{
					"filter":  &graphql.ArgumentConfig{Type: studentFilterInput},
					"options": &graphql.ArgumentConfig{Type: queryOptionsInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := studentFilterFromArgs(objectArg(p, "filter"))
					opts := listOptionsFromArgs(objectArg(p, "options"))
					return b.svc.Students.List(p.Context, filter, opts)
				},
			},
			"getAllCourses": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.courseType))),
				Args: graphql.FieldConfigArgument{
					"filter":  &graphql.ArgumentConfig{Type: courseFilterInput},
					"options": &graphql.ArgumentConfig{Type: queryOptionsInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := courseFilterFromArgs(objectArg(p, "filter"))
					opts := listOptionsFromArgs(objectArg(p, "options"))
					return b.svc.Courses.List(p.Context, filter, opts)
				},
			},
			"getStudent": &graphql.Field{
				Type: b.studentType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Students.Get(p.Context, p.Args["id"].(string))
				},
			},
			"getCourse": &graphql.Field{
				Type: b.courseType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Courses.Get(p.Context, p.Args["id"].(string))
				},
			},
		},
	})
}

func (b *schemaBuilder) mutationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"signup": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Auth.Signup(p.Context, service.SignupRequest{
						Email:    p.Args["email"].(string),
						Password: p.Args["password"].(string),
					})
				},
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Auth.Login(p.Context, service.LoginRequest{
						Email:    p.Args["email"].(string),
						Password: p.Args["password"].(string),
					})
				},
			},
			"addStudent": &graphql.Field{
				Type: graphql.NewNonNull(b.studentType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(addStudentInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := RequireViewer(p.Context); err != nil {
						return nil, err
					}
					input := objectArg(p, "input")
					return b.svc.Students.Create(p.Context, service.CreateStudentRequest{
						Name:  stringField(input, "name"),
						Email: stringField(input, "email"),
						Age:   intField(input, "age"),
						Major: stringField(input, "major"),
					})
				},
			},
			"updateStudent": &graphql.Field{
				Type: graphql.NewNonNull(b.studentType),
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateStudentInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := RequireViewer(p.Context); err != nil {
						return nil, err
					}
					patch := studentPatchFromArgs(objectArg(p, "input"))
					return b.svc.Students.Update(p.Context, p.Args["id"].(string), patch)
				},
			},
			"deleteStudent": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := RequireViewer(p.Context); err != nil {
						return nil, err
					}
					if err := b.svc.Students.Delete(p.Context, p.Args["id"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"addCourse": &graphql.Field{
				Type: graphql.NewNonNull(b.courseType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(addCourseInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := RequireViewer(p.Context); err != nil {
						return nil, err
					}
					input := objectArg(p, "input")
					return b.svc.Courses.Create(p.Context, service.CreateCourseRequest{
						Title:      stringField(input, "title"),
						Code:       stringField(input, "code"),
						Credits:    intField(input, "credits"),
						Instructor: stringField(input, "instructor"),
					})
				},
			},
			"updateCourse": &graphql.Field{
				Type: graphql.NewNonNull(b.courseType),
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateCourseInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := RequireViewer(p.Context); err != nil {
						return nil, err
					}
					patch := coursePatchFromArgs(objectArg(p, "input"))
					return b.svc.Courses.Update(p.Context, p.Args["id"].(string), patch)
				},
			},
			"deleteCourse": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := RequireViewer(p.Context); err != nil {
						return nil, err
					}
					if err := b.svc.Courses.Delete(p.Context, p.Args["id"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"enrollStudent": &graphql.Field{
				Type: graphql.NewNonNull(b.studentType),
				Args: graphql.FieldConfigArgument{
					"studentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"courseId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := RequireViewer(p.Context); err != nil {
						return nil, err
					}
					return b.svc.Enrollment.Enroll(p.Context, p.Args["studentId"].(string), p.Args["courseId"].(string))
				},
			},
			"unenrollStudent": &graphql.Field{
				Type: graphql.NewNonNull(b.studentType),
				Args: graphql.FieldConfigArgument{
					"studentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"courseId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := RequireViewer(p.Context); err != nil {
						return nil, err
					}
					return b.svc.Enrollment.Unenroll(p.Context, p.Args["studentId"].(string), p.Args["courseId"].(string))
				},
			},
		},
	})
}
