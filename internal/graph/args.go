package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/classboard/classboard-api/internal/models"
)

// Argument maps only contain keys the caller actually sent, which is what lets
// filters and patches distinguish "absent" from "zero".

func objectArg(p graphql.ResolveParams, key string) map[string]interface{} {
	if raw, ok := p.Args[key].(map[string]interface{}); ok {
		return raw
	}
	return nil
}

func stringField(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func stringPtrField(args map[string]interface{}, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}

func intField(args map[string]interface{}, key string) int {
	if v, ok := args[key].(int); ok {
		return v
	}
	return 0
}

func intPtrField(args map[string]interface{}, key string) *int {
	if v, ok := args[key].(int); ok {
		return &v
	}
	return nil
}

func studentFilterFromArgs(args map[string]interface{}) models.StudentFilter {
	return models.StudentFilter{
		NameContains:  stringField(args, "nameContains"),
		EmailContains: stringField(args, "emailContains"),
		Major:         stringField(args, "major"),
		MinAge:        intPtrField(args, "minAge"),
		MaxAge:        intPtrField(args, "maxAge"),
	}
}

func courseFilterFromArgs(args map[string]interface{}) models.CourseFilter {
	return models.CourseFilter{
		TitleContains: stringField(args, "titleContains"),
		CodePrefix:    stringField(args, "codePrefix"),
		Instructor:    stringField(args, "instructor"),
		MinCredits:    intPtrField(args, "minCredits"),
		MaxCredits:    intPtrField(args, "maxCredits"),
	}
}

func listOptionsFromArgs(args map[string]interface{}) models.ListOptions {
	return models.ListOptions{
		Limit:     intField(args, "limit"),
		Offset:    intField(args, "offset"),
		SortBy:    stringField(args, "sortBy"),
		SortOrder: stringField(args, "sortOrder"),
	}
}

func studentPatchFromArgs(args map[string]interface{}) models.StudentPatch {
	return models.StudentPatch{
		Name:  stringPtrField(args, "name"),
		Email: stringPtrField(args, "email"),
		Age:   intPtrField(args, "age"),
		Major: stringPtrField(args, "major"),
	}
}

func coursePatchFromArgs(args map[string]interface{}) models.CoursePatch {
	return models.CoursePatch{
		Title:      stringPtrField(args, "title"),
		Code:       stringPtrField(args, "code"),
		Credits:    intPtrField(args, "credits"),
		Instructor: stringPtrField(args, "instructor"),
	}
}
