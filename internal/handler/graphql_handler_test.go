package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"ping": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return "pong", nil
					},
				},
			},
		}),
	})
	require.NoError(t, err)
	return schema
}

func postGraphQL(handler *GraphQLHandler, body []byte) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/graphql", handler.Execute)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestGraphQLHandlerExecute(t *testing.T) {
	handler := NewGraphQLHandler(pingSchema(t), nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"query": "{ ping }"})
	w := postGraphQL(handler, body)

	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "pong", result.Data["ping"])
}

func TestGraphQLHandlerInvalidBody(t *testing.T) {
	handler := NewGraphQLHandler(pingSchema(t), nil, nil)

	w := postGraphQL(handler, []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGraphQLHandlerReportsErrorsInEnvelope(t *testing.T) {
	handler := NewGraphQLHandler(pingSchema(t), nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"query": "{ nonexistent }"})
	w := postGraphQL(handler, body)

	// GraphQL errors use the response envelope, never an HTTP error status.
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Errors)
}
