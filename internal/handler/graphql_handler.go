package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/classboard/classboard-api/internal/service"
)

// GraphQLHandler serves the single GraphQL endpoint.
type GraphQLHandler struct {
	schema  graphql.Schema
	metrics *service.MetricsService
	logger  *zap.Logger
}

// NewGraphQLHandler constructs a GraphQLHandler.
func NewGraphQLHandler(schema graphql.Schema, metrics *service.MetricsService, logger *zap.Logger) *GraphQLHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphQLHandler{schema: schema, metrics: metrics, logger: logger}
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Execute runs one GraphQL operation. Errors are reported in the GraphQL
// response envelope with a 200 status; only an unreadable body is a 400.
func (h *GraphQLHandler) Execute(c *gin.Context) {
	var req graphqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": "invalid request body"}}})
		return
	}

	start := time.Now()
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        c.Request.Context(),
	})
	duration := time.Since(start)

	operation := req.OperationName
	if operation == "" {
		operation = "anonymous"
	}
	h.metrics.ObserveGraphQLOperation(operation, len(result.Errors) > 0, duration)

	if len(result.Errors) > 0 {
		h.logger.Warn("graphql operation returned errors",
			zap.String("operation", operation),
			zap.Int("error_count", len(result.Errors)),
			zap.Duration("duration", duration),
		)
	}

	c.JSON(http.StatusOK, result)
}
