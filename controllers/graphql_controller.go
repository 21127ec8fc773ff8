package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"go.uber.org/zap"
)

type graphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// GraphQLController serves the single GraphQL endpoint.
type GraphQLController struct {
	schema graphql.Schema
	logger *zap.Logger
}

// NewGraphQLController creates a new GraphQLController.
func NewGraphQLController(schema graphql.Schema, logger *zap.Logger) *GraphQLController {
	return &GraphQLController{schema: schema, logger: logger}
}

// Post handles POST /graphql with a JSON body.
func (gc *GraphQLController) Post(ctx *gin.Context) {
	var req graphQLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorResponse(ctx, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	gc.execute(ctx, req)
}

// Get handles GET /graphql?query=...; only queries are allowed.
func (gc *GraphQLController) Get(ctx *gin.Context) {
	req := graphQLRequest{
		Query:         ctx.Query("query"),
		OperationName: ctx.Query("operationName"),
	}
	if raw := ctx.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			errorResponse(ctx, http.StatusBadRequest, "Variables are invalid JSON.")
			return
		}
	}
	if isMutation(req.Query, req.OperationName) {
		ctx.Header("Allow", http.MethodPost)
		errorResponse(ctx, http.StatusMethodNotAllowed, "Can only perform a mutation operation from a POST request.")
		return
	}
	gc.execute(ctx, req)
}

func (gc *GraphQLController) execute(ctx *gin.Context, req graphQLRequest) {
	if req.Query == "" {
		errorResponse(ctx, http.StatusBadRequest, "Must provide query string.")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         gc.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx.Request.Context(),
	})

	status := http.StatusOK
	if result.HasErrors() {
		gc.logger.Warn("GraphQL errors",
			zap.String("operation", req.OperationName),
			zap.Int("count", len(result.Errors)),
			zap.String("first", result.Errors[0].Message),
		)
		if result.Data == nil {
			status = http.StatusBadRequest
		}
	}
	ctx.JSON(status, result)
}

func errorResponse(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"errors": []gin.H{{"message": message}}})
}

// isMutation reports whether the operation selected by operationName is a
// mutation. Unparseable documents are left for the executor to report.
func isMutation(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		return op.Operation == ast.OperationTypeMutation
	}
	return false
}
