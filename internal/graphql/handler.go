package graphql

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"zapateria/internal/middleware"
	"zapateria/internal/models"
)

// request is the standard GraphQL-over-HTTP POST body.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// HTTPHandler returns a Fiber handler that executes GraphQL requests
// against the schema. It expects to run behind middleware.AuthOptional so
// that the caller identity, when present, reaches the resolvers.
func HTTPHandler(schema graphql.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			log.Printf("Error parsing GraphQL request body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body",
			})
		}

		identity, _ := c.Locals(middleware.IdentityKey).(*models.Identity)
		ctx := WithIdentity(c.UserContext(), identity)

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})
		return c.JSON(result)
	}
}
