// Package graphql exposes the catalog's GraphQL surface: a public products
// query and a role-gated createProduct mutation. The mutation uses the same
// authorization gate as the REST middleware, so both transports enforce the
// identical write-role policy.
package graphql

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"zapateria/internal/apperrors"
	"zapateria/internal/models"
	"zapateria/internal/services"
)

type contextKey struct{}

var identityKey contextKey

// WithIdentity stores the authenticated caller on the request context.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// identityFrom returns the caller identity, or nil for anonymous requests.
func identityFrom(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey).(*models.Identity)
	return identity
}

// gateError is a resolver error carrying a GraphQL extension code such as
// UNAUTHENTICATED or FORBIDDEN.
type gateError struct {
	message string
	code    string
}

func (e *gateError) Error() string {
	return e.message
}

func (e *gateError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var subcategoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Subcategory",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"category":    &graphql.Field{Type: graphql.NewNonNull(categoryType)},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.Int},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"stock":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"size":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"color":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"brand":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"subcategory": &graphql.Field{Type: graphql.NewNonNull(subcategoryType)},
		"createdAt":   &graphql.Field{Type: graphql.String},
		"updatedAt":   &graphql.Field{Type: graphql.String},
		"createdBy":   &graphql.Field{Type: graphql.String},
		"updatedBy":   &graphql.Field{Type: graphql.String},
		"version":     &graphql.Field{Type: graphql.Int},
	},
})

var categoryInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CategoryInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"id":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var subcategoryInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "SubcategoryInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"id":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"category":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(categoryInput)},
	},
})

var productInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"price":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		"stock":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"size":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"color":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"brand":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"subcategory": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(subcategoryInput)},
	},
})

// NewSchema builds the schema over the product use cases. allowedRoles is
// the write-role set required by the createProduct mutation.
func NewSchema(service *services.ProductService, allowedRoles ...string) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return service.GetAllProducts()
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createProduct": &graphql.Field{
				Type: graphql.NewNonNull(productType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					identity := identityFrom(p.Context)
					if err := services.AssertRoles(identity, allowedRoles...); err != nil {
						if errors.Is(err, apperrors.ErrUnauthenticated) {
							return nil, &gateError{message: "Authentication required", code: "UNAUTHENTICATED"}
						}
						return nil, &gateError{message: "You do not have permission to perform this action", code: "FORBIDDEN"}
					}

					input, _ := p.Args["input"].(map[string]interface{})
					product := productFromInput(input)
					return service.CreateProduct(product, identity.ID)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func productFromInput(input map[string]interface{}) *models.Product {
	sub := asMap(input["subcategory"])
	cat := asMap(sub["category"])
	return &models.Product{
		Name:        asString(input["name"]),
		Description: asString(input["description"]),
		Price:       asFloat(input["price"]),
		Stock:       asInt(input["stock"]),
		Size:        asString(input["size"]),
		Color:       asString(input["color"]),
		Brand:       asString(input["brand"]),
		Subcategory: models.Subcategory{
			ID:          uint(asInt(sub["id"])),
			Name:        asString(sub["name"]),
			Description: asString(sub["description"]),
			CategoryID:  uint(asInt(cat["id"])),
			Category: models.Category{
				ID:          uint(asInt(cat["id"])),
				Name:        asString(cat["name"]),
				Description: asString(cat["description"]),
			},
		},
	}
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
