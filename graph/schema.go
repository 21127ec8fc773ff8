// Package graph builds the CRM GraphQL schema: object types, filter inputs,
// queries and mutations resolved against the service layer.
package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/apperrors"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/repository"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/services"
	"go.uber.org/zap"
)

const helloMessage = "Hello, GraphQL!"

// Resolver wires the schema to the service layer.
type Resolver struct {
	Customers services.CustomerService
	Products  services.ProductService
	Orders    services.OrderService
	Logger    *zap.Logger
}

// NewSchema builds the query and mutation roots.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	types := newObjectTypes()
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(types),
		Mutation: r.mutationType(types),
	})
}

func (r *Resolver) queryType(t *objectTypes) *graphql.Object {
	idArgs := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return helloMessage, nil
				},
			},
			"customer": &graphql.Field{
				Type: t.customer,
				Args: idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, err := r.Customers.GetCustomer(p.Context, idArg(p.Args))
					if err != nil || c == nil {
						return nil, notFoundAsNull(err)
					}
					return c, nil
				},
			},
			"product": &graphql.Field{
				Type: t.product,
				Args: idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					prod, err := r.Products.GetProduct(p.Context, idArg(p.Args))
					if err != nil || prod == nil {
						return nil, notFoundAsNull(err)
					}
					return prod, nil
				},
			},
			"order": &graphql.Field{
				Type: t.order,
				Args: idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o, err := r.Orders.GetOrder(p.Context, idArg(p.Args))
					if err != nil || o == nil {
						return nil, notFoundAsNull(err)
					}
					return o, nil
				},
			},
			"allCustomers": &graphql.Field{
				Type:        graphql.NewList(t.customer),
				Description: "List all customers with optional filtering and ordering",
				Args:        listArgs(filterInput("CustomerFilter", repository.CustomerFilters)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := r.Customers.ListCustomers(p.Context, filterArg(p.Args), orderByArg(p.Args))
					if err != nil {
						return nil, err
					}
					return customerRefs(list), nil
				},
			},
			"allProducts": &graphql.Field{
				Type:        graphql.NewList(t.product),
				Description: "List all products with optional filtering and ordering",
				Args:        listArgs(filterInput("ProductFilter", repository.ProductFilters)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := r.Products.ListProducts(p.Context, filterArg(p.Args), orderByArg(p.Args))
					if err != nil {
						return nil, err
					}
					return productRefs(list), nil
				},
			},
			"allOrders": &graphql.Field{
				Type:        graphql.NewList(t.order),
				Description: "List all orders with optional filtering and ordering",
				Args:        listArgs(filterInput("OrderFilter", repository.OrderFilters)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := r.Orders.ListOrders(p.Context, filterArg(p.Args), orderByArg(p.Args))
					if err != nil {
						return nil, err
					}
					return orderRefs(list), nil
				},
			},
		},
	})
}

func idArg(args map[string]interface{}) string {
	id, _ := args["id"].(string)
	return id
}

// notFoundAsNull turns a lookup miss into a null field instead of an error.
func notFoundAsNull(err error) error {
	if err == nil || apperrors.Is(err, apperrors.KindNotFound) {
		return nil
	}
	return err
}
