package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/globalid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
)

// objectTypes holds the output types of the schema.
type objectTypes struct {
	customer  *graphql.Object
	product   *graphql.Object
	orderItem *graphql.Object
	order     *graphql.Object
}

func newObjectTypes() *objectTypes {
	t := &objectTypes{}

	t.customer = graphql.NewObject(graphql.ObjectConfig{
		Name: globalid.CustomerType,
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return globalid.Encode(globalid.CustomerType, customerOf(p.Source).ID), nil
				},
			},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"phone":     &graphql.Field{Type: graphql.String},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	t.product = graphql.NewObject(graphql.ObjectConfig{
		Name: globalid.ProductType,
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return globalid.Encode(globalid.ProductType, productOf(p.Source).ID), nil
				},
			},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.String},
			"price":       &graphql.Field{Type: graphql.NewNonNull(Decimal)},
			"stock":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"inStock": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return productOf(p.Source).InStock(), nil
				},
			},
			"lowStock": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return productOf(p.Source).LowStock(), nil
				},
			},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	t.orderItem = graphql.NewObject(graphql.ObjectConfig{
		Name: globalid.OrderItemType,
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return globalid.Encode(globalid.OrderItemType, orderItemOf(p.Source).ID), nil
				},
			},
			"product": &graphql.Field{
				Type: t.product,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return &orderItemOf(p.Source).Product, nil
				},
			},
			"quantity":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"priceAtPurchase": &graphql.Field{Type: graphql.NewNonNull(Decimal)},
			"subtotal": &graphql.Field{
				Type: graphql.NewNonNull(Decimal),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orderItemOf(p.Source).Subtotal(), nil
				},
			},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	t.order = graphql.NewObject(graphql.ObjectConfig{
		Name: globalid.OrderType,
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return globalid.Encode(globalid.OrderType, orderOf(p.Source).ID), nil
				},
			},
			"customer": &graphql.Field{
				Type: t.customer,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return &orderOf(p.Source).Customer, nil
				},
			},
			"status": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(orderOf(p.Source).Status), nil
				},
			},
			"totalAmount": &graphql.Field{Type: graphql.NewNonNull(Decimal)},
			"orderDate":   &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"items": &graphql.Field{
				Type: graphql.NewList(t.orderItem),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items := orderOf(p.Source).Items
					out := make([]*models.OrderItem, len(items))
					for i := range items {
						out[i] = &items[i]
					}
					return out, nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(t.product),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items := orderOf(p.Source).Items
					out := make([]*models.Product, len(items))
					for i := range items {
						out[i] = &items[i].Product
					}
					return out, nil
				},
			},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	return t
}

func customerOf(src interface{}) *models.Customer {
	switch v := src.(type) {
	case *models.Customer:
		return v
	case models.Customer:
		return &v
	}
	return &models.Customer{}
}

func productOf(src interface{}) *models.Product {
	switch v := src.(type) {
	case *models.Product:
		return v
	case models.Product:
		return &v
	}
	return &models.Product{}
}

func orderItemOf(src interface{}) *models.OrderItem {
	switch v := src.(type) {
	case *models.OrderItem:
		return v
	case models.OrderItem:
		return &v
	}
	return &models.OrderItem{}
}

func orderOf(src interface{}) *models.Order {
	switch v := src.(type) {
	case *models.Order:
		return v
	case models.Order:
		return &v
	}
	return &models.Order{}
}

func customerRefs(in []models.Customer) []*models.Customer {
	out := make([]*models.Customer, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func productRefs(in []models.Product) []*models.Product {
	out := make([]*models.Product, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func orderRefs(in []models.Order) []*models.Order {
	out := make([]*models.Order, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}
