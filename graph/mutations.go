package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/apperrors"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	customerInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CustomerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	bulkCustomerInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "BulkCustomerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"customers": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(customerInput))},
		},
	})

	productInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ProductInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"price":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(Decimal)},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"stock":       &graphql.InputObjectFieldConfig{Type: graphql.Int},
		},
	})

	orderItemInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderItemInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"productId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"quantity":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	orderInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"customerId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"items":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(orderItemInput))},
		},
	})
)

// payload builds the uniform mutation result: the entity field plus
// success and errors.
func payload(name, entityField string, entityType graphql.Output, extra graphql.Fields) *graphql.Object {
	fields := graphql.Fields{
		entityField: &graphql.Field{Type: entityType},
		"success":   &graphql.Field{Type: graphql.Boolean},
		"errors":    &graphql.Field{Type: graphql.NewList(graphql.String)},
	}
	for k, v := range extra {
		fields[k] = v
	}
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}

func succeeded(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{field: value, "success": true, "errors": nil}
}

func failed(field string, err error) map[string]interface{} {
	return map[string]interface{}{field: nil, "success": false, "errors": apperrors.Messages(err)}
}

func (r *Resolver) mutationType(t *objectTypes) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: payload("CreateCustomer", "customer", t.customer, nil),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(customerInput)},
				},
				Resolve: r.createCustomer,
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: payload("BulkCreateCustomers", "customers", graphql.NewList(t.customer), nil),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(bulkCustomerInput)},
				},
				Resolve: r.bulkCreateCustomers,
			},
			"createProduct": &graphql.Field{
				Type: payload("CreateProduct", "product", t.product, nil),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
				},
				Resolve: r.createProduct,
			},
			"createOrder": &graphql.Field{
				Type: payload("CreateOrder", "order", t.order, nil),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderInput)},
				},
				Resolve: r.createOrder,
			},
			"updateLowStockProducts": &graphql.Field{
				Type: payload("UpdateLowStockProducts", "updatedProducts", graphql.NewList(t.product), graphql.Fields{
					"message": &graphql.Field{Type: graphql.String},
				}),
				Args: graphql.FieldConfigArgument{
					"restockAmount": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.updateLowStockProducts,
			},
		},
	})
}

func (r *Resolver) createCustomer(p graphql.ResolveParams) (interface{}, error) {
	in := customerInputFrom(p.Args["input"])
	c, err := r.Customers.CreateCustomer(p.Context, in)
	if err != nil {
		return failed("customer", err), nil
	}
	return succeeded("customer", c), nil
}

func (r *Resolver) bulkCreateCustomers(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})
	raw, _ := input["customers"].([]interface{})
	inputs := make([]services.CustomerInput, len(raw))
	for i, v := range raw {
		inputs[i] = customerInputFrom(v)
	}

	res, err := r.Customers.BulkCreateCustomers(p.Context, inputs)
	if err != nil {
		return failed("customers", err), nil
	}
	if len(res.Customers) == 0 {
		return map[string]interface{}{"customers": nil, "success": false, "errors": res.Errors}, nil
	}
	var errs interface{}
	if len(res.Errors) > 0 {
		errs = res.Errors
	}
	return map[string]interface{}{
		"customers": customerRefs(res.Customers),
		"success":   true,
		"errors":    errs,
	}, nil
}

func (r *Resolver) createProduct(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})
	in := services.ProductInput{
		Name:        stringField(input, "name"),
		Description: stringField(input, "description"),
	}
	if price, ok := input["price"].(decimal.Decimal); ok {
		in.Price = price
	}
	if stock, ok := input["stock"].(int); ok {
		in.Stock = stock
	}

	prod, err := r.Products.CreateProduct(p.Context, in)
	if err != nil {
		return failed("product", err), nil
	}
	return succeeded("product", prod), nil
}

func (r *Resolver) createOrder(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})
	rawItems, _ := input["items"].([]interface{})
	in := services.PlaceOrderInput{CustomerRef: stringField(input, "customerId")}
	for _, v := range rawItems {
		item, _ := v.(map[string]interface{})
		qty, _ := item["quantity"].(int)
		in.Items = append(in.Items, services.LineItem{ProductRef: stringField(item, "productId"), Quantity: qty})
	}

	order, err := r.Orders.PlaceOrder(p.Context, in)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			r.Logger.Error("Order placement failed", zap.Error(err))
		}
		return failed("order", err), nil
	}
	return succeeded("order", order), nil
}

func (r *Resolver) updateLowStockProducts(p graphql.ResolveParams) (interface{}, error) {
	amount, _ := p.Args["restockAmount"].(int)
	res, err := r.Products.RestockLowStock(p.Context, amount)
	if err != nil {
		out := failed("updatedProducts", err)
		out["message"] = apperrors.Messages(err)[0]
		return out, nil
	}
	out := succeeded("updatedProducts", productRefs(res.Products))
	out["message"] = res.Message
	return out, nil
}

func customerInputFrom(v interface{}) services.CustomerInput {
	m, _ := v.(map[string]interface{})
	return services.CustomerInput{
		Name:  stringField(m, "name"),
		Email: stringField(m, "email"),
		Phone: stringField(m, "phone"),
	}
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
