package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/repository"
)

// filterInput exposes every allow-listed filter of fs as a nullable field
// of one input object. Dates travel as strings so both RFC3339 and
// YYYY-MM-DD are accepted.
func filterInput(name string, fs *repository.FilterSet) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, in := range fs.Inputs() {
		fields[in.Name] = &graphql.InputObjectFieldConfig{Type: inputType(in.Kind)}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name,
		Fields: fields,
	})
}

func inputType(kind repository.ValueKind) graphql.Input {
	switch kind {
	case repository.DecimalValue:
		return Decimal
	case repository.IntValue:
		return graphql.Int
	case repository.BoolValue:
		return graphql.Boolean
	default:
		return graphql.String
	}
}

// listArgs are the arguments shared by the allX fields.
func listArgs(filter *graphql.InputObject) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"filter": &graphql.ArgumentConfig{Type: filter},
		"orderBy": &graphql.ArgumentConfig{
			Type:        graphql.NewList(graphql.String),
			Description: "Field names, prefixed with - for descending order.",
		},
	}
}

func filterArg(args map[string]interface{}) repository.Filter {
	raw, ok := args["filter"].(map[string]interface{})
	if !ok {
		return nil
	}
	return repository.Filter(raw)
}

func orderByArg(args map[string]interface{}) []string {
	raw, ok := args["orderBy"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
