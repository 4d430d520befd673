// Package graphql exposes elements and run networks over GraphQL.
package graphql

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/traversal"
)

// Backend resolves elements and discovers networks.
type Backend interface {
	Element(id model.ElementID) (*model.Element, error)
	Discover(start model.ElementID) (*traversal.Result, error)
}

type parameter struct {
	Name  string
	Value string
}

var parameterType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Parameter",
	Fields: graphql.Fields{
		"name": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(parameter).Name, nil
			},
		},
		"value": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(parameter).Value, nil
			},
		},
	},
})

var elementType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Element",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return strconv.FormatUint(uint64(p.Source.(*model.Element).ID), 10), nil
			},
		},
		"category": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Element).Category, nil
			},
		},
		"name": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Element).Name, nil
			},
		},
		"connectors": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Element).Connectors, nil
			},
		},
		"parameters": &graphql.Field{
			Type: graphql.NewList(graphql.NewNonNull(parameterType)),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				el := p.Source.(*model.Element)
				out := make([]parameter, 0, len(el.Parameters))
				for name, value := range el.Parameters {
					out = append(out, parameter{Name: name, Value: value})
				}
				sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
				return out, nil
			},
		},
	},
})

// GenerateSchema builds the schema over backend.
func GenerateSchema(backend Backend) (graphql.Schema, error) {
	elements := func(ids []model.ElementID) ([]*model.Element, error) {
		out := make([]*model.Element, 0, len(ids))
		for _, id := range ids {
			el, err := backend.Element(id)
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		}
		return out, nil
	}

	networkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Network",
		Fields: graphql.Fields{
			"start": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return strconv.FormatUint(uint64(p.Source.(*traversal.Result).Start()), 10), nil
				},
			},
			"runs": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(elementType)),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return elements(p.Source.(*traversal.Result).RunIDs())
				},
			},
			"fittings": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(elementType)),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return elements(p.Source.(*traversal.Result).FittingIDs())
				},
			},
			"junctionBoxes": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(elementType)),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return elements(p.Source.(*traversal.Result).ConnectedJboxIDs())
				},
			},
			"skipped": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(graphql.ID)),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					skipped := p.Source.(*traversal.Result).Skipped()
					out := make([]string, len(skipped))
					for i, s := range skipped {
						out[i] = strconv.FormatUint(uint64(s.ID), 10)
					}
					return out, nil
				},
			},
			"visited": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return len(p.Source.(*traversal.Result).Visited()), nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"element": &graphql.Field{
				Type: elementType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := idArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					el, err := backend.Element(id)
					if model.IsNotFound(err) {
						return nil, nil
					}
					return el, err
				},
			},
			"network": &graphql.Field{
				Type: networkType,
				Args: graphql.FieldConfigArgument{
					"start": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					start, err := idArg(p.Args, "start")
					if err != nil {
						return nil, err
					}
					return backend.Discover(start)
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func idArg(args map[string]any, name string) (model.ElementID, error) {
	raw, _ := args[name].(string)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return model.ElementID(id), nil
}
