package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	// Position embeds GeoPoint, so its coordinates are resolved explicitly.
	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"name": &graphql.Field{Type: graphql.String},
			"lat": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Position).Lat, nil
				},
			},
			"lon": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Position).Lon, nil
				},
			},
		},
	})

	geoAreaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoArea",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
			"crosses_antimeridian": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.GeoArea).CrossesAntimeridian(), nil
				},
			},
		},
	})

	distanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DistanceResult",
		Fields: graphql.Fields{
			"from":       &graphql.Field{Type: positionType},
			"to":         &graphql.Field{Type: positionType},
			"miles":      &graphql.Field{Type: graphql.Float},
			"kilometers": &graphql.Field{Type: graphql.Float},
		},
	})

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"state_code":  &graphql.Field{Type: graphql.String},
			"state_name":  &graphql.Field{Type: graphql.String},
			"county_name": &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Miles from the query origin",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if d := p.Source.(domain.City).Distance; d != nil {
						return *d, nil
					}
					return nil, nil
				},
			},
		},
	})

	pointArgs := func(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
		args := graphql.FieldConfigArgument{
			"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	pointArg := func(p graphql.ResolveParams) (domain.Position, error) {
		lat, lon := p.Args["lat"].(float64), p.Args["lon"].(float64)
		if err := checkCoordinate("lat", "lon", lat, lon); err != nil {
			return domain.Position{}, err
		}
		return domain.NewPosition("", lat, lon), nil
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"distance": &graphql.Field{
				Type:        distanceType,
				Description: "Great-circle distance between two points",
				Args: graphql.FieldConfigArgument{
					"from_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"from_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"to_lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"to_lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from := domain.NewPosition("", p.Args["from_lat"].(float64), p.Args["from_lon"].(float64))
					to := domain.NewPosition("", p.Args["to_lat"].(float64), p.Args["to_lon"].(float64))
					if err := checkCoordinate("from_lat", "from_lon", from.Lat, from.Lon); err != nil {
						return nil, err
					}
					if err := checkCoordinate("to_lat", "to_lon", to.Lat, to.Lon); err != nil {
						return nil, err
					}
					return deps.Cities.Distance(from, to), nil
				},
			},
			"bounds": &graphql.Field{
				Type:        geoAreaType,
				Description: "Bounding rectangle of a radius in miles around a point",
				Args: pointArgs(graphql.FieldConfigArgument{
					"radius": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					center, err := pointArg(p)
					if err != nil {
						return nil, err
					}
					radius := p.Args["radius"].(float64)
					if radius > deps.maxRadiusMiles() {
						return nil, fmt.Errorf("radius must not exceed %g miles", deps.maxRadiusMiles())
					}
					return deps.Cities.Bounds(center, radius)
				},
			},
			"citiesNearby": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "Cities within a radius in miles, nearest first",
				Args: pointArgs(graphql.FieldConfigArgument{
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: deps.defaultRadiusMiles()},
					"unit":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "mi"},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: deps.defaultLimit()},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin, err := pointArg(p)
					if err != nil {
						return nil, err
					}
					unit, _ := p.Args["unit"].(string)
					radius, err := toMiles(p.Args["radius"].(float64), unit)
					if err != nil {
						return nil, err
					}
					if err := deps.checkRadius(radius); err != nil {
						return nil, err
					}
					return deps.Cities.FindNearby(p.Context, origin, radius, p.Args["limit"].(int))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
