// Package graphql exposes the read-only crop catalogue as a GraphQL schema.
package graphql

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/repositories"
	gql "github.com/krishi360/krishi/pkg/graphql"
)

const maxLimit = 100

// Catalog is the subset of the crop service the schema reads from.
type Catalog interface {
	Catalog(ctx context.Context, f repositories.CatalogFilter) ([]models.Crop, error)
	Detail(ctx context.Context, cropID uint) (models.Crop, error)
}

var farmerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Farmer",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":     &graphql.Field{Type: graphql.String},
		"location": &graphql.Field{Type: graphql.String},
	},
})

var cropType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Crop",
	Fields: graphql.Fields{
		"id":                 &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":               &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"variety":            &graphql.Field{Type: graphql.String},
		"description":        &graphql.Field{Type: graphql.String},
		"price_per_unit":     &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"unit":               &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity_available": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"harvest_date":       &graphql.Field{Type: graphql.String},
		"location":           &graphql.Field{Type: graphql.String},
		"is_organic":         &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"farmer":             &graphql.Field{Type: farmerType},
	},
})

// NewSchema builds the catalogue schema:
//
//	crops(search, location, organic, limit): [Crop!]!
//	crop(id): Crop
func NewSchema(catalog Catalog) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"crops": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(cropType))),
				Args: graphql.FieldConfigArgument{
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"location": &graphql.ArgumentConfig{Type: graphql.String},
					"organic":  &graphql.ArgumentConfig{Type: graphql.Boolean},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					f := repositories.CatalogFilter{}
					f.Search, _ = p.Args["search"].(string)
					f.Location, _ = p.Args["location"].(string)
					if organic, ok := p.Args["organic"].(bool); ok {
						f.Organic = &organic
					}
					f.Limit, _ = p.Args["limit"].(int)
					if f.Limit <= 0 || f.Limit > maxLimit {
						f.Limit = maxLimit
					}

					crops, err := catalog.Catalog(p.Context, f)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, len(crops))
					for i, c := range crops {
						out[i] = cropView(c)
					}
					return out, nil
				},
			},
			"crop": &graphql.Field{
				Type: cropType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					c, err := catalog.Detail(p.Context, uint(id))
					if errorx.IsNotFound(err) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return cropView(c), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

func cropView(c models.Crop) map[string]any {
	v := map[string]any{
		"id":                 int(c.ID),
		"name":               c.Name,
		"variety":            c.Variety,
		"description":        c.Description,
		"price_per_unit":     c.PricePerUnit,
		"unit":               c.Unit,
		"quantity_available": c.QuantityAvailable,
		"location":           c.Location,
		"is_organic":         c.IsOrganic,
	}
	if c.HarvestDate != nil {
		v["harvest_date"] = c.HarvestDate.Format("2006-01-02")
	}
	if c.Farmer != nil {
		v["farmer"] = map[string]any{
			"id":       int(c.Farmer.ID),
			"name":     c.Farmer.FullName(),
			"location": c.Farmer.Address,
		}
	}
	return v
}
