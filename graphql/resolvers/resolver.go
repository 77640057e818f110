package resolvers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gql "github.com/graph-gophers/graphql-go"
	"gorm.io/gorm"

	"fbadash/config"
	"fbadash/graphql"
	gqlmodels "fbadash/graphql/models"
	gqlregistry "fbadash/graphql/registry"
	catalogRepo "fbadash/model/repository/catalog"
	packingRepo "fbadash/model/repository/packing"
	"fbadash/service/packing"
	"fbadash/service/shipment"
)

func init() {
	gqlregistry.RegisterQueryResolverFactory(func(db interface{}) interface{} {
		return NewQueryResolver(db.(*gorm.DB))
	})
}

// QueryResolver is the single resolver for all Query fields. It is read-only;
// mutations go through the REST API.
type QueryResolver struct {
	db      *gorm.DB
	packing *packingRepo.PackingRepository
	catalog *catalogRepo.CatalogRepository
	weights *packing.WeightResolver
}

func NewQueryResolver(db *gorm.DB) *QueryResolver {
	catalog := catalogRepo.NewCatalogRepository(db)
	return &QueryResolver{
		db:      db,
		packing: packingRepo.NewPackingRepository(db),
		catalog: catalog,
		weights: packing.NewWeightResolver(catalog, nil, config.RedisClient),
	}
}

func (r *QueryResolver) userID(ctx context.Context) string {
	if id := graphql.UserIDFromContext(ctx); id != "" {
		return id
	}
	return config.LoadAppConfig().DefaultUserID
}

func (r *QueryResolver) Shipments(ctx context.Context) ([]*gqlmodels.ShipmentHeader, error) {
	list, err := r.packing.ListShipments(ctx, r.userID(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.ShipmentHeader, 0, len(list))
	for _, s := range list {
		out = append(out, &gqlmodels.ShipmentHeader{
			ID:          gql.ID(s.ID),
			Name:        s.Name,
			TotalAsins:  int32(s.TotalASINs),
			TotalUnits:  int32(s.TotalUnits),
			TotalWeight: s.TotalWeight,
			CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// Shipment returns nil for an unknown id.
func (r *QueryResolver) Shipment(ctx context.Context, args struct{ ID gql.ID }) (*gqlmodels.Shipment, error) {
	g, err := packing.LoadGraph(ctx, r.packing, r.weights, r.userID(ctx), string(args.ID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapShipment(g.Summary()), nil
}

func (r *QueryResolver) ExportValidation(ctx context.Context, args struct{ ID gql.ID }) (*gqlmodels.ExportValidation, error) {
	g, err := packing.LoadGraph(ctx, r.packing, r.weights, r.userID(ctx), string(args.ID))
	if err != nil {
		return nil, err
	}
	return mapValidation(shipment.ValidateShipmentForExport(g.Shipment)), nil
}

func (r *QueryResolver) Asins(ctx context.Context) ([]*gqlmodels.Asin, error) {
	list, err := r.catalog.ListASINs(ctx, r.userID(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Asin, 0, len(list))
	for _, a := range list {
		out = append(out, &gqlmodels.Asin{
			ID: gql.ID(a.ID), Code: a.Code, Fnsku: a.FNSKU, Title: a.Title,
			Weight: a.Weight, WeightUnit: a.WeightUnit, CostPrice: a.CostPrice, SellPrice: a.SellPrice,
		})
	}
	return out, nil
}

// Extension dispatches to registered custom resolvers.
func (r *QueryResolver) Extension(ctx context.Context, args struct {
	Name string
	Args *string
}) (*string, error) {
	m := make(map[string]interface{})
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	out, err := gqlregistry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, _ := json.Marshal(out)
	s := string(b)
	return &s, nil
}
