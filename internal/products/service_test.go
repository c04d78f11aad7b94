package product

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/dbtest"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/ids"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

type fixture struct {
	svc     Service
	catalog Catalog
	conn    *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	repo := NewRepository(conn)

	svc, err := NewService(repo, client, &ids.Sequence{Prefix: "sku"})
	require.NoError(t, err)
	catalog, err := NewCatalog(repo)
	require.NoError(t, err)

	dbtest.SeedUser(t, conn, "seller-1", dbtest.RoleSeller)
	dbtest.SeedUser(t, conn, "seller-2", dbtest.RoleSeller)
	return fixture{svc: svc, catalog: catalog, conn: conn}
}

func strPtr(s string) *string { return &s }

func variation(name, price string, stock int) VariationInput {
	return VariationInput{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}

func TestCreateProductWithChildren(t *testing.T) {
	f := newFixture(t)
	made := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	product, err := f.svc.Create(context.Background(), "seller-1", CreateInput{
		Name:              " Widget ",
		ManufacturingDate: &made,
		Description:       strPtr("a widget"),
		Variations:        []VariationInput{variation("Red", "10", 4), variation("Blue", "12.5", 0)},
		Category:          strPtr("Tools"),
	})
	require.NoError(t, err)

	assert.Equal(t, "sku-1", product.BarCode)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, "seller-1", product.SellerID)
	require.NotNil(t, product.ManufacturingDate)
	assert.True(t, product.ManufacturingDate.Equal(made))
	assert.Nil(t, product.ExpiredDate)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Tools", *product.Category)
	assert.Equal(t, []string{}, product.Images)
	require.Len(t, product.Variations, 2)
	assert.Equal(t, "Blue", product.Variations[0].Name)
	assert.Equal(t, "12.50", product.Variations[0].Price.String())
	assert.Equal(t, 4, product.Variations[1].Stock)
}

func TestCreateProductValidationAndConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "seller-1", CreateInput{Name: " "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, "seller-1", CreateInput{Name: "x", Variations: []VariationInput{variation("A", "1", 1), variation("A", "2", 1)}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, "seller-1", CreateInput{Name: "x", Variations: []VariationInput{variation("A", "-1", 1)}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, "seller-1", CreateInput{BarCode: "BC1", Name: "x"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "seller-1", CreateInput{BarCode: "BC1", Name: "y"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestUpdateProductIsPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "seller-1", CreateInput{
		BarCode:     "BC1",
		Name:        "Widget",
		Description: strPtr("old"),
		Variations:  []VariationInput{variation("Red", "10", 4)},
		Category:    strPtr("Tools"),
	})
	require.NoError(t, err)

	product, err := f.svc.Update(ctx, "seller-1", "BC1", UpdateInput{Name: strPtr("Widget 2")})
	require.NoError(t, err)
	assert.Equal(t, "Widget 2", product.Name)
	assert.Equal(t, "old", *product.Description)
	assert.Len(t, product.Variations, 1)
	assert.Equal(t, "Tools", *product.Category)

	product, err = f.svc.Update(ctx, "seller-1", "BC1", UpdateInput{
		Description: types.Nullable[string]{Valid: true},
		Variations:  []VariationInput{variation("Green", "3", 1), variation("Black", "4", 2)},
		Category:    types.NullableOf("Garden"),
	})
	require.NoError(t, err)
	assert.Nil(t, product.Description)
	assert.Equal(t, []string{"Black", "Green"}, variationNames(product))
	assert.Equal(t, "Garden", *product.Category)

	product, err = f.svc.Update(ctx, "seller-1", "BC1", UpdateInput{Category: types.Nullable[string]{Valid: true}})
	require.NoError(t, err)
	assert.Nil(t, product.Category)

	var links int64
	require.NoError(t, f.conn.Model(&models.BelongsTo{}).Count(&links).Error)
	assert.Zero(t, links)
}

func TestUpdateDeleteRespectOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "seller-1", CreateInput{BarCode: "BC1", Name: "Widget"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "seller-2", "BC1", UpdateInput{Name: strPtr("stolen")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Update(ctx, "seller-2", "BC1", UpdateInput{Category: types.NullableOf("x")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.AddVariations(ctx, "seller-2", "BC1", []VariationInput{variation("Red", "1", 1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Get(ctx, "seller-2", "BC1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	assert.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, "seller-2", "BC1"), pkgerrors.CodeNotFound))
	require.NoError(t, f.svc.Delete(ctx, "seller-1", "BC1"))
	assert.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, "seller-1", "BC1"), pkgerrors.CodeNotFound))
}

func TestAddVariationsReplacesSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "seller-1", CreateInput{BarCode: "BC1", Name: "Widget", Variations: []VariationInput{variation("Red", "10", 1)}})
	require.NoError(t, err)

	product, err := f.svc.AddVariations(ctx, "seller-1", "BC1", []VariationInput{variation("Small", "5", 3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Small"}, variationNames(product))

	_, err = f.svc.AddVariations(ctx, "seller-1", "BC1", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mustCreate := func(in CreateInput) {
		_, err := f.svc.Create(ctx, "seller-1", in)
		require.NoError(t, err)
	}
	mustCreate(CreateInput{BarCode: "A1", Name: "Apple", Variations: []VariationInput{variation("S", "1", 0)}, Category: strPtr("Food")})
	mustCreate(CreateInput{BarCode: "B1", Name: "Banana", Variations: []VariationInput{variation("S", "5", 3), variation("L", "9", 0)}})
	mustCreate(CreateInput{BarCode: "C1", Name: "Cherry", Variations: []VariationInput{variation("S", "20", 2)}})
	_, err := f.svc.Create(ctx, "seller-2", CreateInput{BarCode: "Z1", Name: "Apple pie"})
	require.NoError(t, err)
	require.NoError(t, f.conn.Create(&models.Image{BarCode: "C1", ImageURL: "https://cdn.example.com/c.png"}).Error)

	list := func(filters ListFilters) []string {
		rows, err := f.svc.List(ctx, "seller-1", filters)
		require.NoError(t, err)
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.BarCode)
		}
		return out
	}
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	assert.Equal(t, []string{"C1", "B1", "A1"}, list(ListFilters{}))
	assert.Equal(t, []string{"A1", "B1", "C1"}, list(ListFilters{OrderBy: "Name", Order: "asc"}))
	assert.Equal(t, []string{"C1", "B1", "A1"}, list(ListFilters{OrderBy: "password_hash; DROP TABLE users"}))
	assert.Equal(t, []string{"A1"}, list(ListFilters{Search: "APP"}))
	assert.Equal(t, []string{"B1"}, list(ListFilters{MinPrice: price("4"), MaxPrice: price("10")}))
	assert.Equal(t, []string{"C1", "B1"}, list(ListFilters{Stock: StockIn}))
	assert.Equal(t, []string{"B1", "A1"}, list(ListFilters{Stock: StockOut}))
	assert.Equal(t, []string{"C1"}, list(ListFilters{HasImages: ImagesWith}))
	assert.Equal(t, []string{"B1", "A1"}, list(ListFilters{HasImages: ImagesWithout}))
	assert.Equal(t, []string{"A1"}, list(ListFilters{Category: "Food"}))
	assert.Equal(t, []string{"B1"}, list(ListFilters{Page: pagination.Params{Limit: 1, Offset: 1}}))

	rows, err := f.svc.List(ctx, "seller-1", ListFilters{HasImages: ImagesWith})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://cdn.example.com/c.png", *rows[0].ImageURL)

	_, err = f.svc.List(ctx, "seller-1", ListFilters{MinPrice: price("10"), MaxPrice: price("1")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "seller-1", CreateInput{BarCode: "A1", Name: "Apple", Variations: []VariationInput{variation("S", "3", 1), variation("L", "2.5", 1)}, Category: strPtr("Food")})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "seller-2", CreateInput{BarCode: "B1", Name: "Bolt", Category: strPtr("Hardware")})
	require.NoError(t, err)

	all, err := f.catalog.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Apple", all[0].ProductName)
	require.NotNil(t, all[0].Price)
	assert.Equal(t, "2.50", all[0].Price.String())
	assert.Nil(t, all[1].Price)

	found, err := f.catalog.SearchByName(ctx, "bol")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "B1", found[0].BarCode)

	empty, err := f.catalog.SearchByName(ctx, " ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	food, err := f.catalog.ByCategory(ctx, "Food")
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "A1", food[0].BarCode)

	categories, err := f.catalog.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Hardware"}, categories)

	details, err := f.catalog.Details(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "seller-2", details.SellerID)
	assert.Equal(t, []VariationDTO{}, details.Variations)

	_, err = f.catalog.Details(ctx, "nope")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func variationNames(p *ProductDTO) []string {
	out := make([]string, 0, len(p.Variations))
	for _, v := range p.Variations {
		out = append(out, v.Name)
	}
	return out
}
