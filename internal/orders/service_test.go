package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/internal/users"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/db/dbtest"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/ids"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/storedproc"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc  Service
	conn *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()

	svc, err := NewService(ServiceParams{
		DB:     client,
		Repo:   NewRepository(conn),
		Roles:  users.NewRepository(conn),
		Runner: storedproc.NewRunner(config.StoredProcConfig{}, logger.Nop(), nil),
		IDs:    &ids.Sequence{Prefix: "ord"},
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	dbtest.SeedUser(t, conn, "buyer-1", dbtest.RoleBuyer)
	dbtest.SeedUser(t, conn, "seller-1", dbtest.RoleSeller)
	dbtest.SeedProduct(t, conn, "seller-1", "BC1", "Widget", "Red", "10.00")
	return fixture{svc: svc, conn: conn}
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		BuyerID:       "buyer-1",
		Address:       "42 Elm St",
		Quantity:      types.NewFlexInt(2),
		Price:         price("10.00"),
		BarCode:       "BC1",
		VariationName: "Red",
	}
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

func TestCreateOrderComputesTotalFromItems(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, "ord-2", order.OrderItemID)
	assert.Equal(t, "20.00", order.Total.String())
	assert.Equal(t, "10.00", order.Price.String())
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, "buyer-1", order.BuyerID)
	assert.Equal(t, "BC1", order.BarCode)
	assert.Equal(t, "Red", order.VariationName)
	assert.Equal(t, 2, order.Quantity)
	assert.True(t, order.CreatedAt.Equal(fixedNow))

	assert.Equal(t, int64(1), countRows(t, f.conn, &models.Order{}))
	assert.Equal(t, int64(1), countRows(t, f.conn, &models.OrderItem{}))
}

func TestCreateOrderKeepsExplicitStatus(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Status = "Shipped"

	order, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Shipped", order.Status)
}

func TestCreateOrderRollsBackHeaderWhenLinkageMissing(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.VariationName = "  "

	_, err := f.svc.CreateOrder(context.Background(), in)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeLinkage))
	assert.Equal(t, map[string]any{"missing": []string{"variationname"}}, pkgerrors.As(err).Details())

	assert.Zero(t, countRows(t, f.conn, &models.Order{}))
	assert.Zero(t, countRows(t, f.conn, &models.OrderItem{}))
}

func TestCreateOrderRollsBackHeaderWhenItemInsertFails(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.VariationName = "Blue"

	_, err := f.svc.CreateOrder(context.Background(), in)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Zero(t, countRows(t, f.conn, &models.Order{}))
	assert.Zero(t, countRows(t, f.conn, &models.OrderItem{}))
}

func TestCreateOrderRejectsNonBuyers(t *testing.T) {
	f := newFixture(t)
	dbtest.SeedUser(t, f.conn, "ship-1", dbtest.RoleShipper)
	dbtest.SeedUser(t, f.conn, "admin-1", dbtest.RoleAdmin)

	in := validInput()
	in.BuyerID = "seller-1"
	_, err := f.svc.CreateOrder(context.Background(), in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	in.BuyerID = "ship-1"
	_, err = f.svc.CreateOrder(context.Background(), in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	in.BuyerID = "admin-1"
	_, err = f.svc.CreateOrder(context.Background(), in)
	assert.NoError(t, err)

	in.BuyerID = ""
	_, err = f.svc.CreateOrder(context.Background(), in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestCreateOrderValidatesInput(t *testing.T) {
	f := newFixture(t)

	cases := map[string]func(*CreateOrderInput){
		"missing address":   func(in *CreateOrderInput) { in.Address = "" },
		"missing quantity":  func(in *CreateOrderInput) { in.Quantity = types.FlexInt{} },
		"garbage quantity":  func(in *CreateOrderInput) { in.Quantity = types.FlexInt{Set: true} },
		"zero quantity":     func(in *CreateOrderInput) { in.Quantity = types.NewFlexInt(0) },
		"missing price":     func(in *CreateOrderInput) { in.Price = nil },
		"negative price":    func(in *CreateOrderInput) { in.Price = price("-1") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := f.svc.CreateOrder(context.Background(), in)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
	assert.Zero(t, countRows(t, f.conn, &models.Order{}))
}

func TestOrderDetailsFallsBackAndFilters(t *testing.T) {
	f := newFixture(t)
	dbtest.SeedVariation(t, f.conn, "BC1", "Blue", "5.00", 10)
	dbtest.SeedOrder(t, f.conn, "o-1", "buyer-1", "Pending", fixedNow.Add(-2*time.Hour),
		dbtest.Item{ID: "i-1", BarCode: "BC1", Variation: "Red", Quantity: 1, Price: "10.00"})
	dbtest.SeedOrder(t, f.conn, "o-2", "buyer-1", "Delivered", fixedNow.Add(-time.Hour),
		dbtest.Item{ID: "i-2", BarCode: "BC1", Variation: "Red", Quantity: 2, Price: "10.00"},
		dbtest.Item{ID: "i-3", BarCode: "BC1", Variation: "Blue", Quantity: 1, Price: "5.00"})
	dbtest.SeedOrder(t, f.conn, "o-3", "buyer-1", "Pending", fixedNow)

	ctx := context.Background()

	all, err := f.svc.OrderDetails(ctx, DetailsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"o-3", "o-2", "o-1"}, summaryIDs(all))
	assert.Equal(t, "User buyer-1", all[1].Buyer)
	assert.Equal(t, int64(2), all[1].ItemCount)
	assert.Equal(t, "25.00", all[1].Total.String())
	assert.Equal(t, "0.00", all[0].Total.String())

	pending, err := f.svc.OrderDetails(ctx, DetailsFilter{Status: "Pending"})
	require.NoError(t, err)
	assert.Equal(t, []string{"o-3", "o-1"}, summaryIDs(pending))

	multi, err := f.svc.OrderDetails(ctx, DetailsFilter{MinItems: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"o-2"}, summaryIDs(multi))

	_, err = f.svc.OrderDetails(ctx, DetailsFilter{MinItems: -1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestTopSellingCountsOnlySales(t *testing.T) {
	f := newFixture(t)
	dbtest.SeedUser(t, f.conn, "seller-2", dbtest.RoleSeller)
	dbtest.SeedProduct(t, f.conn, "seller-2", "BC2", "Gadget", "Std", "3.00")
	dbtest.SeedProduct(t, f.conn, "seller-2", "BC0", "Gizmo", "Std", "1.00")

	dbtest.SeedOrder(t, f.conn, "o-1", "buyer-1", "Delivered", fixedNow,
		dbtest.Item{ID: "i-1", BarCode: "BC1", Variation: "Red", Quantity: 3, Price: "10.00"},
		dbtest.Item{ID: "i-2", BarCode: "BC2", Variation: "Std", Quantity: 5, Price: "3.00"})
	dbtest.SeedOrder(t, f.conn, "o-2", "buyer-1", "Completed", fixedNow,
		dbtest.Item{ID: "i-3", BarCode: "BC1", Variation: "Red", Quantity: 2, Price: "10.00"},
		dbtest.Item{ID: "i-4", BarCode: "BC0", Variation: "Std", Quantity: 1, Price: "1.00"})
	dbtest.SeedOrder(t, f.conn, "o-3", "buyer-1", "Pending", fixedNow,
		dbtest.Item{ID: "i-5", BarCode: "BC0", Variation: "Std", Quantity: 50, Price: "1.00"})

	ctx := context.Background()

	rows, err := f.svc.TopSellingProducts(ctx, TopSellingFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// BC1 and BC2 tie on 5; bar code breaks the tie.
	assert.Equal(t, TopSellingProduct{BarCode: "BC1", Name: "Widget", TotalQuantitySold: 5}, rows[0])
	assert.Equal(t, TopSellingProduct{BarCode: "BC2", Name: "Gadget", TotalQuantitySold: 5}, rows[1])
	assert.Equal(t, TopSellingProduct{BarCode: "BC0", Name: "Gizmo", TotalQuantitySold: 1}, rows[2])

	bySeller, err := f.svc.TopSellingProducts(ctx, TopSellingFilter{SellerID: "seller-2", MinQuantity: 2})
	require.NoError(t, err)
	assert.Equal(t, []TopSellingProduct{{BarCode: "BC2", Name: "Gadget", TotalQuantitySold: 5}}, bySeller)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func summaryIDs(rows []OrderSummary) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}
