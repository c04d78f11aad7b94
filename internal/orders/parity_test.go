package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontlabs/storefront-backend/pkg/db/dbtest"
)

// The report routines and their inline fallbacks must return the same rows for
// the same filters. Runs only against a real Postgres.
func TestReportRoutinesMatchFallbacks(t *testing.T) {
	client := dbtest.OpenPostgres(t)
	conn := client.DB()
	repo := NewRepository(conn)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	dbtest.SeedUser(t, conn, "buyer-1", dbtest.RoleBuyer)
	dbtest.SeedUser(t, conn, "seller-1", dbtest.RoleSeller)
	dbtest.SeedUser(t, conn, "seller-2", dbtest.RoleSeller)
	dbtest.SeedProduct(t, conn, "seller-1", "BC1", "Widget", "Red", "10.00")
	dbtest.SeedProduct(t, conn, "seller-2", "BC2", "Gadget", "Std", "2.50")
	dbtest.SeedOrder(t, conn, "o-1", "buyer-1", "Delivered", base,
		dbtest.Item{ID: "i-1", BarCode: "BC1", Variation: "Red", Quantity: 2, Price: "10.00"},
		dbtest.Item{ID: "i-2", BarCode: "BC2", Variation: "Std", Quantity: 4, Price: "2.50"})
	dbtest.SeedOrder(t, conn, "o-2", "buyer-1", "Pending", base.Add(time.Hour),
		dbtest.Item{ID: "i-3", BarCode: "BC2", Variation: "Std", Quantity: 1, Price: "2.50"})
	dbtest.SeedOrder(t, conn, "o-3", "buyer-1", "Completed", base.Add(2*time.Hour),
		dbtest.Item{ID: "i-4", BarCode: "BC2", Variation: "Std", Quantity: 1, Price: "2.50"})
	dbtest.SeedOrder(t, conn, "o-4", "buyer-1", "Pending", base.Add(3*time.Hour))

	for _, f := range []DetailsFilter{{}, {Status: "Pending"}, {MinItems: 1}, {MinItems: 2}, {Status: "Delivered", MinItems: 3}} {
		primary, err := repo.OrderDetailsViaRoutine(ctx, f)
		require.NoError(t, err)
		fallback, err := repo.OrderDetailsFallback(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, flattenSummaries(primary), flattenSummaries(fallback), "filter %+v", f)
	}

	for _, f := range []TopSellingFilter{{}, {MinQuantity: 3}, {SellerID: "seller-1"}, {SellerID: "nobody"}} {
		primary, err := repo.TopSellingViaRoutine(ctx, f)
		require.NoError(t, err)
		fallback, err := repo.TopSellingFallback(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, primary, fallback, "filter %+v", f)
	}
}

func flattenSummaries(rows []OrderSummary) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.ID, r.Status, r.BuyerID, r.Buyer, r.Address, r.ItemCount, r.Total.String(), r.CreatedAt.UTC()})
	}
	return out
}
