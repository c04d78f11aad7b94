package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontlabs/storefront-backend/pkg/db/dbtest"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

func TestReviewRoutinesMatchFallbacks(t *testing.T) {
	client := dbtest.OpenPostgres(t)
	conn := client.DB()
	repo := NewRepository(conn)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	dbtest.SeedUser(t, conn, "buyer-1", dbtest.RoleBuyer)
	dbtest.SeedUser(t, conn, "buyer-2", dbtest.RoleBuyer)
	dbtest.SeedUser(t, conn, "seller-1", dbtest.RoleSeller)
	dbtest.SeedProduct(t, conn, "seller-1", "BC1", "Widget", "Red", "10.00")
	dbtest.SeedProduct(t, conn, "seller-1", "BC2", "Anvil", "Std", "99.00")
	dbtest.SeedVariation(t, conn, "BC1", "Blue", "12.00", 5)
	require.NoError(t, conn.Create(&models.Image{BarCode: "BC1", ImageURL: "https://cdn.example.com/w.png"}).Error)
	dbtest.SeedOrder(t, conn, "o-1", "buyer-1", "Delivered", base,
		dbtest.Item{ID: "i-1", BarCode: "BC1", Variation: "Red", Quantity: 1, Price: "10.00"},
		dbtest.Item{ID: "i-2", BarCode: "BC1", Variation: "Blue", Quantity: 1, Price: "12.00"},
		dbtest.Item{ID: "i-3", BarCode: "BC2", Variation: "Std", Quantity: 1, Price: "99.00"})
	dbtest.SeedOrder(t, conn, "o-2", "buyer-2", "Completed", base.Add(time.Hour),
		dbtest.Item{ID: "i-4", BarCode: "BC1", Variation: "Red", Quantity: 1, Price: "10.00"})
	dbtest.SeedReview(t, conn, "r-1", "buyer-1", "o-1", "i-1", 2, base.Add(2*time.Hour))
	dbtest.SeedReview(t, conn, "r-2", "buyer-1", "o-1", "i-2", 5, base.Add(3*time.Hour))
	dbtest.SeedReview(t, conn, "r-3", "buyer-2", "o-2", "i-4", 5, base.Add(3*time.Hour))
	dbtest.SeedReaction(t, conn, "r-1", "buyer-2", "helpful")
	dbtest.SeedReaction(t, conn, "r-2", "buyer-2", "like")

	four, five := 4, 5
	for _, sort := range []enums.ReviewSort{enums.ReviewSortNewest, enums.ReviewSortOldest, enums.ReviewSortRatingDesc, enums.ReviewSortRatingAsc, enums.ReviewSortHelpful} {
		for _, rating := range []*int{nil, &four, &five} {
			f := ListFilter{BarCode: "BC1", Rating: rating, Sort: sort}
			primary, err := repo.ListViaRoutine(ctx, f)
			require.NoError(t, err)
			fallback, err := repo.ListFallback(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, normalizeReviews(primary), normalizeReviews(fallback), "sort %s rating %v", sort, rating)
		}
	}

	for _, user := range []string{"buyer-1", "buyer-2", "nobody"} {
		primary, err := repo.PurchasedViaRoutine(ctx, user)
		require.NoError(t, err)
		fallback, err := repo.PurchasedFallback(ctx, user)
		require.NoError(t, err)
		require.Len(t, fallback, len(primary))
		for i := range primary {
			assert.Equal(t, primary[i].OrderItemID, fallback[i].OrderItemID)
			assert.Equal(t, primary[i].Price.String(), fallback[i].Price.String())
			assert.Equal(t, primary[i].ProductImage, fallback[i].ProductImage)
		}
	}

	simplePrimary, err := repo.ProductsSimpleViaRoutine(ctx)
	require.NoError(t, err)
	simpleFallback, err := repo.ProductsSimpleFallback(ctx)
	require.NoError(t, err)
	assert.Equal(t, simplePrimary, simpleFallback)

	require.NoError(t, repo.UpsertReactionViaRoutine(ctx, "r-3", enums.ReactionHelpful, "buyer-1"))
	require.NoError(t, repo.UpsertReactionViaRoutine(ctx, "r-3", enums.ReactionLove, "buyer-1"))
	require.NoError(t, repo.UpsertReactionFallback(ctx, "r-3", enums.ReactionLove, "seller-1", time.Now()))
	require.NoError(t, repo.UpsertReactionFallback(ctx, "r-3", enums.ReactionHelpful, "seller-1", time.Now()))
	summary, err := repo.Summary(ctx, "r-3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.HelpfulCount)
}

func normalizeReviews(rows []ProductReview) []ProductReview {
	for i := range rows {
		rows[i].CreatedAt = rows[i].CreatedAt.UTC()
	}
	return rows
}
