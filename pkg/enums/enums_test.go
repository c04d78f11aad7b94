package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  Seller ")
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, role)

	_, err = ParseRole("unknown")
	assert.Error(t, err)
	assert.False(t, RoleUnknown.IsValid())
	assert.False(t, RoleAdmin.CanSelfRegister())
	assert.True(t, RoleShipper.CanSelfRegister())
}

func TestParseReactionType(t *testing.T) {
	for _, raw := range []string{"helpful", " LIKE ", "Unhelpful"} {
		_, err := ParseReactionType(raw)
		assert.NoError(t, err, raw)
	}
	_, err := ParseReactionType("meh")
	assert.Error(t, err)
	_, err = ParseReactionType("")
	assert.Error(t, err)
}

func TestParseReviewSortDefaultsToNewest(t *testing.T) {
	assert.Equal(t, ReviewSortHelpful, ParseReviewSort("helpful"))
	assert.Equal(t, ReviewSortRatingAsc, ParseReviewSort("RATING_ASC"))
	assert.Equal(t, ReviewSortNewest, ParseReviewSort(""))
	assert.Equal(t, ReviewSortNewest, ParseReviewSort("random"))
}

func TestParseReviewSortDateDirections(t *testing.T) {
	assert.Equal(t, ReviewSortOldest, ParseReviewSort("ASC"))
	assert.Equal(t, ReviewSortOldest, ParseReviewSort(" asc "))
	assert.Equal(t, ReviewSortNewest, ParseReviewSort("DESC"))
	assert.Equal(t, ReviewSortNewest, ParseReviewSort("desc"))
}

func TestOrderStatusCountsAsSale(t *testing.T) {
	assert.True(t, OrderStatusDelivered.CountsAsSale())
	assert.True(t, OrderStatusCompleted.CountsAsSale())
	assert.False(t, OrderStatusPending.CountsAsSale())
	assert.ElementsMatch(t, []string{"Delivered", "Completed"}, SaleStatuses())
}
