package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontlabs/storefront-backend/internal/reviews"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type stubReviews struct {
	created  reviews.CreateReviewInput
	filter   reviews.ListFilter
	reaction [3]string
	err      error
}

func (s *stubReviews) CreateReview(_ context.Context, in reviews.CreateReviewInput) (*reviews.Review, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &reviews.Review{ID: "rev-1", Rating: in.Rating.Value, UserID: in.UserID}, nil
}

func (s *stubReviews) GetByID(_ context.Context, id string) (*reviews.ProductReview, error) {
	if id != "rev-1" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
	}
	return &reviews.ProductReview{ID: id}, nil
}

func (s *stubReviews) ListByProduct(_ context.Context, f reviews.ListFilter) ([]reviews.ProductReview, error) {
	s.filter = f
	return []reviews.ProductReview{{ID: "rev-1"}}, nil
}

func (s *stubReviews) PurchasedItems(context.Context, string) ([]reviews.PurchasedItem, error) {
	return nil, nil
}

func (s *stubReviews) ProductsSimple(context.Context) ([]reviews.SimpleProduct, error) {
	return []reviews.SimpleProduct{{BarCode: "B1", Name: "Widget"}}, nil
}

func (s *stubReviews) UpsertReaction(_ context.Context, reviewID, authorID, reactionType string) (*reviews.ReactionSummary, error) {
	s.reaction = [3]string{reviewID, authorID, reactionType}
	return &reviews.ReactionSummary{ID: reviewID, HelpfulCount: 1}, s.err
}

func (s *stubReviews) MarkHelpful(ctx context.Context, reviewID, authorID string) (*reviews.ReactionSummary, error) {
	return s.UpsertReaction(ctx, reviewID, authorID, string(enums.ReactionHelpful))
}

func TestReviewCreateDefaultsRatingToFive(t *testing.T) {
	svc := &stubReviews{}
	body := `{"orderId":"o1","orderItemId":"i1","content":"great"}`
	rec := serve(ReviewCreate(svc, nil), newRequest(http.MethodPost, "/api/reviews", strings.NewReader(body), "buyer-1", enums.RoleBuyer, nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 5, svc.created.Rating.Value)
	assert.True(t, svc.created.Rating.Valid)
	assert.Equal(t, "buyer-1", svc.created.UserID)
}

func TestReviewCreatePassesMalformedRatingThrough(t *testing.T) {
	svc := &stubReviews{}
	body := `{"orderId":"o1","orderItemId":"i1","rating":"lots","content":"meh"}`
	serve(ReviewCreate(svc, nil), newRequest(http.MethodPost, "/api/reviews", strings.NewReader(body), "buyer-1", enums.RoleBuyer, nil))

	assert.True(t, svc.created.Rating.Set)
	assert.False(t, svc.created.Rating.Valid)
}

func TestReviewCreateRequiresPurchaseReference(t *testing.T) {
	svc := &stubReviews{}
	rec := serve(ReviewCreate(svc, nil), newRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"content":"x"}`), "buyer-1", enums.RoleBuyer, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.created.Content)
}

func TestReviewListSourcesProduct(t *testing.T) {
	svc := &stubReviews{}
	rec := serve(ReviewList(svc, nil), newRequest(http.MethodGet, "/api/reviews?productId=B1&rating=4&sort=helpful", nil, "", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.Rating)
	assert.Equal(t, 4, *svc.filter.Rating)
	assert.Equal(t, enums.ReviewSortHelpful, svc.filter.Sort)
	assert.Equal(t, "B1", svc.filter.BarCode)

	serve(ReviewList(svc, nil), newRequest(http.MethodGet, "/api/reviews/product/B2?sort=bogus", nil, "", "", map[string]string{"barcode": "B2"}))
	assert.Equal(t, "B2", svc.filter.BarCode)
	assert.Nil(t, svc.filter.Rating)
	assert.Equal(t, enums.ReviewSortNewest, svc.filter.Sort)

	rec = serve(ReviewList(svc, nil), newRequest(http.MethodGet, "/api/reviews", nil, "", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewListReadsBarcodeFromIDPath(t *testing.T) {
	svc := &stubReviews{}
	rec := serve(ReviewList(svc, nil), newRequest(http.MethodGet, "/api/reviews/B3?productId=ignored", nil, "", "", map[string]string{"id": "B3"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "B3", svc.filter.BarCode)
}

func TestReviewListRatingAllMeansNoFilter(t *testing.T) {
	for _, value := range []string{"all", "ALL", " All "} {
		svc := &stubReviews{}
		req := newRequest(http.MethodGet, "/api/reviews?productId=B1", nil, "", "", nil)
		q := req.URL.Query()
		q.Set("rating", value)
		req.URL.RawQuery = q.Encode()

		rec := serve(ReviewList(svc, nil), req)
		require.Equal(t, http.StatusOK, rec.Code, value)
		assert.Nil(t, svc.filter.Rating, value)
	}

	rec := serve(ReviewList(&stubReviews{}, nil), newRequest(http.MethodGet, "/api/reviews?productId=B1&rating=some", nil, "", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewListSortDirections(t *testing.T) {
	svc := &stubReviews{}
	serve(ReviewList(svc, nil), newRequest(http.MethodGet, "/api/reviews?productId=B1&sort=ASC", nil, "", "", nil))
	assert.Equal(t, enums.ReviewSortOldest, svc.filter.Sort)

	serve(ReviewList(svc, nil), newRequest(http.MethodGet, "/api/reviews?productId=B1&sort=DESC", nil, "", "", nil))
	assert.Equal(t, enums.ReviewSortNewest, svc.filter.Sort)
}

func TestReviewGet(t *testing.T) {
	svc := &stubReviews{}
	rec := serve(ReviewGet(svc, nil), newRequest(http.MethodGet, "/api/reviews/by-id/rev-1", nil, "", "", map[string]string{"id": "rev-1"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(ReviewGet(svc, nil), newRequest(http.MethodGet, "/api/reviews/by-id/nope", nil, "", "", map[string]string{"id": "nope"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewReactions(t *testing.T) {
	svc := &stubReviews{}
	params := map[string]string{"id": "rev-1"}

	rec := serve(ReviewReact(svc, nil), newRequest(http.MethodPost, "/api/reviews/rev-1/reactions", strings.NewReader(`{"type":"like"}`), "u1", enums.RoleBuyer, params))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [3]string{"rev-1", "u1", "like"}, svc.reaction)

	rec = serve(ReviewHelpful(svc, nil), newRequest(http.MethodPost, "/api/reviews/rev-1/helpful", nil, "u1", enums.RoleBuyer, params))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [3]string{"rev-1", "u1", "helpful"}, svc.reaction)
}

func TestReviewProducts(t *testing.T) {
	rec := serve(ReviewProducts(&stubReviews{}, nil), newRequest(http.MethodGet, "/api/reviews/products", nil, "", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"barcode":"B1","name":"Widget"}]`, string(decodeEnvelope(t, rec).Data))
}
