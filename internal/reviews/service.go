package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/ids"
	"github.com/storefrontlabs/storefront-backend/pkg/storedproc"
)

const (
	minRating = 0
	maxRating = 5
)

// Service covers review authoring, listings and reactions.
type Service interface {
	CreateReview(ctx context.Context, input CreateReviewInput) (*Review, error)
	GetByID(ctx context.Context, id string) (*ProductReview, error)
	ListByProduct(ctx context.Context, filter ListFilter) ([]ProductReview, error)
	PurchasedItems(ctx context.Context, userID string) ([]PurchasedItem, error)
	ProductsSimple(ctx context.Context) ([]SimpleProduct, error)
	UpsertReaction(ctx context.Context, reviewID, authorID, reactionType string) (*ReactionSummary, error)
	MarkHelpful(ctx context.Context, reviewID, authorID string) (*ReactionSummary, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	DB     txRunner
	Repo   *Repository
	Runner *storedproc.Runner
	IDs    ids.Generator
	Now    func() time.Time
}

type service struct {
	db     txRunner
	repo   *Repository
	runner *storedproc.Runner
	ids    ids.Generator
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "database client is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviews repository is required")
	}
	if params.Runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stored procedure runner is required")
	}
	if params.IDs == nil {
		params.IDs = ids.UUID{}
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		runner: params.Runner,
		ids:    params.IDs,
		now:    params.Now,
	}, nil
}

// CoerceRating maps anything that is not an integer in [0,5] to 0.
func CoerceRating(v int, ok bool) int {
	if !ok || v < minRating || v > maxRating {
		return 0
	}
	return v
}

func (s *service) CreateReview(ctx context.Context, input CreateReviewInput) (*Review, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review content is required")
	}
	orderID := strings.TrimSpace(input.OrderID)
	itemID := strings.TrimSpace(input.OrderItemID)
	userID := strings.TrimSpace(input.UserID)

	if orderID != "" && itemID != "" && userID != "" {
		owns, inOrder, err := s.repo.Purchase(ctx, orderID, itemID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchase")
		}
		if !owns || !inOrder {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only review items from your own orders")
		}
	}

	review := &models.Review{
		ID:          s.ids.NewID(),
		Rating:      CoerceRating(input.Rating.Value, input.Rating.Valid),
		Description: content,
		CreatedAt:   s.now().UTC(),
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.InsertReview(ctx, review); err != nil {
			return err
		}
		if missing := missingLinkage(orderID, itemID, userID); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeLinkage, "review must reference a purchased order item").
				WithDetails(map[string]any{"missing": missing})
		}
		return repo.InsertLink(ctx, &models.WriteReview{
			ReviewID:    review.ID,
			UserID:      userID,
			OrderID:     orderID,
			OrderItemID: itemID,
		})
	})
	if err != nil {
		return nil, classifyReviewWrite(err)
	}

	username, err := s.repo.Username(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review author")
	}
	return &Review{
		ID:          review.ID,
		Rating:      review.Rating,
		UserID:      userID,
		Username:    username,
		Description: review.Description,
		CreatedAt:   review.CreatedAt,
	}, nil
}

func missingLinkage(orderID, itemID, userID string) []string {
	var missing []string
	if orderID == "" {
		missing = append(missing, "orderId")
	}
	if itemID == "" {
		missing = append(missing, "orderItemId")
	}
	if userID == "" {
		missing = append(missing, "userId")
	}
	return missing
}

func classifyReviewWrite(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case db.IsUniqueViolation(err, "write_reviews"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "this order item has already been reviewed")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order, order item or user")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
}

func (s *service) GetByID(ctx context.Context, id string) (*ProductReview, error) {
	review, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

func (s *service) ListByProduct(ctx context.Context, filter ListFilter) ([]ProductReview, error) {
	filter.BarCode = strings.TrimSpace(filter.BarCode)
	if filter.BarCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if filter.Rating != nil && (*filter.Rating < minRating || *filter.Rating > maxRating) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	if !filter.Sort.IsValid() {
		filter.Sort = enums.ReviewSortNewest
	}
	rows, err := storedproc.Query(ctx, s.runner, storedproc.RoutineProductReviews,
		func(ctx context.Context) ([]ProductReview, error) { return s.repo.ListViaRoutine(ctx, filter) },
		func(ctx context.Context) ([]ProductReview, error) { return s.repo.ListFallback(ctx, filter) },
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product reviews")
	}
	return rows, nil
}

func (s *service) PurchasedItems(ctx context.Context, userID string) ([]PurchasedItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := storedproc.Query(ctx, s.runner, storedproc.RoutinePurchasedForReview,
		func(ctx context.Context) ([]PurchasedItem, error) { return s.repo.PurchasedViaRoutine(ctx, userID) },
		func(ctx context.Context) ([]PurchasedItem, error) { return s.repo.PurchasedFallback(ctx, userID) },
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchased items")
	}
	return rows, nil
}

func (s *service) ProductsSimple(ctx context.Context) ([]SimpleProduct, error) {
	rows, err := storedproc.Query(ctx, s.runner, storedproc.RoutineAllProductsSimple,
		s.repo.ProductsSimpleViaRoutine,
		s.repo.ProductsSimpleFallback,
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	return rows, nil
}

func (s *service) UpsertReaction(ctx context.Context, reviewID, authorID, reactionType string) (*ReactionSummary, error) {
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	kind, err := enums.ParseReactionType(reactionType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown reaction type").
			WithDetails(map[string]any{"type": reactionType})
	}

	now := s.now().UTC()
	err = storedproc.Exec(ctx, s.runner, storedproc.RoutineReactionsUpsert,
		func(ctx context.Context) error { return s.repo.UpsertReactionViaRoutine(ctx, reviewID, kind, authorID) },
		func(ctx context.Context) error { return s.repo.UpsertReactionFallback(ctx, reviewID, kind, authorID, now) },
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reaction")
	}

	summary, err := s.repo.Summary(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reaction summary")
	}
	return summary, nil
}

func (s *service) MarkHelpful(ctx context.Context, reviewID, authorID string) (*ReactionSummary, error) {
	return s.UpsertReaction(ctx, reviewID, authorID, enums.ReactionHelpful.String())
}
