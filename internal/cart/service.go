package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/storedproc"
)

// Service manages the signed-in buyer's cart.
type Service interface {
	Items(ctx context.Context, userID string) ([]Item, error)
	AddItem(ctx context.Context, userID string, input AddItemInput) error
	RemoveItem(ctx context.Context, userID, barCode, variationName string) error
}

type service struct {
	repo   *Repository
	runner *storedproc.Runner
}

func NewService(repo *Repository, runner *storedproc.Runner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repository is required")
	}
	if runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stored procedure runner is required")
	}
	return &service{repo: repo, runner: runner}, nil
}

func (s *service) Items(ctx context.Context, userID string) ([]Item, error) {
	cartID, err := s.cartID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := storedproc.Query(ctx, s.runner, storedproc.RoutineCartItems,
		func(ctx context.Context) ([]Item, error) { return s.repo.ItemsViaRoutine(ctx, cartID) },
		func(ctx context.Context) ([]Item, error) { return s.repo.ItemsFallback(ctx, cartID) },
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	return rows, nil
}

func (s *service) AddItem(ctx context.Context, userID string, input AddItemInput) error {
	barCode := strings.TrimSpace(input.BarCode)
	variation := strings.TrimSpace(input.VariationName)
	if barCode == "" || variation == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "barcode and variationName are required")
	}
	quantity := 1
	if input.Quantity.Set {
		if !input.Quantity.Valid || input.Quantity.Value <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
		}
		quantity = input.Quantity.Value
	}

	cartID, err := s.cartID(ctx, userID)
	if err != nil {
		return err
	}
	err = s.repo.AddItem(ctx, models.CartItem{
		CartID:        cartID,
		BarCode:       barCode,
		VariationName: variation,
		Quantity:      quantity,
	})
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product variation not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, barCode, variationName string) error {
	barCode = strings.TrimSpace(barCode)
	variationName = strings.TrimSpace(variationName)
	if barCode == "" || variationName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "barcode and variationName are required")
	}
	cartID, err := s.cartID(ctx, userID)
	if err != nil {
		return err
	}
	removed, err := s.repo.RemoveItem(ctx, cartID, barCode, variationName)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

func (s *service) cartID(ctx context.Context, userID string) (string, error) {
	cartID, err := s.repo.CartIDForUser(ctx, strings.TrimSpace(userID))
	if errors.Is(err, ErrNoCart) {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found for user")
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cartID, nil
}
