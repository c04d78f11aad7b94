package orders

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
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// Service places orders and serves the order reports.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	OrderDetails(ctx context.Context, filter DetailsFilter) ([]OrderSummary, error)
	TopSellingProducts(ctx context.Context, filter TopSellingFilter) ([]TopSellingProduct, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type roleResolver interface {
	ResolveRole(ctx context.Context, userID string) (enums.Role, error)
}

type ServiceParams struct {
	DB     txRunner
	Repo   *Repository
	Roles  roleResolver
	Runner *storedproc.Runner
	IDs    ids.Generator
	Now    func() time.Time
}

type service struct {
	db     txRunner
	repo   *Repository
	roles  roleResolver
	runner *storedproc.Runner
	ids    ids.Generator
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "database client is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	if params.Roles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role resolver is required")
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
		roles:  params.Roles,
		runner: params.Runner,
		ids:    params.IDs,
		now:    params.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	buyerID := strings.TrimSpace(input.BuyerID)
	if buyerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	// The token carries a role too, but placing an order is privileged enough
	// to re-check against the role tables.
	role, err := s.roles.ResolveRole(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve buyer role")
	}
	if role != enums.RoleBuyer && role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only buyers can place orders")
	}

	header, item, err := s.buildRows(input, buyerID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.InsertOrder(ctx, header); err != nil {
			return err
		}
		if missing := missingLinkage(item); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeLinkage, "order item must reference a product variation").
				WithDetails(map[string]any{"missing": missing})
		}
		return repo.InsertItem(ctx, item)
	})
	if err != nil {
		return nil, classifyWriteError(err)
	}

	total, err := s.repo.Total(ctx, header.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order total")
	}

	return &Order{
		ID:            header.ID,
		Total:         total,
		Address:       header.Address,
		Status:        header.Status,
		BuyerID:       header.BuyerID,
		OrderItemID:   item.ID,
		Quantity:      item.Quantity,
		Price:         types.NewMoney(item.Price),
		BarCode:       item.BarCode,
		VariationName: item.VariationName,
		CreatedAt:     header.CreatedAt,
	}, nil
}

func (s *service) buildRows(input CreateOrderInput, buyerID string) (*models.Order, *models.OrderItem, error) {
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	if !input.Quantity.Set {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity is required")
	}
	if !input.Quantity.Valid || input.Quantity.Value <= 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	if input.Price == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "price is required")
	}
	if input.Price.IsNegative() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = enums.OrderStatusPending.String()
	}

	header := &models.Order{
		ID:        s.ids.NewID(),
		BuyerID:   buyerID,
		Address:   address,
		Status:    status,
		CreatedAt: s.now().UTC(),
	}
	item := &models.OrderItem{
		ID:            s.ids.NewID(),
		OrderID:       header.ID,
		BarCode:       strings.TrimSpace(input.BarCode),
		VariationName: strings.TrimSpace(input.VariationName),
		Quantity:      input.Quantity.Value,
		Price:         input.Price.Round(2),
	}
	return header, item, nil
}

func missingLinkage(item *models.OrderItem) []string {
	var missing []string
	if item.BarCode == "" {
		missing = append(missing, "barcode")
	}
	if item.VariationName == "" {
		missing = append(missing, "variationname")
	}
	return missing
}

func classifyWriteError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown buyer or product variation")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
}

func (s *service) OrderDetails(ctx context.Context, filter DetailsFilter) ([]OrderSummary, error) {
	if filter.MinItems < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minItems must not be negative")
	}
	filter.Status = strings.TrimSpace(filter.Status)
	rows, err := storedproc.Query(ctx, s.runner, storedproc.RoutineOrderDetails,
		func(ctx context.Context) ([]OrderSummary, error) { return s.repo.OrderDetailsViaRoutine(ctx, filter) },
		func(ctx context.Context) ([]OrderSummary, error) { return s.repo.OrderDetailsFallback(ctx, filter) },
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order details")
	}
	return rows, nil
}

func (s *service) TopSellingProducts(ctx context.Context, filter TopSellingFilter) ([]TopSellingProduct, error) {
	if filter.MinQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minQuantity must not be negative")
	}
	filter.SellerID = strings.TrimSpace(filter.SellerID)
	rows, err := storedproc.Query(ctx, s.runner, storedproc.RoutineTopSellingProducts,
		func(ctx context.Context) ([]TopSellingProduct, error) { return s.repo.TopSellingViaRoutine(ctx, filter) },
		func(ctx context.Context) ([]TopSellingProduct, error) { return s.repo.TopSellingFallback(ctx, filter) },
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top selling products")
	}
	return rows, nil
}
