package product

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/ids"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// Service exposes seller product management operations.
type Service interface {
	List(ctx context.Context, sellerID string, filters ListFilters) ([]SellerListItem, error)
	Get(ctx context.Context, sellerID, barCode string) (*ProductDTO, error)
	Create(ctx context.Context, sellerID string, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, sellerID, barCode string, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, sellerID, barCode string) error
	AddVariations(ctx context.Context, sellerID, barCode string, variations []VariationInput) (*ProductDTO, error)
}

// Catalog is the public, unauthenticated view of the products.
type Catalog interface {
	All(ctx context.Context) ([]SummaryDTO, error)
	SearchByName(ctx context.Context, name string) ([]SummaryDTO, error)
	ByCategory(ctx context.Context, category string) ([]SummaryDTO, error)
	Categories(ctx context.Context) ([]string, error)
	Details(ctx context.Context, barCode string) (*ProductDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	ids  ids.Generator
}

// NewService builds the seller-scoped product service.
func NewService(repo *Repository, tx txRunner, gen ids.Generator) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repository is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if gen == nil {
		gen = ids.UUID{}
	}
	return &service{repo: repo, tx: tx, ids: gen}, nil
}

// NewCatalog builds the read-only public catalog.
func NewCatalog(repo *Repository) (Catalog, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, sellerID string, filters ListFilters) ([]SellerListItem, error) {
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	rows, err := s.repo.ListBySeller(ctx, sellerID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, sellerID, barCode string) (*ProductDTO, error) {
	return s.load(ctx, sellerID, strings.TrimSpace(barCode))
}

func (s *service) Details(ctx context.Context, barCode string) (*ProductDTO, error) {
	return s.load(ctx, "", strings.TrimSpace(barCode))
}

func (s *service) load(ctx context.Context, sellerID, barCode string) (*ProductDTO, error) {
	sku, err := s.repo.Find(ctx, sellerID, barCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	variations, err := s.repo.Variations(ctx, barCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variations")
	}
	category, err := s.repo.Category(ctx, barCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	images, err := s.repo.Images(ctx, barCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load images")
	}

	dto := &ProductDTO{
		BarCode:           sku.BarCode,
		Name:              sku.Name,
		ManufacturingDate: sku.ManufacturingDate,
		ExpiredDate:       sku.ExpiredDate,
		Description:       sku.Description,
		SellerID:          sku.SellerID,
		AvgRating:         types.NewMoney(sku.AvgRating),
		Variations:        make([]VariationDTO, 0, len(variations)),
		Category:          category,
		Images:            images,
	}
	for _, v := range variations {
		dto.Variations = append(dto.Variations, newVariationDTO(v))
	}
	if dto.Images == nil {
		dto.Images = []string{}
	}
	return dto, nil
}

func (s *service) Create(ctx context.Context, sellerID string, input CreateInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	variations, err := toVariationModels("", input.Variations)
	if err != nil {
		return nil, err
	}
	barCode := strings.TrimSpace(input.BarCode)
	if barCode == "" {
		barCode = s.ids.NewID()
	}
	for i := range variations {
		variations[i].BarCode = barCode
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.InsertProduct(ctx, &models.ProductSKU{
			BarCode:           barCode,
			Name:              name,
			ManufacturingDate: input.ManufacturingDate,
			ExpiredDate:       input.ExpiredDate,
			Description:       input.Description,
			SellerID:          sellerID,
		}); err != nil {
			return err
		}
		if len(variations) > 0 {
			if err := repo.ReplaceVariations(ctx, barCode, variations); err != nil {
				return err
			}
		}
		if category := trimmed(input.Category); category != "" {
			return repo.ReplaceCategory(ctx, barCode, category)
		}
		return nil
	})
	if err != nil {
		return nil, classifyWrite(err, "create product")
	}
	return s.load(ctx, sellerID, barCode)
}

// Update changes only what the input sets. A non-empty variation list replaces
// every existing variation; an empty one leaves them alone.
func (s *service) Update(ctx context.Context, sellerID, barCode string, input UpdateInput) (*ProductDTO, error) {
	barCode = strings.TrimSpace(barCode)
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
	}
	if input.isEmpty() {
		return s.load(ctx, sellerID, barCode)
	}
	variations, err := toVariationModels(barCode, input.Variations)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if updates := input.baseUpdates(); len(updates) > 0 {
			affected, err := repo.UpdateProduct(ctx, sellerID, barCode, updates)
			if err != nil {
				return err
			}
			if affected == 0 {
				return errProductNotFound()
			}
		} else if owns, err := repo.Owns(ctx, sellerID, barCode); err != nil {
			return err
		} else if !owns {
			return errProductNotFound()
		}

		if len(variations) > 0 {
			if err := repo.ReplaceVariations(ctx, barCode, variations); err != nil {
				return err
			}
		}
		if input.Category.Valid {
			if category := trimmed(input.Category.Value); category != "" {
				return repo.ReplaceCategory(ctx, barCode, category)
			}
			return repo.ClearCategory(ctx, barCode)
		}
		return nil
	})
	if err != nil {
		return nil, classifyWrite(err, "update product")
	}
	return s.load(ctx, sellerID, barCode)
}

func (s *service) Delete(ctx context.Context, sellerID, barCode string) error {
	deleted, err := s.repo.Delete(ctx, sellerID, strings.TrimSpace(barCode))
	if err != nil {
		return classifyWrite(err, "delete product")
	}
	if !deleted {
		return errProductNotFound()
	}
	return nil
}

func (s *service) AddVariations(ctx context.Context, sellerID, barCode string, inputs []VariationInput) (*ProductDTO, error) {
	barCode = strings.TrimSpace(barCode)
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variations must be a non-empty array")
	}
	variations, err := toVariationModels(barCode, inputs)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		owns, err := repo.Owns(ctx, sellerID, barCode)
		if err != nil {
			return err
		}
		if !owns {
			return errProductNotFound()
		}
		return repo.ReplaceVariations(ctx, barCode, variations)
	})
	if err != nil {
		return nil, classifyWrite(err, "add variations")
	}
	return s.load(ctx, sellerID, barCode)
}

func (s *service) All(ctx context.Context) ([]SummaryDTO, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// SearchByName returns nothing for a blank name rather than every product.
func (s *service) SearchByName(ctx context.Context, name string) ([]SummaryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []SummaryDTO{}, nil
	}
	rows, err := s.repo.SearchByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return rows, nil
}

func (s *service) ByCategory(ctx context.Context, category string) ([]SummaryDTO, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return []SummaryDTO{}, nil
	}
	rows, err := s.repo.ByCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products by category")
	}
	return rows, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	names, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func toVariationModels(barCode string, inputs []VariationInput) ([]models.Variation, error) {
	out := make([]models.Variation, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation name is required").
				WithDetails(map[string]any{"index": i})
		}
		if _, dup := seen[name]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate variation name").
				WithDetails(map[string]any{"name": name})
		}
		seen[name] = struct{}{}
		if in.Price.IsNegative() || in.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation price and stock must not be negative").
				WithDetails(map[string]any{"name": name})
		}
		out = append(out, models.Variation{
			BarCode: barCode,
			Name:    name,
			Price:   in.Price.Round(2),
			Stock:   in.Stock,
			Size:    in.Size,
			Color:   in.Color,
		})
	}
	return out, nil
}

func errProductNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
}

func classifyWrite(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a product with this barcode already exists")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product is linked to records that prevent this change")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
