package shippers

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/internal/users"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Profile is the signed-in shipper's account plus shipper record.
type Profile struct {
	User           users.UserDTO  `json:"user"`
	ShipperDetails models.Shipper `json:"shipperDetails"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	Company      *string
	LicensePlate *string
}

type Service interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, input UpdateInput) (*Profile, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type service struct {
	repo  *Repository
	users userFinder
}

func NewService(repo *Repository, finder userFinder) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipper repository is required")
	}
	if finder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repository is required")
	}
	return &service{repo: repo, users: finder}, nil
}

func (s *service) Profile(ctx context.Context, userID string) (*Profile, error) {
	shipper, err := s.repo.Find(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "load shipper")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "load shipper account")
	}
	return &Profile{User: users.FromModel(user), ShipperDetails: *shipper}, nil
}

func (s *service) Update(ctx context.Context, userID string, input UpdateInput) (*Profile, error) {
	updates := map[string]any{}
	if input.Company != nil {
		updates["company"] = strings.TrimSpace(*input.Company)
	}
	if input.LicensePlate != nil {
		updates["license_plate"] = strings.TrimSpace(*input.LicensePlate)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	updated, err := s.repo.Update(ctx, userID, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipper")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Shipper not found")
	}
	return s.Profile(ctx, userID)
}

func notFoundOr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Shipper not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
