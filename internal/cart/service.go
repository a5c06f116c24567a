package cart

import (
	"context"
	"fmt"

	"github.com/danielcastano/mercato-backend/pkg/db"
	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity names the cart owner: an authenticated user or a guest id.
type Identity struct {
	OwnerID uuid.UUID
	Kind    enums.CartOwnerKind
}

// Service owns cart existence, line mutation rules and the live-priced view.
type Service interface {
	GetOrCreateCart(ctx context.Context, identity Identity) (*models.Cart, error)
	GetCart(ctx context.Context, identity Identity) (*View, error)
	AddLine(ctx context.Context, identity Identity, productID uuid.UUID, quantity int) (*LineView, error)
	UpdateLine(ctx context.Context, identity Identity, lineID uuid.UUID, quantity int) (*LineView, error)
	RemoveLine(ctx context.Context, identity Identity, lineID uuid.UUID) error
	Clear(ctx context.Context, identity Identity) error
	MergeGuestCart(ctx context.Context, guestID, userID uuid.UUID) error
}

type service struct {
	repo    Repository
	catalog availabilityChecker
	tx      txRunner
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, catalog availabilityChecker, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog availability checker required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, catalog: catalog, tx: tx}, nil
}

func (i Identity) validate() error {
	if i.OwnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "cart identity missing")
	}
	if !i.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart owner kind")
	}
	return nil
}

// GetOrCreateCart finds the identity's active cart or creates one. The
// partial unique index on active carts makes concurrent creation safe: the
// loser of the race re-reads the winner's row.
func (s *service) GetOrCreateCart(ctx context.Context, identity Identity) (*models.Cart, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}
	return s.getOrCreate(ctx, s.repo, identity)
}

func (s *service) getOrCreate(ctx context.Context, repo Repository, identity Identity) (*models.Cart, error) {
	record, err := repo.FindActiveByOwner(ctx, identity.OwnerID, identity.Kind)
	if err == nil {
		return record, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := repo.Create(ctx, &models.Cart{
		ID:        uuid.New(),
		OwnerID:   identity.OwnerID,
		OwnerKind: identity.Kind,
	})
	if err == nil {
		return created, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}

	// lost the race, the other request's cart is now the active one
	record, err = repo.FindActiveByOwner(ctx, identity.OwnerID, identity.Kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart after conflict")
	}
	return record, nil
}

func (s *service) GetCart(ctx context.Context, identity Identity) (*View, error) {
	record, err := s.GetOrCreateCart(ctx, identity)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.PricedLines(ctx, record.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart lines")
	}
	return buildView(record.ID, lines), nil
}

func (s *service) AddLine(ctx context.Context, identity Identity, productID uuid.UUID, quantity int) (*LineView, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	availability, err := s.catalog.CheckAvailability(ctx, productID, nil)
	if err != nil {
		return nil, err
	}
	if !availability.Exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !availability.Available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}

	record, err := s.GetOrCreateCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindLineByProduct(ctx, record.ID, productID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	combined := quantity
	if existing != nil {
		combined += existing.Quantity
	}
	if combined > availability.StockQuantity {
		return nil, stockLimitError(availability.StockQuantity)
	}

	var lineID uuid.UUID
	switch {
	case existing != nil:
		if err := s.repo.UpdateLineQuantity(ctx, existing.ID, combined); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
		lineID = existing.ID
	default:
		line := &models.CartLine{
			ID:        uuid.New(),
			CartID:    record.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		_, err := s.repo.CreateLine(ctx, line)
		if err != nil && db.IsUniqueViolation(err, "") {
			// concurrent add for the same product; fold into the winner's line
			current, findErr := s.repo.FindLineByProduct(ctx, record.ID, productID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reload cart line after conflict")
			}
			combined = current.Quantity + quantity
			if combined > availability.StockQuantity {
				return nil, stockLimitError(availability.StockQuantity)
			}
			if err := s.repo.UpdateLineQuantity(ctx, current.ID, combined); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
			}
			lineID = current.ID
		} else if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
		} else {
			lineID = line.ID
		}
	}

	if err := s.repo.Touch(ctx, record.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	return s.lineView(ctx, record.ID, lineID)
}

func (s *service) UpdateLine(ctx context.Context, identity Identity, lineID uuid.UUID, quantity int) (*LineView, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item id required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	record, err := s.findActive(ctx, identity)
	if err != nil {
		return nil, err
	}
	line, err := s.repo.FindLine(ctx, record.ID, lineID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	// stock may have shrunk since the line was added
	availability, err := s.catalog.CheckAvailability(ctx, line.ProductID, nil)
	if err != nil {
		return nil, err
	}
	if !availability.Exists || !availability.Available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}
	if quantity > availability.StockQuantity {
		return nil, stockLimitError(availability.StockQuantity)
	}

	if err := s.repo.UpdateLineQuantity(ctx, line.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	if err := s.repo.Touch(ctx, record.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	return s.lineView(ctx, record.ID, line.ID)
}

func (s *service) RemoveLine(ctx context.Context, identity Identity, lineID uuid.UUID) error {
	if err := identity.validate(); err != nil {
		return err
	}
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id required")
	}

	record, err := s.findActive(ctx, identity)
	if err != nil {
		return err
	}
	affected, err := s.repo.DeleteLine(ctx, record.ID, lineID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err := s.repo.Touch(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	return nil
}

// Clear empties the active cart. A missing cart is not an error; there is
// nothing to clear.
func (s *service) Clear(ctx context.Context, identity Identity) error {
	if err := identity.validate(); err != nil {
		return err
	}
	record, err := s.repo.FindActiveByOwner(ctx, identity.OwnerID, identity.Kind)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteLines(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart lines")
	}
	return s.repo.Touch(ctx, record.ID)
}

func (s *service) findActive(ctx context.Context, identity Identity) (*models.Cart, error) {
	record, err := s.repo.FindActiveByOwner(ctx, identity.OwnerID, identity.Kind)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

func (s *service) lineView(ctx context.Context, cartID, lineID uuid.UUID) (*LineView, error) {
	lines, err := s.repo.PricedLines(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart lines")
	}
	view := buildView(cartID, lines)
	for i := range view.Items {
		if view.Items[i].ID == lineID {
			return &view.Items[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart line missing after write")
}

func stockLimitError(stock int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Only %d items available in stock", stock))
}
