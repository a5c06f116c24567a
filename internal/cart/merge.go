package cart

import (
	"context"
	"fmt"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MergeGuestCart folds a guest cart into the user's active cart in one
// transaction. Quantities for the same product are combined and capped at
// current stock; lines for unavailable or vanished products are dropped. The
// guest cart is deactivated so the guest id cannot be replayed.
func (s *service) MergeGuestCart(ctx context.Context, guestID, userID uuid.UUID) error {
	if guestID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "guest and user ids required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		guestCart, err := repo.FindActiveByOwner(ctx, guestID, enums.CartOwnerGuest)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
		}

		userCart, err := s.getOrCreate(ctx, repo, Identity{OwnerID: userID, Kind: enums.CartOwnerUser})
		if err != nil {
			return err
		}

		guestLines, err := repo.ListLines(ctx, guestCart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list guest cart lines")
		}

		for _, guestLine := range guestLines {
			if err := s.mergeLine(ctx, repo, userCart.ID, guestLine); err != nil {
				return err
			}
		}

		if err := repo.DeleteLines(ctx, guestCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop guest cart lines")
		}
		if err := repo.Deactivate(ctx, guestCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate guest cart")
		}
		return repo.Touch(ctx, userCart.ID)
	})
}

func (s *service) mergeLine(ctx context.Context, repo Repository, userCartID uuid.UUID, guestLine models.CartLine) error {
	availability, err := s.catalog.CheckAvailability(ctx, guestLine.ProductID, nil)
	if err != nil {
		return err
	}
	if !availability.Exists || !availability.Available {
		return nil
	}

	target, err := repo.FindLineByProduct(ctx, userCartID, guestLine.ProductID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user cart line")
	}

	combined := guestLine.Quantity
	if target != nil {
		combined += target.Quantity
	}
	if combined > availability.StockQuantity {
		combined = availability.StockQuantity
	}
	if combined <= 0 {
		return nil
	}

	if target != nil {
		if err := repo.UpdateLineQuantity(ctx, target.ID, combined); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart line")
		}
		return nil
	}

	_, err = repo.CreateLine(ctx, &models.CartLine{
		ID:        uuid.New(),
		CartID:    userCartID,
		ProductID: guestLine.ProductID,
		Quantity:  combined,
	})
	if err != nil {
		return fmt.Errorf("merge cart line: %w", err)
	}
	return nil
}
