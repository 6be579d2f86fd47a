package admins

import (
	"context"
	"errors"
	"fmt"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/logger"
)

type AdminStore interface {
	UpsertAdmin(ctx context.Context, a e.AdminUser) error
	GetAdmin(ctx context.Context, userID int64) (*e.AdminUser, error)
	DeleteAdmin(ctx context.Context, userID int64) error
}

// Authority owns the admin set. Seed admins come from configuration,
// are always super and cannot be demoted; everyone else is promoted by
// an existing admin and can be removed again.
type Authority struct {
	// Log is a logger
	Log logger.Logger

	// Store is the durable admin set
	Store AdminStore
}

func (a *Authority) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	_, err := a.Store.GetAdmin(ctx, userID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("getting admin: %w", err)
	}

	return true, nil
}

// Promote upserts a regular admin. An existing super admin keeps the
// super flag, the upsert never lowers it.
func (a *Authority) Promote(ctx context.Context, userID, addedBy int64) error {
	err := a.Store.UpsertAdmin(ctx, e.AdminUser{
		UserID:  userID,
		IsSuper: false,
		AddedBy: addedBy,
	})
	if err != nil {
		return fmt.Errorf("promoting admin: %w", err)
	}

	a.Log.Info("admin promoted", "tg_user_id", userID, "added_by", addedBy)

	return nil
}

// Demote removes an admin. Super admins are immutable through this path
// and demoting one fails with ErrPermissionDenied.
func (a *Authority) Demote(ctx context.Context, userID int64) error {
	admin, err := a.Store.GetAdmin(ctx, userID)
	if err != nil {
		return fmt.Errorf("getting admin: %w", err)
	}

	if admin.IsSuper {
		return fmt.Errorf("demoting admin %d: %w", userID, e.ErrPermissionDenied)
	}

	if err := a.Store.DeleteAdmin(ctx, userID); err != nil {
		return fmt.Errorf("demoting admin: %w", err)
	}

	a.Log.Info("admin demoted", "tg_user_id", userID)

	return nil
}

// Seed upserts the configured seed admins as super. Safe to run on every
// startup.
func (a *Authority) Seed(ctx context.Context, userIDs []int64) error {
	for _, id := range userIDs {
		err := a.Store.UpsertAdmin(ctx, e.AdminUser{
			UserID:  id,
			IsSuper: true,
			AddedBy: e.SeedAddedBy,
		})
		if err != nil {
			return fmt.Errorf("seeding admin %d: %w", id, err)
		}
	}

	return nil
}
