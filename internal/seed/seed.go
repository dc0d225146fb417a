// Package seed creates demo accounts and catalog data for local use.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/domain/user"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

// Repositories are the stores the seeder writes to.
type Repositories struct {
	Users    user.Repository
	Items    catalog.ItemRepository
	Listings catalog.ListingRepository
}

type demoUser struct {
	email, password, name string
	role                  auth.Role
}

var demoUsers = []demoUser{
	{"admin@gearshare.local", "Admin123!", "Admin", auth.RoleAdmin},
	{"owner@gearshare.local", "Owner123!", "Owner", auth.RoleOwner},
	{"renter@gearshare.local", "Renter123!", "Renter", auth.RoleRenter},
}

type demoItem struct {
	details catalog.ItemDetails
	// price and deposit in whole units; zero price means not listed
	price, deposit int64
}

var demoItems = []demoItem{
	{catalog.ItemDetails{Title: "MTB hardtail bike", Category: catalog.CategorySports, Condition: "GOOD", Description: "Size M frame, disc brakes, 29\" wheels"}, 40, 150},
	{catalog.ItemDetails{Title: "Mirrorless camera", Category: catalog.CategoryPhoto, Condition: "LIKE_NEW", Description: "4K video, 24MP, two batteries"}, 90, 400},
	{catalog.ItemDetails{Title: "Drill and bit set", Category: catalog.CategoryDIY, Condition: "GOOD", Description: "Carry case with accessories"}, 30, 100},
	{catalog.ItemDetails{Title: "Three-person tent", Category: catalog.CategorySports, Condition: "GOOD", Description: "Waterproof, lightweight"}, 35, 120},
	{catalog.ItemDetails{Title: "GoPro Hero", Category: catalog.CategoryPhoto, Condition: "GOOD", Description: "Helmet mount included"}, 0, 0},
	{catalog.ItemDetails{Title: "Angle grinder", Category: catalog.CategoryDIY, Condition: "FAIR", Description: "Discs included"}, 0, 0},
}

// Run creates the demo users when missing and, on an empty catalog, the
// demo items and listings owned by the demo owner. It is safe to run on
// every start.
func Run(ctx context.Context, repos Repositories, log *zap.Logger) error {
	users := make(map[auth.Role]*user.User, len(demoUsers))
	for _, du := range demoUsers {
		u, err := ensureUser(ctx, repos.Users, du)
		if err != nil {
			return err
		}
		users[du.role] = u
	}

	existing, err := repos.Items.List(ctx, catalog.ItemFilter{})
	if err != nil {
		return fmt.Errorf("failed to check catalog: %w", err)
	}
	if len(existing) > 0 {
		log.Info("catalog already populated, skipping demo items", zap.Int("items", len(existing)))
		return nil
	}

	owner := users[auth.RoleOwner]
	listed := 0
	for _, di := range demoItems {
		item, err := catalog.NewItem(owner.ID(), di.details)
		if err != nil {
			return err
		}
		if err := repos.Items.Save(ctx, item); err != nil {
			return fmt.Errorf("failed to seed item %q: %w", di.details.Title, err)
		}
		if di.price == 0 {
			continue
		}

		listing, err := catalog.NewListing(item, catalog.ListingTerms{
			PricePerDay: money.FromUnits(di.price, 0),
			Deposit:     money.FromUnits(di.deposit, 0),
			Location:    catalog.Location{City: "Bucharest"},
			Active:      true,
		})
		if err != nil {
			return err
		}
		if err := repos.Listings.Save(ctx, listing); err != nil {
			return fmt.Errorf("failed to seed listing for %q: %w", di.details.Title, err)
		}
		listed++
	}

	log.Info("demo catalog seeded", zap.Int("items", len(demoItems)), zap.Int("listings", listed))
	return nil
}

func ensureUser(ctx context.Context, repo user.Repository, du demoUser) (*user.User, error) {
	existing, err := repo.FindByEmail(ctx, user.NormalizeEmail(du.email))
	if err == nil {
		return existing, nil
	}
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeNotFound {
		return nil, fmt.Errorf("failed to look up %s: %w", du.email, err)
	}

	hash, err := auth.HashPassword(du.password)
	if err != nil {
		return nil, err
	}
	u, err := user.NewUser(du.email, du.name, hash, []auth.Role{du.role})
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to seed user %s: %w", du.email, err)
	}
	return u, nil
}
