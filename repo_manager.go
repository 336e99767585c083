package kebapi

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories plus schema management for the
// dev-only admin endpoints and test fixtures.
type RepositoryManager interface {
	Users() Users
	Venues() Venues
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error
	ResetSchema(ctx context.Context) error
	SeedSampleData(ctx context.Context) error
	Validate() error
	MustValidate()
}

type mngr struct {
	db     *bun.DB
	users  Users
	venues Venues
}

// NewRepositoryManager builds the repository set over a single bun DB
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:     db,
		users:  NewUsersRepository(db),
		venues: NewVenuesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.venues == nil {
		return errors.New("repository venues should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Venues() Venues {
	return m.venues
}

// schemaModels in create order; drops run in reverse so the favourites join
// table goes first.
var schemaModels = []any{
	(*User)(nil),
	(*Venue)(nil),
	(*UserFavourite)(nil),
}

func (m mngr) CreateSchema(ctx context.Context) error {
	for _, model := range schemaModels {
		_, err := m.db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m mngr) DropSchema(ctx context.Context) error {
	for i := len(schemaModels) - 1; i >= 0; i-- {
		_, err := m.db.NewDropTable().
			Model(schemaModels[i]).
			IfExists().
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m mngr) ResetSchema(ctx context.Context) error {
	if err := m.DropSchema(ctx); err != nil {
		return err
	}
	return m.CreateSchema(ctx)
}

// SeedSampleData fills a fresh schema with a small known data set: two users
// (credentials below), a handful of venues, and one favourite. It backs the
// dev-only reset-test-database endpoint and assumes ResetSchema ran first.
func (m mngr) SeedSampleData(ctx context.Context) error {
	samples := []struct {
		user     *User
		password string
	}{
		{&User{Username: "asha", Email: "asha@example.com", Name: "Asha", Surname: "Khan", Role: RoleAdmin}, "Adm1nSample!"},
		{&User{Username: "marco", Email: "marco@example.com", Name: "Marco", Surname: "Rossi", Role: RoleUser}, "Us3rSample!"},
	}

	for _, sample := range samples {
		bundle, err := GenerateHashBundle(sample.password)
		if err != nil {
			return err
		}
		sample.user.PasswordHash = bundle
		sample.user.AccountStatus = AccountStatusActive

		if _, err := m.db.NewInsert().Model(sample.user).Exec(ctx); err != nil {
			return err
		}
	}

	venues := []*Venue{
		{Name: "Kebab Palace", GeoLat: 51.5074, GeoLng: -0.1278, Address: "1 Strand, London", Rating: 5},
		{Name: "Grill House", GeoLat: 51.5155, GeoLng: -0.1419, Address: "20 Oxford St, London", Rating: 4},
		{Name: "Doner Corner", GeoLat: 51.4613, GeoLng: -0.1156, Address: "3 Brixton Rd, London", Rating: 3},
	}

	if _, err := m.db.NewInsert().Model(&venues).Exec(ctx); err != nil {
		return err
	}

	favourite := &UserFavourite{
		UserID:  samples[1].user.ID,
		VenueID: venues[0].ID,
	}
	if _, err := m.db.NewInsert().Model(favourite).Exec(ctx); err != nil {
		return err
	}

	return nil
}
