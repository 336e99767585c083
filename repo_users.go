package kebapi

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the users repository
type Users interface {
	UserFinder

	Get(ctx context.Context, id int64) (*User, error)
	GetSome(ctx context.Context, paging Paging) ([]*User, error)
	Count(ctx context.Context) (int, error)
	Register(ctx context.Context, user *User) (*User, error)
	GetAccountStatus(ctx context.Context, id int64) (AccountStatus, error)
	Activate(ctx context.Context, id int64) (int64, error)
	Deactivate(ctx context.Context, id int64) (int64, error)

	GetFavourites(ctx context.Context, id int64, paging Paging) ([]*Venue, error)
	AddFavourite(ctx context.Context, id, venueID int64) (int64, error)
	RemoveFavourite(ctx context.Context, id, venueID int64) (int64, error)
}

type users struct {
	db bun.IDB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a bun-backed Users repository
func NewUsersRepository(db bun.IDB) Users {
	return &users{db: db}
}

func (r *users) Get(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "?TableAlias.id = ?", id)
}

func (r *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, "?TableAlias.username = ?", username)
}

func (r *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "?TableAlias.email = ?", email)
}

func (r *users) getOne(ctx context.Context, where string, value any) (*User, error) {
	record := &User{}

	err := r.db.NewSelect().
		Model(record).
		Where(where, value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, NewRecordNotFound("user", map[string]any{
				"identifier": value,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to select user")
	}

	return record, nil
}

func (r *users) GetSome(ctx context.Context, paging Paging) ([]*User, error) {
	var records []*User

	err := r.db.NewSelect().
		Model(&records).
		Order("usr.id ASC").
		Offset(paging.StartRow).
		Limit(paging.RowCount).
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to select users")
	}

	return records, nil
}

func (r *users) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count users")
	}
	return count, nil
}

func (r *users) Register(ctx context.Context, user *User) (*User, error) {
	prepareUserDefaults(user)

	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "failed to register user")
	}

	return user, nil
}

func (r *users) GetAccountStatus(ctx context.Context, id int64) (AccountStatus, error) {
	user, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return user.AccountStatus, nil
}

func (r *users) Activate(ctx context.Context, id int64) (int64, error) {
	return r.updateStatus(ctx, id, AccountStatusActive)
}

func (r *users) Deactivate(ctx context.Context, id int64) (int64, error) {
	return r.updateStatus(ctx, id, AccountStatusInactive)
}

func (r *users) updateStatus(ctx context.Context, id int64, status AccountStatus) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("account_status = ?", status).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account status")
	}

	return res.RowsAffected()
}

func (r *users) GetFavourites(ctx context.Context, id int64, paging Paging) ([]*Venue, error) {
	var venues []*Venue

	err := r.db.NewSelect().
		Model(&venues).
		Join("JOIN user_favourites AS fav ON fav.venue_id = vn.id").
		Where("fav.user_id = ?", id).
		Order("vn.id ASC").
		Offset(paging.StartRow).
		Limit(paging.RowCount).
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to select favourites")
	}

	return venues, nil
}

func (r *users) AddFavourite(ctx context.Context, id, venueID int64) (int64, error) {
	fav := &UserFavourite{
		UserID:  id,
		VenueID: venueID,
	}

	res, err := r.db.NewInsert().
		Model(fav).
		On("CONFLICT DO NOTHING").
		Exec(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to add favourite")
	}

	return res.RowsAffected()
}

func (r *users) RemoveFavourite(ctx context.Context, id, venueID int64) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*UserFavourite)(nil)).
		Where("?TableAlias.user_id = ?", id).
		Where("?TableAlias.venue_id = ?", venueID).
		Exec(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove favourite")
	}

	return res.RowsAffected()
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.AccountStatus == "" {
		record.AccountStatus = AccountStatusActive
	}
}
