package kebapi

import (
	"context"
	"database/sql"
	"sort"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Venues is the venues repository
type Venues interface {
	Get(ctx context.Context, id int64) (*Venue, error)
	GetSome(ctx context.Context, paging Paging) ([]*Venue, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, venue *Venue) (*Venue, error)

	GetDistance(ctx context.Context, id int64, lat, lng float64) (*VenueDistance, error)
	GetNearby(ctx context.Context, lat, lng float64, paging Paging) ([]*VenueDistance, error)
}

type venues struct {
	db bun.IDB
}

var _ Venues = (*venues)(nil)

// NewVenuesRepository returns a bun-backed Venues repository
func NewVenuesRepository(db bun.IDB) Venues {
	return &venues{db: db}
}

func (r *venues) Get(ctx context.Context, id int64) (*Venue, error) {
	record := &Venue{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, NewRecordNotFound("venue", map[string]any{
				"id": id,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to select venue")
	}

	return record, nil
}

func (r *venues) GetSome(ctx context.Context, paging Paging) ([]*Venue, error) {
	var records []*Venue

	err := r.db.NewSelect().
		Model(&records).
		Order("vn.id ASC").
		Offset(paging.StartRow).
		Limit(paging.RowCount).
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to select venues")
	}

	return records, nil
}

func (r *venues) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().Model((*Venue)(nil)).Count(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count venues")
	}
	return count, nil
}

func (r *venues) Create(ctx context.Context, venue *Venue) (*Venue, error) {
	if _, err := r.db.NewInsert().Model(venue).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "failed to create venue")
	}
	return venue, nil
}

func (r *venues) GetDistance(ctx context.Context, id int64, lat, lng float64) (*VenueDistance, error) {
	venue, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return VenueDistanceFrom(venue, lat, lng), nil
}

// GetNearby returns venues ordered by ascending distance from the query
// point. Distances are computed in process so the ordering works the same on
// every dialect we run against.
func (r *venues) GetNearby(ctx context.Context, lat, lng float64, paging Paging) ([]*VenueDistance, error) {
	var records []*Venue

	err := r.db.NewSelect().
		Model(&records).
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to select venues")
	}

	distances := make([]*VenueDistance, 0, len(records))
	for _, venue := range records {
		distances = append(distances, VenueDistanceFrom(venue, lat, lng))
	}

	sort.Slice(distances, func(i, j int) bool {
		return distances[i].DistanceInMetres < distances[j].DistanceInMetres
	})

	if paging.StartRow >= len(distances) {
		return []*VenueDistance{}, nil
	}

	distances = distances[paging.StartRow:]
	if paging.RowCount < len(distances) {
		distances = distances[:paging.RowCount]
	}

	return distances, nil
}
