package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/investor-portal/internal/model"
)

// PropertyRepo provides persistence for catalog listings. Reads of the
// available listing go through the cache-aside layer; every mutation here
// must be followed by an invalidation of the affected cache keys.
type PropertyRepo struct{ DB *sql.DB }

func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{DB: db} }

// Create inserts a listing and populates its ID.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO properties (title, city, price_cents, available) VALUES (?,?,?,?)",
		p.Title, p.City, p.PriceCents, p.Available)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListAvailable returns listings open to investors, newest first.
func (r *PropertyRepo) ListAvailable(ctx context.Context) ([]model.Property, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,title,city,price_cents,available,created_at FROM properties WHERE available=1 ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Property
	for rows.Next() {
		var p model.Property
		if err := rows.Scan(&p.ID, &p.Title, &p.City, &p.PriceCents, &p.Available, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the total number of listings for the admin overview.
func (r *PropertyRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&n)
	return n, err
}
