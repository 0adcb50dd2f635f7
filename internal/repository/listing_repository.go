package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobgate/api/internal/models"
)

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) Create(ctx context.Context, listing models.Listing) error {
	const query = `
		INSERT INTO listings (id, employer_id, title, description, location, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		listing.ID,
		listing.EmployerID,
		listing.Title,
		listing.Description,
		listing.Location,
	)
	return err
}

func (r *ListingRepository) List(ctx context.Context, limit int, offset int) ([]models.Listing, error) {
	const query = `
		SELECT id, employer_id, title, description, location, created_at
		FROM listings
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var listing models.Listing
		if err := rows.Scan(
			&listing.ID,
			&listing.EmployerID,
			&listing.Title,
			&listing.Description,
			&listing.Location,
			&listing.CreatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}
