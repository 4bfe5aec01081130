package repository

import (
	"context"
	"database/sql"

	"github.com/newsdesk-api/internal/database"
	"github.com/newsdesk-api/internal/models"
)

// authorRepo is the concrete implementation of AuthorRepository
type authorRepo struct {
	db *database.DB
}

// NewAuthorRepo creates a new author repository
func NewAuthorRepo(db *database.DB) AuthorRepository {
	return &authorRepo{db: db}
}

// Create inserts a new author and fills in the generated id and timestamp
func (r *authorRepo) Create(ctx context.Context, author *models.Author) error {
	query := `
		INSERT INTO authors (name, email)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, author.Name, author.Email).
		Scan(&author.ID, &author.CreatedAt)
}

// GetByID retrieves an author by ID
func (r *authorRepo) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	query := `SELECT id, name, email, created_at FROM authors WHERE id = $1`

	var author models.Author
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&author.ID, &author.Name, &author.Email, &author.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Count returns total number of authors
func (r *authorRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors").Scan(&count)
	return count, err
}
