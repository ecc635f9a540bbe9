package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

var _ simplefiles.Repository = (*Repository)(nil)

// Repository implements simplefiles.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("invalid value rejected by %s", pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const fileColumns = `id, owner_id, name, type, parent_id, is_public, content_key, created_at, updated_at`

func scanFile(row pgx.Row) (*simplefiles.File, error) {
	var (
		file     simplefiles.File
		kind     string
		parentID string
	)
	err := row.Scan(
		&file.ID, &file.OwnerID, &file.Name, &kind, &parentID,
		&file.IsPublic, &file.ContentKey, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return nil, err
	}

	parent, err := simplefiles.ParseParent(parentID)
	if err != nil {
		return nil, fmt.Errorf("file %s has corrupt parent_id: %w", file.ID, err)
	}
	file.Kind = simplefiles.Kind(kind)
	file.Parent = parent
	return &file, nil
}

func (r *Repository) InsertFile(ctx context.Context, file *simplefiles.File) (uuid.UUID, error) {
	query := `
		INSERT INTO files (
			owner_id, name, type, parent_id, is_public, content_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	createdAt := file.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := file.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		file.OwnerID, file.Name, string(file.Kind), file.Parent.String(),
		file.IsPublic, file.ContentKey, createdAt, updatedAt).Scan(&id)
	if err != nil {
		return uuid.Nil, r.handlePostgresError("insert file", err)
	}

	return id, nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplefiles.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	file, err := scanFile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplefiles.ErrNotFound
		}
		return nil, r.handlePostgresError("get file", err)
	}

	return file, nil
}

func (r *Repository) ListChildren(ctx context.Context, params simplefiles.ListChildrenParams) ([]*simplefiles.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1 AND parent_id = $2
		ORDER BY seq
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query,
		params.OwnerID, params.Parent.String(), simplefiles.PageSize, params.Offset())
	if err != nil {
		return nil, r.handlePostgresError("list children", err)
	}
	defer rows.Close()

	files := make([]*simplefiles.File, 0, simplefiles.PageSize)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list children", err)
	}

	return files, nil
}

func (r *Repository) UpdateVisibility(ctx context.Context, id uuid.UUID, isPublic bool) (*simplefiles.File, error) {
	query := `
		UPDATE files SET
			is_public = $2,
			updated_at = CASE WHEN is_public = $2 THEN updated_at ELSE NOW() END
		WHERE id = $1
		RETURNING ` + fileColumns

	file, err := scanFile(r.db.QueryRow(ctx, query, id, isPublic))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplefiles.ErrNotFound
		}
		return nil, r.handlePostgresError("update visibility", err)
	}

	return file, nil
}
