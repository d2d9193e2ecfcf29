package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/resolvease/complaint-service/internal/domain"
)

// ComplaintFilter is an exact-match conjunction; nil fields impose no constraint.
type ComplaintFilter struct {
	OwnerID    *string
	Status     *domain.ComplaintStatus
	Category   *string
	AssignedTo *string
	Department *string
	Limit      int
	Offset     int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	// Update writes mutable fields if complaint.Version still matches the stored row,
	// then bumps Version. A stale version yields ErrVersionConflict.
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// ListWithFilter returns matches newest first.
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
}

type complaintRepository struct {
	db DBTX
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(db DBTX) ComplaintRepository {
	return &complaintRepository{db: db}
}

var complaintColumns = []string{
	"id", "owner_id", "title", "description", "category", "status", "priority",
	"assigned_to", "department", "version", "created_at", "updated_at",
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (owner_id, title, description, category, status, priority, assigned_to, department)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, version, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		complaint.OwnerID,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Status,
		complaint.Priority,
		complaint.AssignedTo,
		complaint.Department,
	).Scan(&complaint.ID, &complaint.Version, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, priority=$2, assigned_to=$3, department=$4,
            version=version+1, updated_at=NOW()
        WHERE id=$5 AND version=$6
        RETURNING version, updated_at`
	err := r.db.QueryRow(ctx, query,
		complaint.Status,
		complaint.Priority,
		complaint.AssignedTo,
		complaint.Department,
		complaint.ID,
		complaint.Version,
	).Scan(&complaint.Version, &complaint.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVersionConflict
	}
	return err
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query, args, err := psql.Select(complaintColumns...).From("complaints").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var complaint domain.Complaint
	if err := r.db.QueryRow(ctx, query, args...).Scan(complaintScanTargets(&complaint)...); err != nil {
		return nil, lookupErr(err)
	}
	return &complaint, nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	qb := psql.Select(complaintColumns...).From("complaints")
	if filter.OwnerID != nil {
		qb = qb.Where(sq.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.Status != nil {
		qb = qb.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.Category != nil {
		qb = qb.Where(sq.Eq{"category": *filter.Category})
	}
	if filter.AssignedTo != nil {
		qb = qb.Where(sq.Eq{"assigned_to": *filter.AssignedTo})
	}
	if filter.Department != nil {
		qb = qb.Where(sq.Eq{"department": *filter.Department})
	}
	qb = qb.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return emptyOnMalformedID(err)
	}
	defer rows.Close()

	result := []domain.Complaint{}
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(complaintScanTargets(&complaint)...); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	if err := rows.Err(); err != nil {
		return emptyOnMalformedID(err)
	}
	return result, nil
}

func complaintScanTargets(c *domain.Complaint) []any {
	return []any{
		&c.ID,
		&c.OwnerID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Status,
		&c.Priority,
		&c.AssignedTo,
		&c.Department,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

// emptyOnMalformedID treats a filter on a non-UUID id as matching nothing.
func emptyOnMalformedID(err error) ([]domain.Complaint, error) {
	if errors.Is(lookupErr(err), ErrNotFound) {
		return []domain.Complaint{}, nil
	}
	return nil, err
}
