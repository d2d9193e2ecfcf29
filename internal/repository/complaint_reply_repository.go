package repository

import (
	"context"

	"github.com/resolvease/complaint-service/internal/domain"
)

// ComplaintReplyRepository manages the append-only reply thread.
type ComplaintReplyRepository interface {
	Create(ctx context.Context, reply *domain.AdminReply) error
	// ListByComplaints returns replies for the given complaints in insertion order.
	ListByComplaints(ctx context.Context, complaintIDs []string) ([]domain.AdminReply, error)
}

type complaintReplyRepository struct {
	db DBTX
}

// NewComplaintReplyRepository builds repository.
func NewComplaintReplyRepository(db DBTX) ComplaintReplyRepository {
	return &complaintReplyRepository{db: db}
}

func (r *complaintReplyRepository) Create(ctx context.Context, reply *domain.AdminReply) error {
	const query = `
        INSERT INTO complaint_replies (complaint_id, author_id, reply_text)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		reply.ComplaintID,
		reply.AuthorID,
		reply.Text,
	).Scan(&reply.ID, &reply.CreatedAt)
}

func (r *complaintReplyRepository) ListByComplaints(ctx context.Context, complaintIDs []string) ([]domain.AdminReply, error) {
	if len(complaintIDs) == 0 {
		return []domain.AdminReply{}, nil
	}
	const query = `
        SELECT id, complaint_id, COALESCE(author_id::text, ''), reply_text, created_at
        FROM complaint_replies WHERE complaint_id = ANY($1::uuid[]) ORDER BY seq ASC`
	rows, err := r.db.Query(ctx, query, complaintIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AdminReply{}
	for rows.Next() {
		var reply domain.AdminReply
		if err := rows.Scan(
			&reply.ID,
			&reply.ComplaintID,
			&reply.AuthorID,
			&reply.Text,
			&reply.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reply)
	}
	return result, rows.Err()
}
