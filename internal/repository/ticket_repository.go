package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Absent rows surface as
// pgx.ErrNoRows regardless of the backing store. Every mutation is a single
// guarded statement touching only the columns its transition owns, so a
// concurrent triage commit can never be clobbered by a stale agent write.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, limit, offset int) ([]domain.Ticket, error)
	UpdateDraft(ctx context.Context, id, draft string) error
	MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error
	Reopen(ctx context.Context, id string) error
	ApplyTriageSuccess(ctx context.Context, id string, category domain.Category, urgency domain.Urgency, sentiment int, draft string) error
	ApplyTriageFailure(ctx context.Context, id string, draft string) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, email, message, category, sentiment_score, urgency, ai_draft, status, created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, email, message, status)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Email,
		ticket.Message,
		ticket.Status,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Email,
		&ticket.Message,
		&ticket.Category,
		&ticket.SentimentScore,
		&ticket.Urgency,
		&ticket.AIDraft,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// UpdateDraft overwrites the AI draft only. Legal from any status, so the
// statement carries no status guard and never touches other columns.
func (r *ticketRepository) UpdateDraft(ctx context.Context, id, draft string) error {
	const query = `UPDATE tickets SET ai_draft=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, draft, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkResolved commits the transition into resolved. The guard rejects a
// ticket that is already resolved, including one resolved concurrently
// after the caller last read it.
func (r *ticketRepository) MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error {
	const query = `
        UPDATE tickets SET status=$1, resolved_at=$2, updated_at=NOW()
        WHERE id=$3 AND status<>$1`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusResolved, resolvedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Reopen moves a resolved ticket back to pending. resolved_at is retained
// as history of the prior resolution.
func (r *ticketRepository) Reopen(ctx context.Context, id string) error {
	const query = `
        UPDATE tickets SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusPending, id, domain.TicketStatusResolved)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ApplyTriageSuccess commits the pending→processed transition and all derived
// fields in a single statement. The status guard keeps the write exactly-once.
func (r *ticketRepository) ApplyTriageSuccess(ctx context.Context, id string, category domain.Category, urgency domain.Urgency, sentiment int, draft string) error {
	const query = `
        UPDATE tickets SET category=$1, urgency=$2, sentiment_score=$3, ai_draft=$4,
            status=$5, updated_at=NOW()
        WHERE id=$6 AND status=$7`
	cmd, err := r.pool.Exec(ctx, query,
		category,
		urgency,
		sentiment,
		draft,
		domain.TicketStatusProcessed,
		id,
		domain.TicketStatusPending,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ApplyTriageFailure commits the pending→error transition with the fallback
// draft, leaving all classification fields unset.
func (r *ticketRepository) ApplyTriageFailure(ctx context.Context, id string, draft string) error {
	const query = `
        UPDATE tickets SET ai_draft=$1, status=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query,
		draft,
		domain.TicketStatusError,
		id,
		domain.TicketStatusPending,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Email,
			&ticket.Message,
			&ticket.Category,
			&ticket.SentimentScore,
			&ticket.Urgency,
			&ticket.AIDraft,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
