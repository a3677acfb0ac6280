package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ottocrm/ottocrm/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Reads join profile
// display names so views never need a second lookup.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) error
	UpdateAssignee(ctx context.Context, id string, assignedTo *string) error
	ClearAssignments(ctx context.Context, assigneeID string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketSelect = `
    SELECT t.id, t.title, t.description, t.status, t.priority,
           t.created_by, t.assigned_to, t.created_at, t.updated_at,
           cb.full_name, ab.full_name
    FROM tickets t
    JOIN user_profiles cb ON cb.id = t.created_by
    LEFT JOIN user_profiles ab ON ab.id = t.assigned_to`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, created_by, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CreatedBy,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	return r.exec(ctx, `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
}

func (r *ticketRepository) UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) error {
	return r.exec(ctx, `UPDATE tickets SET priority=$1, updated_at=NOW() WHERE id=$2`, priority, id)
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, id string, assignedTo *string) error {
	return r.exec(ctx, `UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE id=$2`, assignedTo, id)
}

// ClearAssignments unassigns every ticket currently held by the assignee.
// Zero affected rows is a valid outcome.
func (r *ticketRepository) ClearAssignments(ctx context.Context, assigneeID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tickets SET assigned_to=NULL, updated_at=NOW() WHERE assigned_to=$1`, assigneeID)
	return err
}

func (r *ticketRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.CreatedByName,
		&ticket.AssignedToName,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE t.created_by=$1 ORDER BY t.created_at DESC`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatedBy,
			&ticket.AssignedTo,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.CreatedByName,
			&ticket.AssignedToName,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
