package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

var _ repository.CancellationRepository = (*CancellationRepo)(nil)

const cancellationColumns = `id, business_id, sale_id, cancelled_by, reason_code, reason_text, observations,
	requires_refund, refund_method, refund_status, refund_amount, refund_processed_at, refund_processed_by, cancelled_at`

// CancellationRepo persiste cancelaciones, reembolsos y la bitácora.
type CancellationRepo struct {
	q Querier
}

func NewCancellationRepository(q Querier) *CancellationRepo {
	return &CancellationRepo{q: q}
}

func (r *CancellationRepo) Create(ctx context.Context, c *entity.Cancellation) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO cancellations (`+cancellationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ID, c.BusinessID, c.SaleID, c.CancelledBy, c.ReasonCode, c.ReasonText, c.Observations,
		c.RequiresRefund, c.RefundMethod, c.RefundStatus, c.RefundAmount, c.RefundProcessedAt,
		c.RefundProcessedBy, c.CancelledAt,
	)
	return mapError("insert cancellation", err)
}

func (r *CancellationRepo) GetByID(ctx context.Context, businessID, id string) (*entity.Cancellation, error) {
	var c entity.Cancellation
	err := r.q.QueryRow(ctx,
		`SELECT `+cancellationColumns+` FROM cancellations WHERE id = $1 AND business_id = $2`,
		id, businessID,
	).Scan(&c.ID, &c.BusinessID, &c.SaleID, &c.CancelledBy, &c.ReasonCode, &c.ReasonText, &c.Observations,
		&c.RequiresRefund, &c.RefundMethod, &c.RefundStatus, &c.RefundAmount, &c.RefundProcessedAt,
		&c.RefundProcessedBy, &c.CancelledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cancellation: %w", err)
	}
	return &c, nil
}

// MarkRefunded pasa el reembolso a completado.
func (r *CancellationRepo) MarkRefunded(ctx context.Context, id, processedBy string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE cancellations SET refund_status = $2, refund_processed_at = $3, refund_processed_by = $4
		 WHERE id = $1`,
		id, entity.RefundStatusCompleted, at, processedBy,
	)
	if err != nil {
		return mapError("mark refunded", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CancellationRepo) CreateRefund(ctx context.Context, rf *entity.Refund) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO refunds (id, cancellation_id, amount, method, reference, bank_account, notes, processed_by, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rf.ID, rf.CancellationID, rf.Amount, rf.Method, rf.Reference, rf.BankAccount, rf.Notes,
		rf.ProcessedBy, rf.ProcessedAt,
	)
	return mapError("insert refund", err)
}

// GetRefund devuelve el último reembolso de la cancelación, o nil, nil.
func (r *CancellationRepo) GetRefund(ctx context.Context, cancellationID string) (*entity.Refund, error) {
	var rf entity.Refund
	err := r.q.QueryRow(ctx,
		`SELECT id, cancellation_id, amount, method, reference, bank_account, notes, processed_by, processed_at
		 FROM refunds WHERE cancellation_id = $1 ORDER BY seq DESC LIMIT 1`, cancellationID,
	).Scan(&rf.ID, &rf.CancellationID, &rf.Amount, &rf.Method, &rf.Reference, &rf.BankAccount, &rf.Notes,
		&rf.ProcessedBy, &rf.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refund: %w", err)
	}
	return &rf, nil
}

func (r *CancellationRepo) AddAudit(ctx context.Context, a *entity.CancellationAudit) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO cancellation_audit (id, cancellation_id, action, performed_by, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.CancellationID, a.Action, a.PerformedBy, a.Details, a.CreatedAt,
	)
	return mapError("insert cancellation audit", err)
}

func (r *CancellationRepo) ListAudit(ctx context.Context, cancellationID string) ([]*entity.CancellationAudit, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, cancellation_id, action, performed_by, details, created_at
		 FROM cancellation_audit WHERE cancellation_id = $1 ORDER BY seq`, cancellationID)
	if err != nil {
		return nil, fmt.Errorf("list cancellation audit: %w", err)
	}
	defer rows.Close()
	var list []*entity.CancellationAudit
	for rows.Next() {
		var a entity.CancellationAudit
		if err := rows.Scan(&a.ID, &a.CancellationID, &a.Action, &a.PerformedBy, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cancellation audit: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

func (r *CancellationRepo) ListBySales(ctx context.Context, businessID string, saleIDs []string) ([]*entity.Cancellation, error) {
	if len(saleIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+cancellationColumns+` FROM cancellations WHERE business_id = $1 AND sale_id = ANY($2)`,
		businessID, saleIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list cancellations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Cancellation
	for rows.Next() {
		var c entity.Cancellation
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.SaleID, &c.CancelledBy, &c.ReasonCode, &c.ReasonText, &c.Observations,
			&c.RequiresRefund, &c.RefundMethod, &c.RefundStatus, &c.RefundAmount, &c.RefundProcessedAt,
			&c.RefundProcessedBy, &c.CancelledAt); err != nil {
			return nil, fmt.Errorf("scan cancellation: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CancellationRepo) Summary(ctx context.Context, businessID string, from, to *time.Time) ([]entity.CancellationSummary, error) {
	rows, err := r.q.Query(ctx,
		`SELECT reason_code,
		        COUNT(*),
		        COUNT(*) FILTER (WHERE requires_refund),
		        COUNT(*) FILTER (WHERE refund_status = $4),
		        COUNT(*) FILTER (WHERE refund_status = $5),
		        COALESCE(SUM(refund_amount), 0)
		 FROM cancellations
		 WHERE business_id = $1
		   AND ($2::timestamptz IS NULL OR cancelled_at >= $2)
		   AND ($3::timestamptz IS NULL OR cancelled_at < $3)
		 GROUP BY reason_code
		 ORDER BY reason_code`,
		businessID, from, to, entity.RefundStatusCompleted, entity.RefundStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("cancellation summary: %w", err)
	}
	defer rows.Close()
	out := []entity.CancellationSummary{}
	for rows.Next() {
		var s entity.CancellationSummary
		if err := rows.Scan(&s.ReasonCode, &s.Total, &s.RefundsRequired, &s.RefundsCompleted,
			&s.RefundsPending, &s.TotalRefundAmount); err != nil {
			return nil, fmt.Errorf("scan cancellation summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
