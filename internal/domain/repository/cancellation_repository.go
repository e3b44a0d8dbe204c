package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// CancellationRepository persiste cancelaciones, reembolsos y su bitácora.
type CancellationRepository interface {
	Create(ctx context.Context, c *entity.Cancellation) error
	GetByID(ctx context.Context, businessID, id string) (*entity.Cancellation, error)
	MarkRefunded(ctx context.Context, id, processedBy string, at time.Time) error
	CreateRefund(ctx context.Context, r *entity.Refund) error
	GetRefund(ctx context.Context, cancellationID string) (*entity.Refund, error)
	AddAudit(ctx context.Context, a *entity.CancellationAudit) error
	ListAudit(ctx context.Context, cancellationID string) ([]*entity.CancellationAudit, error)
	ListBySales(ctx context.Context, businessID string, saleIDs []string) ([]*entity.Cancellation, error)
	// Summary agrupa por motivo las cancelaciones con cancelled_at en [from, to), ordenadas por motivo.
	Summary(ctx context.Context, businessID string, from, to *time.Time) ([]entity.CancellationSummary, error)
}
