package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

type cancellationRepo struct{ view }

func (r cancellationRepo) Create(_ context.Context, c *entity.Cancellation) error {
	return r.exec(func(st *state) error {
		if _, ok := st.tables[tableSales][c.SaleID]; !ok {
			return domain.ErrReferential
		}
		if _, exists := st.tables[tableCancellations][c.ID]; exists {
			return domain.ErrDuplicate
		}
		st.put(tableCancellations, c.ID, cancellationRow(c))
		return nil
	})
}

func (r cancellationRepo) GetByID(_ context.Context, businessID, id string) (*entity.Cancellation, error) {
	var out *entity.Cancellation
	err := r.exec(func(st *state) error {
		if rec, ok := st.tables[tableCancellations][id]; ok && str(rec.row, "business_id") == businessID {
			out = cancellationFromRow(rec.row)
		}
		return nil
	})
	return out, err
}

func (r cancellationRepo) MarkRefunded(_ context.Context, id, processedBy string, at time.Time) error {
	return r.exec(func(st *state) error {
		rec, ok := st.tables[tableCancellations][id]
		if !ok {
			return domain.ErrNotFound
		}
		rec.row["refund_status"] = entity.RefundStatusCompleted
		rec.row["refund_processed_at"] = at
		rec.row["refund_processed_by"] = processedBy
		return nil
	})
}

func (r cancellationRepo) CreateRefund(_ context.Context, rf *entity.Refund) error {
	return r.exec(func(st *state) error {
		if _, ok := st.tables[tableCancellations][rf.CancellationID]; !ok {
			return domain.ErrReferential
		}
		st.put(tableRefunds, rf.ID, refundRow(rf))
		return nil
	})
}

func (r cancellationRepo) GetRefund(_ context.Context, cancellationID string) (*entity.Refund, error) {
	var out *entity.Refund
	err := r.exec(func(st *state) error {
		rows := st.scan(tableRefunds, func(row repository.Row) bool { return str(row, "cancellation_id") == cancellationID })
		if len(rows) > 0 {
			out = refundFromRow(rows[len(rows)-1])
		}
		return nil
	})
	return out, err
}

func (r cancellationRepo) AddAudit(_ context.Context, a *entity.CancellationAudit) error {
	return r.exec(func(st *state) error {
		st.put(tableAudit, a.ID, auditRow(a))
		return nil
	})
}

func (r cancellationRepo) ListAudit(_ context.Context, cancellationID string) ([]*entity.CancellationAudit, error) {
	var out []*entity.CancellationAudit
	err := r.exec(func(st *state) error {
		for _, row := range st.scan(tableAudit, func(row repository.Row) bool { return str(row, "cancellation_id") == cancellationID }) {
			out = append(out, auditFromRow(row))
		}
		return nil
	})
	return out, err
}

func (r cancellationRepo) ListBySales(_ context.Context, businessID string, saleIDs []string) ([]*entity.Cancellation, error) {
	wanted := make(map[string]bool, len(saleIDs))
	for _, id := range saleIDs {
		wanted[id] = true
	}
	var out []*entity.Cancellation
	err := r.exec(func(st *state) error {
		for _, row := range st.scan(tableCancellations, byBusiness(businessID)) {
			if wanted[str(row, "sale_id")] {
				out = append(out, cancellationFromRow(row))
			}
		}
		return nil
	})
	return out, err
}

func (r cancellationRepo) Summary(_ context.Context, businessID string, from, to *time.Time) ([]entity.CancellationSummary, error) {
	groups := make(map[string]*entity.CancellationSummary)
	err := r.exec(func(st *state) error {
		for _, row := range st.scan(tableCancellations, byBusiness(businessID)) {
			c := cancellationFromRow(row)
			if !inRange(c.CancelledAt, from, to) {
				continue
			}
			g, ok := groups[c.ReasonCode]
			if !ok {
				g = &entity.CancellationSummary{ReasonCode: c.ReasonCode}
				groups[c.ReasonCode] = g
			}
			g.Total++
			if c.RequiresRefund {
				g.RefundsRequired++
			}
			switch c.RefundStatus {
			case entity.RefundStatusCompleted:
				g.RefundsCompleted++
			case entity.RefundStatusPending:
				g.RefundsPending++
			}
			g.TotalRefundAmount = g.TotalRefundAmount.Add(c.RefundAmount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]entity.CancellationSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReasonCode < out[j].ReasonCode })
	return out, nil
}
