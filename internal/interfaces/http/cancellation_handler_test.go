package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saleWithTwoUnits crea un producto con stock 48 y vende 2 unidades a 15.
func saleWithTwoUnits(t *testing.T, env *testEnv) (productID, saleID string) {
	t.Helper()
	res := env.push(t,
		change("products", "CREATE", map[string]any{"id": "local-p1", "name": "Jugo", "price": 15, "stock": 48}),
		change("sales", "CREATE", map[string]any{
			"total": 30, "payment_method": "efectivo",
			"items": []any{map[string]any{"product_id": "local-p1", "quantity": 2, "unit_price": 15}},
		}),
	)
	require.Equal(t, 2, res.Results.Success)
	return res.Results.Applied[0].ID, res.Results.Applied[1].ID
}

func errorCode(t *testing.T, data []byte) string {
	t.Helper()
	var out struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	return out.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación y reembolso
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelacion_IdaYVueltaDeStock(t *testing.T) {
	env := newTestEnv(t)
	productID, saleID := saleWithTwoUnits(t, env)
	require.Equal(t, int64(46), env.stockOf(t, productID))

	body := map[string]any{
		"sale_id": saleID, "reason_code": "02",
		"requires_refund": true, "refund_method": "cash",
	}

	resp, _ := env.call(t, http.MethodPost, "/api/cancellations", "cashier", body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "un cajero no puede cancelar")

	resp, data := env.call(t, http.MethodPost, "/api/cancellations", "manager", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var created struct {
		ID            string `json:"id"`
		RefundStatus  string `json:"refund_status"`
		RefundAmount  string `json:"refund_amount"`
		RestoredItems int    `json:"restored_items"`
	}
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, "pending", created.RefundStatus)
	assert.Equal(t, "30", created.RefundAmount)
	assert.Equal(t, 1, created.RestoredItems)
	assert.Equal(t, int64(48), env.stockOf(t, productID))

	resp, data = env.call(t, http.MethodPost, "/api/cancellations", "owner", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ALREADY_CANCELLED", errorCode(t, data))
	assert.Equal(t, int64(48), env.stockOf(t, productID), "la segunda cancelación no reintegra de nuevo")

	refundPath := "/api/cancellations/" + created.ID + "/refund"
	resp, _ = env.call(t, http.MethodPost, refundPath, "manager", map[string]any{"method": "cash"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, data = env.call(t, http.MethodPost, refundPath, "owner", map[string]any{"method": "cash"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var refund struct {
		Amount string `json:"amount"`
		Method string `json:"method"`
	}
	require.NoError(t, json.Unmarshal(data, &refund))
	assert.Equal(t, "30", refund.Amount)
	assert.Equal(t, "cash", refund.Method)

	resp, data = env.call(t, http.MethodPost, refundPath, "owner", map[string]any{"method": "cash"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "REFUND_ALREADY_PROCESSED", errorCode(t, data))

	resp, data = env.call(t, http.MethodGet, "/api/cancellations/"+created.ID, "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var detail struct {
		Cancellation struct {
			RefundStatus string `json:"refund_status"`
		} `json:"cancellation"`
		Refund *struct {
			Amount string `json:"amount"`
		} `json:"refund"`
		Audit []struct {
			Action string `json:"action"`
		} `json:"audit"`
	}
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, "completed", detail.Cancellation.RefundStatus)
	require.NotNil(t, detail.Refund)
	require.Len(t, detail.Audit, 2)
	assert.Equal(t, "created", detail.Audit[0].Action)
	assert.Equal(t, "refund_processed", detail.Audit[1].Action)
}

func TestCancelacion_SinReembolso(t *testing.T) {
	env := newTestEnv(t)
	_, saleID := saleWithTwoUnits(t, env)

	resp, data := env.call(t, http.MethodPost, "/api/cancellations", "admin", map[string]any{
		"sale_id": saleID, "reason_code": "01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &created))

	resp, data = env.call(t, http.MethodPost, "/api/cancellations/"+created.ID+"/refund", "owner", map[string]any{"method": "transfer"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "REFUND_NOT_REQUIRED", errorCode(t, data))
}

func TestCancelacion_ValidacionYNoEncontrada(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.call(t, http.MethodPost, "/api/cancellations", "owner", map[string]any{
		"sale_id": "cualquiera", "reason_code": "99",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, data))

	resp, data = env.call(t, http.MethodPost, "/api/cancellations", "owner", map[string]any{
		"sale_id": "no-existe", "reason_code": "01",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, data))

	resp, _ = env.call(t, http.MethodGet, "/api/cancellations/no-existe", "owner", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas y ticket
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_TicketPDF(t *testing.T) {
	env := newTestEnv(t)
	_, saleID := saleWithTwoUnits(t, env)

	resp, data := env.call(t, http.MethodGet, "/api/sales/"+saleID+"/ticket", "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ticket-"+saleID+".pdf")
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestVenta_NoEncontradaYSinToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.call(t, http.MethodGet, "/api/sales/no-existe", "cashier", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.call(t, http.MethodGet, "/api/sales/no-existe/ticket", "-", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado y reporte
// ──────────────────────────────────────────────────────────────────────────────

type listedSale struct {
	ID                     string  `json:"id"`
	Cancelled              bool    `json:"cancelled"`
	CanCancel              bool    `json:"can_cancel"`
	DaysRemaining          int     `json:"days_remaining"`
	CancellationReasonCode *string `json:"cancellation_reason_code"`
	RefundStatus           *string `json:"refund_status"`
}

func (e *testEnv) listSales(t *testing.T, query string) []listedSale {
	t.Helper()
	resp, data := e.call(t, http.MethodGet, "/api/cancellations"+query, "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var out struct {
		Sales []listedSale `json:"sales"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	return out.Sales
}

func TestCancelaciones_ListadoConElegibilidad(t *testing.T) {
	env := newTestEnv(t)
	_, saleID := saleWithTwoUnits(t, env)

	sales := env.listSales(t, "")
	require.Len(t, sales, 1)
	assert.True(t, sales[0].CanCancel)
	assert.Equal(t, 90, sales[0].DaysRemaining)
	assert.Nil(t, sales[0].CancellationReasonCode)

	resp, data := env.call(t, http.MethodPost, "/api/cancellations", "owner", map[string]any{
		"sale_id": saleID, "reason_code": "01", "requires_refund": true, "refund_method": "cash",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	sales = env.listSales(t, "?status=cancelled")
	require.Len(t, sales, 1)
	assert.Equal(t, saleID, sales[0].ID)
	assert.True(t, sales[0].Cancelled)
	assert.False(t, sales[0].CanCancel)
	require.NotNil(t, sales[0].CancellationReasonCode)
	assert.Equal(t, "01", *sales[0].CancellationReasonCode)
	require.NotNil(t, sales[0].RefundStatus)
	assert.Equal(t, "pending", *sales[0].RefundStatus)

	assert.Empty(t, env.listSales(t, "?status=active"))

	resp, data = env.call(t, http.MethodGet, "/api/cancellations?status=todas", "cashier", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, data))

	resp, data = env.call(t, http.MethodGet, "/api/cancellations?limit=muchas", "cashier", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUERY", errorCode(t, data))

	resp, _ = env.call(t, http.MethodGet, "/api/cancellations", "-", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCancelaciones_ReporteSoloOwnerYAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, saleID := saleWithTwoUnits(t, env)
	resp, data := env.call(t, http.MethodPost, "/api/cancellations", "manager", map[string]any{
		"sale_id": saleID, "reason_code": "02", "requires_refund": true, "refund_method": "transfer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	resp, _ = env.call(t, http.MethodGet, "/api/cancellations/report/summary", "manager", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, data = env.call(t, http.MethodGet, "/api/cancellations/report/summary", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var report struct {
		Summary []struct {
			ReasonCode         string `json:"cancellation_reason_code"`
			TotalCancellations int64  `json:"total_cancellations"`
			RefundsRequired    int64  `json:"refunds_required"`
			RefundsPending     int64  `json:"refunds_pending"`
			TotalRefundAmount  string `json:"total_refund_amount"`
		} `json:"summary"`
		Totals struct {
			TotalCancellations int64  `json:"total_cancellations"`
			TotalRefundAmount  string `json:"total_refund_amount"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Summary, 1)
	assert.Equal(t, "02", report.Summary[0].ReasonCode)
	assert.Equal(t, int64(1), report.Summary[0].TotalCancellations)
	assert.Equal(t, int64(1), report.Summary[0].RefundsRequired)
	assert.Equal(t, int64(1), report.Summary[0].RefundsPending)
	assert.Equal(t, "30", report.Summary[0].TotalRefundAmount)
	assert.Equal(t, int64(1), report.Totals.TotalCancellations)
	assert.Equal(t, "30", report.Totals.TotalRefundAmount)

	resp, data = env.call(t, http.MethodGet, "/api/cancellations/report/summary?startDate=ayer", "owner", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, data))
}
