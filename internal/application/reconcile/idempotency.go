package reconcile

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

// CheckDuplicateSale busca una venta previa del negocio con el mismo clientSaleId.
// Sin clientSaleId no hay verificación: clientes antiguos no lo envían y se aplica siempre.
func CheckDuplicateSale(ctx context.Context, sales repository.SaleRepository, businessID, clientSaleID string) (string, bool, error) {
	if clientSaleID == "" {
		return "", false, nil
	}
	existing, err := sales.FindByClientSaleID(ctx, businessID, clientSaleID)
	if err != nil {
		return "", false, fmt.Errorf("buscar venta por client_sale_id: %w", err)
	}
	if existing == nil {
		return "", false, nil
	}
	return existing.ID, true, nil
}
