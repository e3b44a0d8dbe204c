// Package reconcile aplica al almacén compartido los cambios que los dispositivos
// acumularon sin conexión: altas, modificaciones y bajas genéricas, ventas completas
// con sus líneas y descuento de stock, y el reemplazo total del catálogo.
package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Operation tipo de mutación de un registro de cambio.
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// EntitySales colección de ventas; sus CREATE con items van al SaleReconciler.
const EntitySales = "sales"

// ChangeRecord es una mutación enviada por un dispositivo, ya validada en su forma.
type ChangeRecord struct {
	EntityName string
	Operation  Operation
	Payload    map[string]any
}

// wireChange acepta tanto los nombres actuales (entityName, payload) como los
// de clientes anteriores (table_name, data).
type wireChange struct {
	EntityName string          `json:"entityName"`
	TableName  string          `json:"table_name"`
	Operation  string          `json:"operation"`
	Payload    json.RawMessage `json:"payload"`
	Data       json.RawMessage `json:"data"`
}

// ParseChange interpreta una entrada del lote. Devuelve domain.ErrMalformedRecord si falta
// la entidad o la operación, si la operación no es CREATE/UPDATE/DELETE, si el payload
// no es un objeto (o un string con un objeto) o si UPDATE/DELETE no traen id.
func ParseChange(raw json.RawMessage) (ChangeRecord, error) {
	var w wireChange
	if err := json.Unmarshal(raw, &w); err != nil {
		return ChangeRecord{}, malformed("la entrada no es un objeto JSON")
	}

	name := strings.TrimSpace(w.EntityName)
	if name == "" {
		name = strings.TrimSpace(w.TableName)
	}
	if name == "" {
		return ChangeRecord{}, malformed("falta entityName")
	}
	if strings.TrimSpace(w.Operation) == "" {
		return ChangeRecord{}, malformed("falta operation")
	}
	op := Operation(strings.ToUpper(strings.TrimSpace(w.Operation)))
	switch op {
	case OpCreate, OpUpdate, OpDelete:
	default:
		return ChangeRecord{}, malformed(fmt.Sprintf("operación desconocida %q", w.Operation))
	}

	rawPayload := w.Payload
	if isEmptyJSON(rawPayload) {
		rawPayload = w.Data
	}
	payload, err := decodePayload(rawPayload)
	if err != nil {
		return ChangeRecord{}, malformed(err.Error())
	}

	rec := ChangeRecord{
		EntityName: strings.ToLower(name),
		Operation:  op,
		Payload:    payload,
	}
	if op != OpCreate && rec.ID() == "" {
		return ChangeRecord{}, malformed(fmt.Sprintf("%s requiere id en el payload", op))
	}
	return rec, nil
}

// ID devuelve el identificador que trae el payload (local en CREATE, del servidor en UPDATE/DELETE).
func (r ChangeRecord) ID() string {
	s, _ := asString(r.Payload["id"])
	return s
}

// IsSale indica si el registro es una venta completa (CREATE de sales con items).
func (r ChangeRecord) IsSale() bool {
	if r.EntityName != EntitySales || r.Operation != OpCreate {
		return false
	}
	_, ok := r.Payload["items"]
	return ok
}

func decodePayload(raw json.RawMessage) (map[string]any, error) {
	data := bytes.TrimSpace(raw)
	if isEmptyJSON(data) {
		return nil, errors.New("falta payload")
	}
	// Algunos clientes envían el payload serializado como string.
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("payload inválido: %v", err)
		}
		data = bytes.TrimSpace([]byte(s))
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("payload inválido: %v", err)
	}
	if m == nil {
		return nil, errors.New("falta payload")
	}
	return m, nil
}

func isEmptyJSON(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
