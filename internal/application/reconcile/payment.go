package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

var paymentVocabulary = map[string]string{
	"efectivo":      entity.PaymentCash,
	"tarjeta":       entity.PaymentCard,
	"transferencia": entity.PaymentTransfer,
	"otro":          entity.PaymentOther,
	"cash":          entity.PaymentCash,
	"card":          entity.PaymentCard,
	"transfer":      entity.PaymentTransfer,
	"other":         entity.PaymentOther,
}

// NormalizePaymentMethod traduce el vocabulario del dispositivo al del servidor.
// Ignora mayúsculas, acentos y espacios; cualquier valor desconocido queda como "other".
func NormalizePaymentMethod(raw string) string {
	if m, ok := paymentVocabulary[foldKey(raw)]; ok {
		return m
	}
	return entity.PaymentOther
}

func foldKey(s string) string {
	s = strings.TrimSpace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return cases.Fold().String(s)
}
