package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret = "secreto-de-prueba"
	issuer = "pos-sync-test"
)

var cashier = Identity{UserID: "u-1", BusinessID: "b-1", Role: "cashier"}

func TestVerify_TokenValido(t *testing.T) {
	tok, err := Issue(secret, issuer, cashier, time.Hour)
	require.NoError(t, err)

	id, err := NewVerifier(secret, issuer).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, cashier, id)
}

func TestVerify_Rechazos(t *testing.T) {
	valid, err := Issue(secret, issuer, cashier, time.Hour)
	require.NoError(t, err)
	expired, err := Issue(secret, issuer, cashier, -time.Hour)
	require.NoError(t, err)
	otherIssuer, err := Issue(secret, "otro", cashier, time.Hour)
	require.NoError(t, err)
	hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, gojwt.MapClaims{
		"business_id": "b-1",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]struct {
		verifier *Verifier
		token    string
	}{
		"expirado":           {NewVerifier(secret, issuer), expired},
		"secret incorrecto":  {NewVerifier("otro-secret", issuer), valid},
		"emisor distinto":    {NewVerifier(secret, issuer), otherIssuer},
		"algoritmo no HS256": {NewVerifier(secret, issuer), hs512},
		"basura":             {NewVerifier(secret, issuer), "token.invalido.aqui"},
		"secret vacío":       {NewVerifier("", issuer), valid},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.verifier.Verify(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestVerify_SinEmisorConfiguradoAceptaCualquiera(t *testing.T) {
	tok, err := Issue(secret, "cualquiera", cashier, time.Hour)
	require.NoError(t, err)
	_, err = NewVerifier(secret, "").Verify(tok)
	assert.NoError(t, err)
}

func TestIssue_SecretVacio(t *testing.T) {
	_, err := Issue("", issuer, cashier, time.Hour)
	assert.Error(t, err)
}
