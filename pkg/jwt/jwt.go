package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity es lo que el servidor de sincronización necesita de un token: quién, en qué negocio y con qué rol.
type Identity struct {
	UserID     string
	BusinessID string
	Role       string // "owner" | "admin" | "manager" | "cashier"
}

type claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	Role       string `json:"role"`
}

var errEmptySecret = errors.New("jwt: secret vacío")

// Verifier valida tokens HS256 emitidos por el servicio de autenticación.
// Si issuer no es vacío se exige que coincida con el claim iss.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier crea un verificador. El leeway tolera relojes desfasados entre terminales y servidor.
func NewVerifier(secret, issuer string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}
}

// Verify valida firma, expiración y emisor, y devuelve la identidad del token.
func (v *Verifier) Verify(token string) (Identity, error) {
	if len(v.secret) == 0 {
		return Identity{}, errEmptySecret
	}
	var c claims
	if _, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return v.secret, nil }); err != nil {
		return Identity{}, fmt.Errorf("jwt: %w", err)
	}
	userID := c.UserID
	if userID == "" {
		userID = c.Subject
	}
	return Identity{UserID: userID, BusinessID: c.BusinessID, Role: c.Role}, nil
}

// Issue firma un token para la identidad dada. Lo usan las herramientas de operación y los tests;
// en producción los tokens llegan del servicio de autenticación.
func Issue(secret, issuer string, id Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:     id.UserID,
		BusinessID: id.BusinessID,
		Role:       id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}
