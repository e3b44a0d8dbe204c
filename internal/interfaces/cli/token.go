package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/pkg/jwt"
)

// TokenResult salida del comando token.
type TokenResult struct {
	Token      string    `json:"token"`
	BusinessID string    `json:"business_id"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewTokenCommand emite un token firmado con JWT_SECRET para probar terminales contra un servidor.
func NewTokenCommand(root *RootOptions) *cobra.Command {
	var businessID, userID, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token de acceso para un negocio y rol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if businessID == "" {
				return fmt.Errorf("--business es obligatorio")
			}
			if !validRole(role) {
				return fmt.Errorf("rol inválido %q", role)
			}
			cfg, err := root.LoadConfig()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.JWT.Expiration) * time.Minute
			}
			tok, err := jwt.Issue(cfg.JWT.Secret, cfg.JWT.Issuer, jwt.Identity{
				UserID:     userID,
				BusinessID: businessID,
				Role:       role,
			}, ttl)
			if err != nil {
				return err
			}
			res := TokenResult{Token: tok, BusinessID: businessID, Role: role, ExpiresAt: time.Now().Add(ttl).UTC()}
			return writeOutput(cmd.OutOrStdout(), root.Format, res, func(w io.Writer) {
				fmt.Fprintln(w, res.Token)
			})
		},
	}

	cmd.Flags().StringVar(&businessID, "business", "", "id del negocio")
	cmd.Flags().StringVar(&userID, "user", "posctl", "id del usuario")
	cmd.Flags().StringVar(&role, "role", entity.RoleCashier, "rol (owner|admin|manager|cashier)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "vigencia; por defecto JWT_EXPIRATION_MINUTES")
	return cmd
}

func validRole(role string) bool {
	switch role {
	case entity.RoleOwner, entity.RoleAdmin, entity.RoleManager, entity.RoleCashier:
		return true
	}
	return false
}
