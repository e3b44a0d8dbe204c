package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jhoicas/pos-sync/internal/app"
	"github.com/jhoicas/pos-sync/internal/infrastructure/postgres"
)

// MigrateResult migraciones aplicadas en esta ejecución.
type MigrateResult struct {
	Applied []string `json:"applied"`
}

// NewMigrateCommand crea el comando migrate.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "migrate",
		Short:         "Aplica las migraciones pendientes en PostgreSQL",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rootOpts.Build(ctx, app.Options{})
			if err != nil {
				return err
			}
			defer c.Close()
			if c.Pool == nil {
				return fmt.Errorf("migrate requiere STORE_DRIVER=postgres")
			}

			applied, err := postgres.Migrate(ctx, c.Pool)
			if err != nil {
				return err
			}
			res := MigrateResult{Applied: applied}
			if res.Applied == nil {
				res.Applied = []string{}
			}
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format, res, func(w io.Writer) {
				if len(applied) == 0 {
					fmt.Fprintln(w, "Esquema al día, nada que aplicar")
					return
				}
				for _, name := range applied {
					fmt.Fprintf(w, "✓ %s\n", name)
				}
			})
		},
	}
}
