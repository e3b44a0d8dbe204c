package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/pos-sync/internal/app"
	"github.com/jhoicas/pos-sync/internal/application/reconcile"
)

type pushOptions struct {
	businessID string
	userID     string
}

// NewPushCommand crea el comando push: reaplica un lote capturado de un dispositivo.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &pushOptions{}
	cmd := &cobra.Command{
		Use:   "push <archivo.json>",
		Short: "Aplica un lote de cambios offline guardado en un archivo",
		Long: `Aplica un lote de cambios como si llegara por POST /api/sync/push.

El archivo puede ser { "changes": [...] } o directamente el arreglo de cambios.
Los cambios se aplican en orden y un fallo no detiene el resto.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.businessID == "" {
				return fmt.Errorf("--business es obligatorio")
			}
			entries, err := readChanges(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := rootOpts.Build(ctx, app.Options{Notify: true})
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Orchestrator.Push(ctx, reconcile.Actor{BusinessID: opts.businessID, UserID: opts.userID}, entries)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format, res, func(w io.Writer) {
				fmt.Fprintf(w, "Aplicados: %d  Fallidos: %d\n", res.Success, res.Failed)
				for _, e := range res.Errors {
					fmt.Fprintf(w, "  ✗ #%d [%s] %s\n", e.Index, e.Code, e.Error)
				}
			})
		},
	}
	cmd.Flags().StringVar(&opts.businessID, "business", "", "negocio dueño de los cambios")
	cmd.Flags().StringVar(&opts.userID, "user", "", "usuario que se registra en ventas y movimientos")
	return cmd
}

func readChanges(path string) ([]json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var wrapped struct {
			Changes json.RawMessage `json:"changes"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		raw = bytes.TrimSpace(wrapped.Changes)
	}
	var entries []json.RawMessage
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &entries) != nil {
		return nil, fmt.Errorf("%s: changes debe ser un arreglo", path)
	}
	return entries, nil
}
