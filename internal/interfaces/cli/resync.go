package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/pos-sync/internal/app"
	"github.com/jhoicas/pos-sync/internal/application/dto"
)

// NewResyncCommand crea el comando resync: reemplaza el catálogo de un negocio.
func NewResyncCommand(rootOpts *RootOptions) *cobra.Command {
	var businessID string
	cmd := &cobra.Command{
		Use:   "resync <productos.json>",
		Short: "Reemplaza todos los productos de un negocio",
		Long: `Borra los productos del negocio e inserta los del archivo conservando sus ids.

El archivo puede ser { "products": [...] } o directamente el arreglo.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if businessID == "" {
				return fmt.Errorf("--business es obligatorio")
			}
			products, err := readProducts(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := rootOpts.Build(ctx, app.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.FullReplace.Replace(ctx, businessID, products)
			if err != nil {
				return err
			}
			out := dto.FullSyncResponse{Success: true, Message: "Productos sincronizados", Count: res.Count}
			for _, f := range res.Failed {
				out.Failed = append(out.Failed, dto.FullSyncFailedItem{Index: f.Index, ID: f.ID, Error: f.Err.Error()})
			}
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format, out, func(w io.Writer) {
				fmt.Fprintf(w, "Eliminados: %d  Insertados: %d  Omitidos: %d\n", res.Deleted, res.Count, len(res.Failed))
				for _, f := range out.Failed {
					fmt.Fprintf(w, "  ✗ #%d %s: %s\n", f.Index, f.ID, f.Error)
				}
			})
		},
	}
	cmd.Flags().StringVar(&businessID, "business", "", "negocio cuyo catálogo se reemplaza")
	return cmd
}

func readProducts(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		raw = append(append([]byte(`{"products":`), raw...), '}')
	}
	var in dto.FullSyncRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if in.Products == nil {
		return nil, fmt.Errorf("%s: products debe ser un arreglo", path)
	}
	return in.Products, nil
}
