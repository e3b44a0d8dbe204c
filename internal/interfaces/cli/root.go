// Package cli implementa posctl, la herramienta de operador: migraciones, reenvío de lotes
// capturados, reemplazo del catálogo de un negocio y emisión de tokens de prueba.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/pos-sync/internal/app"
	"github.com/jhoicas/pos-sync/pkg/config"
	"github.com/jhoicas/pos-sync/pkg/logger"
)

// RootOptions flags globales de todos los comandos.
type RootOptions struct {
	Format   string // "text" | "json" | "yaml"
	LogLevel string

	// Build arma los componentes; en pruebas se reemplaza por un almacén en memoria.
	Build func(ctx context.Context, opts app.Options) (*app.Components, error)
	// LoadConfig lee la configuración del entorno.
	LoadConfig func() (*config.Config, error)
}

// ValidFormats formatos de salida permitidos.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand crea el comando raíz de posctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LoadConfig: config.Load}
	opts.Build = opts.buildFromConfig

	cmd := &cobra.Command{
		Use:   "posctl",
		Short: "Herramienta de operador del servidor de sincronización POS",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("formato inválido %q: debe ser uno de %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "nivel de log")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewResyncCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func (o *RootOptions) buildFromConfig(ctx context.Context, opts app.Options) (*app.Components, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: o.LogLevel, Service: "posctl"})
	return app.Build(ctx, cfg, log, opts)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// writeOutput imprime v como JSON indentado, YAML o con la función de texto.
// YAML reutiliza los nombres de campo de JSON.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}
