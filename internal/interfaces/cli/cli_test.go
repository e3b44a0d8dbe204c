package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/pos-sync/internal/app"
	"github.com/jhoicas/pos-sync/internal/application/dto"
	"github.com/jhoicas/pos-sync/pkg/config"
	"github.com/jhoicas/pos-sync/pkg/jwt"
	"github.com/jhoicas/pos-sync/pkg/logger"
)

const testBusiness = "biz-cli"

// memoryOptions comparte un solo almacén en memoria entre comandos.
func memoryOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	cfg := &config.Config{
		App:    config.AppConfig{Name: "posctl-test"},
		Store:  config.StoreConfig{Driver: config.StoreDriverMemory},
		Notify: config.NotifyConfig{Buffer: 4},
		Sync:   config.SyncConfig{MaxBatchSize: 100},
	}
	log := logger.New(logger.Config{Level: "error", Out: io.Discard})
	c, err := app.Build(context.Background(), cfg, log, app.Options{})
	require.NoError(t, err)
	return &RootOptions{
		Format: format,
		Build: func(context.Context, app.Options) (*app.Components, error) {
			return c, nil
		},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPush_AplicaLoteDesdeArchivo(t *testing.T) {
	opts := memoryOptions(t, "json")
	file := writeFile(t, "lote.json", `{"changes": [
		{"entityName": "products", "operation": "CREATE", "payload": {"id": "l1", "name": "Agua", "stock": 10}},
		{"entityName": "sales", "operation": "CREATE", "payload": {"total": 15, "payment_type": "tarjeta",
			"items": [{"product_id": "l1", "quantity": 1, "unit_price": 15}]}},
		{"operation": "CREATE"}
	]}`)

	buf := &bytes.Buffer{}
	cmd := NewPushCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{file, "--business", testBusiness})
	require.NoError(t, cmd.Execute())

	var res dto.BatchResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)

	c, _ := opts.Build(context.Background(), app.Options{})
	snap, err := c.Pull.Snapshot(context.Background(), testBusiness)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, int64(9), snap.Products[0].Stock)
}

func TestPush_ArregloDirectoYSalidaTexto(t *testing.T) {
	opts := memoryOptions(t, "text")
	file := writeFile(t, "lote.json", `[{"entityName": "categories", "operation": "CREATE", "payload": {"name": "Bebidas"}}]`)

	buf := &bytes.Buffer{}
	cmd := NewPushCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{file, "--business", testBusiness})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Aplicados: 1  Fallidos: 0")
}

func TestPush_Errores(t *testing.T) {
	opts := memoryOptions(t, "text")

	cmd := NewPushCommand(opts)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{writeFile(t, "a.json", `[]`)})
	assert.ErrorContains(t, cmd.Execute(), "--business")

	cmd = NewPushCommand(opts)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{writeFile(t, "b.json", `{"changes": {}}`), "--business", testBusiness})
	assert.ErrorContains(t, cmd.Execute(), "arreglo")

	cmd = NewPushCommand(opts)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "no-existe.json"), "--business", testBusiness})
	assert.Error(t, cmd.Execute())
}

func TestResync_ReemplazaCatalogo(t *testing.T) {
	opts := memoryOptions(t, "json")
	file := writeFile(t, "productos.json", `[
		{"id": "p1", "name": "Pan", "price": "2.50"},
		{"id": "p2"}
	]`)

	buf := &bytes.Buffer{}
	cmd := NewResyncCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{file, "--business", testBusiness})
	require.NoError(t, cmd.Execute())

	var out dto.FullSyncResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.Count)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, "p2", out.Failed[0].ID)
}

func TestResync_SalidaYAML(t *testing.T) {
	opts := memoryOptions(t, "yaml")
	file := writeFile(t, "productos.json", `{"products": [{"id": "p1", "name": "Pan"}]}`)

	buf := &bytes.Buffer{}
	cmd := NewResyncCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{file, "--business", testBusiness})
	require.NoError(t, cmd.Execute())

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 1, out["count"])
	assert.Equal(t, "Productos sincronizados", out["message"])
}

func TestMigrate_RequierePostgres(t *testing.T) {
	opts := memoryOptions(t, "text")
	cmd := NewMigrateCommand(opts)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{})
	assert.ErrorContains(t, cmd.Execute(), "STORE_DRIVER=postgres")
}

func TestRoot_FormatoInvalido(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--format", "xml", "push", "x.json"})
	assert.ErrorContains(t, cmd.Execute(), "formato inválido")
}

func tokenOptions(format string) *RootOptions {
	return &RootOptions{
		Format: format,
		LoadConfig: func() (*config.Config, error) {
			return &config.Config{JWT: config.JWTConfig{Secret: "secreto-cli", Issuer: "pos-sync", Expiration: 30}}, nil
		},
	}
}

func TestToken_EmiteTokenVerificable(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTokenCommand(tokenOptions("json"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--business", testBusiness, "--role", "manager"})
	require.NoError(t, cmd.Execute())

	var out TokenResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "manager", out.Role)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), out.ExpiresAt, time.Minute)

	id, err := jwt.NewVerifier("secreto-cli", "pos-sync").Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, testBusiness, id.BusinessID)
	assert.Equal(t, "posctl", id.UserID)
}

func TestToken_Errores(t *testing.T) {
	cmd := NewTokenCommand(tokenOptions("text"))
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{})
	assert.ErrorContains(t, cmd.Execute(), "--business")

	cmd = NewTokenCommand(tokenOptions("text"))
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--business", testBusiness, "--role", "superuser"})
	assert.ErrorContains(t, cmd.Execute(), "rol inválido")
}
