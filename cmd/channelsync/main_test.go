package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tradeapp "github.com/erp/channelsync/internal/application/trade"
	"github.com/erp/channelsync/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `channels:
  - code: web
    name: Web shop
    source: webshop
    company_id: 6f1c2d3e-0000-4000-8000-000000000001
    warehouse_id: 6f1c2d3e-0000-4000-8000-000000000002
    currency: EUR
    payment_term_id: 6f1c2d3e-0000-4000-8000-000000000003
    mappings:
      - {status: paid, action: process_automatically, invoice_method: order, shipment_method: order}
users:
  - {username: clerk, current_channel: web, create: [web], read: [web]}
`

// cliEnv points every command at one sqlite file in a temp dir
type cliEnv struct {
	t   *testing.T
	dir string
	cfg *config.Config
}

func newCLIEnv(t *testing.T) *cliEnv {
	dir := t.TempDir()
	return &cliEnv{
		t:   t,
		dir: dir,
		cfg: &config.Config{
			App:      config.AppConfig{Name: "channelsync", Env: "test"},
			Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "channelsync.db")},
			Lock:     config.LockConfig{Backend: config.LockBackendMemory},
			Event:    config.EventConfig{Publisher: config.PublisherMemory},
			Sync:     config.SyncConfig{BatchConcurrency: 2},
			JWT:      config.JWTConfig{Secret: "test-secret-key-with-32-characters!", Issuer: "channelsync"},
			Log:      config.LogConfig{Level: "error"},
		},
	}
}

func (e *cliEnv) writeFile(name, content string) string {
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (e *cliEnv) run(args ...string) (string, error) {
	a := defaultApp()
	a.loadConfig = func(string) (*config.Config, error) {
		cfg := *e.cfg
		return &cfg, nil
	}

	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateUp_SQLiteCreatesTables(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("migrate", "up")
	require.NoError(t, err)

	out, err := env.run("seed", "--file", env.writeFile("seed.yaml", seedYAML))
	require.NoError(t, err)
	assert.Contains(t, out, `"channels_created": 1`)
	assert.Contains(t, out, `"users": 1`)

	// seeding is repeatable
	out, err = env.run("seed", "--file", env.writeFile("seed.yaml", seedYAML))
	require.NoError(t, err)
	assert.Contains(t, out, `"channels_updated": 1`)
}

func TestMigrateVersion_RequiresPostgres(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("migrate", "version")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestMigrateList(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("migrate", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "000001_channel_sync")
}

func TestMigrateSteps_InvalidCount(t *testing.T) {
	env := newCLIEnv(t)
	env.cfg.Database.Driver = config.DriverPostgres

	_, err := env.run("migrate", "steps", "two")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid step count")
}

func TestBatch_ReportsPerOrderFailures(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("migrate", "up")
	require.NoError(t, err)

	missing := uuid.New()
	file := env.writeFile("batch.yaml", "requests:\n  - {order_id: "+missing.String()+", status: paid}\n")

	out, err := env.run("batch", "--file", file, "--strict")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 orders failed")

	var result tradeapp.BatchSyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Results, 1)
	assert.Equal(t, missing, result.Results[0].OrderID)
	assert.Equal(t, "NOT_FOUND", result.Results[0].ErrorCode)
	assert.Equal(t, 1, result.Failed)
}

func TestBatch_RequiresFile(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("batch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestSync_InvalidOrderID(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("sync", "not-a-uuid", "paid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order id")
}

func TestSync_UnknownOrder(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("migrate", "up")
	require.NoError(t, err)

	_, err = env.run("sync", uuid.NewString(), "paid")

	require.Error(t, err)
}

func TestExceptions_UnknownOrder(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("migrate", "up")
	require.NoError(t, err)

	_, err = env.run("exceptions", uuid.NewString())

	require.Error(t, err)
}

func TestToken_IssuesForSeededUser(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("migrate", "up")
	require.NoError(t, err)
	_, err = env.run("seed", "--file", env.writeFile("seed.yaml", seedYAML))
	require.NoError(t, err)

	out, err := env.run("token", "clerk")
	require.NoError(t, err)

	var token tokenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &token))
	assert.Equal(t, 3, len(strings.Split(token.Token, ".")))
}

func TestToken_RequiresSecret(t *testing.T) {
	env := newCLIEnv(t)
	env.cfg.JWT.Secret = ""

	_, err := env.run("token", "clerk")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestParseBatchFile(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name    string
		input   string
		wantErr string
		strict  bool
	}{
		{
			name:   "valid",
			input:  "strict: true\nrequests:\n  - {order_id: " + orderID.String() + ", status: paid}\n",
			strict: true,
		},
		{
			name:    "unknown field",
			input:   "requests:\n  - {order_id: " + orderID.String() + ", state: paid}\n",
			wantErr: "failed to parse",
		},
		{
			name:    "bad uuid",
			input:   "requests:\n  - {order_id: nope, status: paid}\n",
			wantErr: "failed to parse",
		},
		{
			name:    "missing status",
			input:   "requests:\n  - {order_id: " + orderID.String() + "}\n",
			wantErr: "invalid batch file",
		},
		{
			name:    "blank status",
			input:   "requests:\n  - {order_id: " + orderID.String() + ", status: \"  \"}\n",
			wantErr: "invalid batch file",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: "invalid batch file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseBatchFile(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.strict, req.Strict)
			require.Len(t, req.Requests, 1)
			assert.Equal(t, orderID, req.Requests[0].OrderID)
			assert.Equal(t, "paid", req.Requests[0].Status)
		})
	}
}
