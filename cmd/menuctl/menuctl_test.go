package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Lixing-Zhang/qr-menu/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runMenuctl(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file="}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestBlocks_JSON(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "memory")

	out, err := runMenuctl(t, "blocks")
	require.NoError(t, err)

	var blocks []models.Block
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	require.NotEmpty(t, blocks)
	assert.Equal(t, "oysterBar", blocks[0].BlockName)

	for _, b := range blocks {
		for _, p := range b.Products {
			assert.True(t, p.Available)
			assert.Equal(t, b.ID, p.Category)
		}
	}
}

func TestBlocks_YAMLSingleBlock(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "memory")

	out, err := runMenuctl(t, "blocks", "--format", "yaml", "--name", "oysterBar")
	require.NoError(t, err)

	var blocks []yamlBlock
	require.NoError(t, yaml.Unmarshal([]byte(out), &blocks))
	require.Len(t, blocks, 1)
	assert.Equal(t, "oysterBar", blocks[0].BlockName)
	require.Len(t, blocks[0].Products, 2)
	assert.Equal(t, "65", blocks[0].Products[0].Price)
	assert.Equal(t, "95", blocks[0].Products[1].Price)
}

func TestBlocks_Errors(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "memory")

	_, err := runMenuctl(t, "blocks", "--name", "wine")
	assert.ErrorContains(t, err, `block "wine" not found`)

	_, err = runMenuctl(t, "blocks", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestPing(t *testing.T) {
	var hits atomic.Int32
	zones := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		zones <- r.URL.Query().Get("zone")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	t.Setenv("CATALOG_SOURCE", "memory")
	t.Setenv("TRACK_URL", srv.URL+"/api/user")
	state := filepath.Join(t.TempDir(), "state.db")

	out, err := runMenuctl(t, "ping", "--zone", "kiosk-1", "--state", state)
	require.NoError(t, err)
	assert.Contains(t, out, `ping sent for zone "kiosk-1"`)
	assert.Equal(t, "kiosk-1", <-zones)

	out, err = runMenuctl(t, "ping", "--zone", "kiosk-1", "--state", state)
	require.NoError(t, err)
	assert.Contains(t, out, "ping skipped")
	assert.Equal(t, int32(1), hits.Load())
}

func TestPing_TrackingDisabled(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "memory")
	t.Setenv("TRACK_URL", "off")

	_, err := runMenuctl(t, "ping", "--state", filepath.Join(t.TempDir(), "state.db"))
	assert.ErrorContains(t, err, "tracking is disabled")
}
