package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/osubuf/pkg/api"
	"github.com/ssargent/osubuf/pkg/config"
	"github.com/ssargent/osubuf/pkg/di"
	"github.com/ssargent/osubuf/pkg/layout"
	"github.com/ssargent/osubuf/pkg/storage"
)

var pointLayout = layout.Layout{
	Name: "point",
	Fields: []layout.Field{
		{Name: "x", Type: layout.TypeInt16},
		{Name: "y", Type: layout.TypeInt16},
		{Name: "label", Type: layout.TypeString},
	},
}

// 1, -2, "hi"
const pointHex = "0100feff0b026869"

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Logging.Level = "error"
	cfg.Layouts = []layout.Layout{pointLayout}

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, path))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVarintCommands(t *testing.T) {
	out, err := run(t, "", "varint", "encode", "300")
	require.NoError(t, err)
	assert.Equal(t, "ac02\n", out)

	out, err = run(t, "", "varint", "decode", "ac02")
	require.NoError(t, err)
	assert.Equal(t, "300 (2 bytes)\n", out)

	_, err = run(t, "", "varint", "decode", "80")
	assert.Error(t, err)

	_, err = run(t, "", "varint", "encode", "-1")
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osubuf.yaml")
	dataDir := filepath.Join(dir, "data")

	out, err := run(t, "", "init", "--config", path, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written")
	assert.DirExists(t, dataDir)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Len(t, cfg.Security.APIKey, 64)

	out, err = run(t, "", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, err = run(t, "", "init", "--config", path, "--data-dir", dataDir, "--force")
	require.NoError(t, err)
	again, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Security.APIKey, again.Security.APIKey)
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := run(t, "", "layouts", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLayoutsCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := run(t, "", "layouts", "--config", cfgPath)
	require.NoError(t, err)
	for _, name := range []string{"osr-header", "score-entry", "point"} {
		assert.Contains(t, out, name)
	}

	out, err = run(t, "", "layouts", "show", "point", "--config", cfgPath, "-o", "json")
	require.NoError(t, err)
	var l layout.Layout
	require.NoError(t, json.Unmarshal([]byte(out), &l))
	assert.Equal(t, pointLayout, l)

	_, err = run(t, "", "layouts", "show", "missing", "--config", cfgPath)
	assert.ErrorIs(t, err, layout.ErrUnknownLayout)
}

func TestEncodeDecodeCommands(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := run(t, `{"x": 1, "y": -2, "label": "hi"}`, "encode", "point", "--hex", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, pointHex+"\n", out)

	out, err = run(t, `{"x": 1, "y": -2, "label": "hi"}`, "encode", "point", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "\x01\x00\xfe\xff\x0b\x02hi", out)

	binPath := filepath.Join(t.TempDir(), "point.bin")
	_, err = run(t, `{"x": 1, "y": -2, "label": "hi"}`, "encode", "point", "--out", binPath, "--config", cfgPath)
	require.NoError(t, err)

	out, err = run(t, "", "decode", "point", binPath, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "label")
	assert.Contains(t, out, `"hi"`)
	assert.Contains(t, out, "-2")

	out, err = run(t, pointHex+pointHex, "decode", "point", "--hex", "--all", "-o", "json", "--config", cfgPath)
	require.NoError(t, err)
	var recs []struct {
		Layout string `json:"layout"`
		Size   int    `json:"size"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, 8, recs[1].Size)

	out, err = run(t, pointHex, "decode", "point", "--hex", "--offset", "4", "-o", "json", "--config", cfgPath)
	require.Error(t, err, "a record starting mid-payload runs out of bytes")
	assert.Empty(t, out)

	_, err = run(t, `{"x": 1}`, "encode", "point", "--config", cfgPath)
	assert.ErrorIs(t, err, layout.ErrMissingField)

	_, err = run(t, "zz", "decode", "point", "--hex", "--config", cfgPath)
	assert.Error(t, err)
}

func TestArchiveCommands(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := run(t, pointHex, "archive", "put", "point", "--hex", "--config", cfgPath)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(t, "", "archive", "list", "-o", "json", "--config", cfgPath)
	require.NoError(t, err)
	var entries []entryView
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, "point", entries[0].Layout)
	assert.Equal(t, 8, entries[0].Size)

	out, err = run(t, "", "archive", "get", id, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"hi"`)

	out, err = run(t, "", "archive", "get", id, "--raw", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "\x01\x00\xfe\xff\x0b\x02hi", out)

	_, err = run(t, "", "archive", "delete", id, "--config", cfgPath)
	require.NoError(t, err)

	_, err = run(t, "", "archive", "get", id, "--config", cfgPath)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = run(t, "0100", "archive", "put", "point", "--hex", "--config", cfgPath)
	assert.Error(t, err, "truncated payloads are rejected")

	_, err = run(t, "", "archive", "get", "not-an-id", "--config", cfgPath)
	assert.Error(t, err)
}

type recordingStarter struct {
	config  api.ServerConfig
	layouts []string
}

func (s *recordingStarter) StartServer(_ context.Context, _ api.ArchiveStore, layouts *layout.Registry, cfg api.ServerConfig) error {
	s.config = cfg
	s.layouts = layouts.Names()
	return nil
}

type recordingFactory struct{ starter *recordingStarter }

func (f recordingFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func TestServeCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(recordingFactory{starter: starter})
	SetContainer(c)
	t.Cleanup(func() { SetContainer(nil) })

	out, err := run(t, "", "serve", "--port", "9123", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated API key")
	assert.Equal(t, 9123, starter.config.Port)
	assert.Len(t, starter.config.APIKey, 64)
	assert.Equal(t, 16<<20, starter.config.MaxBodySize)
	assert.Contains(t, starter.layouts, "point")

	_, err = run(t, "", "serve", "--api-key", "fixed", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "fixed", starter.config.APIKey)

	_, err = run(t, "", "serve", "--no-auth", "--config", cfgPath)
	require.NoError(t, err)
	assert.Empty(t, starter.config.APIKey)
}

func TestFormatValue(t *testing.T) {
	s := "x"
	var absent *string
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"absent string", absent, "<absent>"},
		{"present string", &s, `"x"`},
		{"bytes", []byte{0xde, 0xad}, "dead"},
		{"long bytes", make([]byte, 40), strings.Repeat("00", 32) + "... (40 bytes)"},
		{"int32 array", []int32{1, -2}, "[1, -2]"},
		{"pairs", []layout.Pair{{Key: 1, Value: 0.5}}, "{1=0.5}"},
		{"number", uint16(7), "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}
