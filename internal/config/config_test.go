package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineSection struct {
	Address   string `toml:"address"`
	QueueSize int    `toml:"queue_size"`
}

type section struct {
	Board       string         `toml:"board"`
	SyncTimeout int            `toml:"sync_timeout"`
	Engine      *engineSection `toml:"engine"`
}

const doc = `
[xedge]
board = "esp32-s3"
sync_timeout = 2500

[xedge.engine]
address = "127.0.0.1:9000"
queue_size = 16
`

func TestUnmarshalKey(t *testing.T) {
	p, err := NewFromBytes([]byte(doc))
	require.NoError(t, err)

	require.True(t, p.Has("xedge"))
	assert.False(t, p.Has("jobs"))

	out := &section{}
	require.NoError(t, p.UnmarshalKey("xedge", out))
	assert.Equal(t, "esp32-s3", out.Board)
	assert.Equal(t, 2500, out.SyncTimeout)
	require.NotNil(t, out.Engine)
	assert.Equal(t, "127.0.0.1:9000", out.Engine.Address)
	assert.Equal(t, 16, out.Engine.QueueSize)

	assert.Empty(t, p.Undecoded())
}

func TestUnmarshalMissingKey(t *testing.T) {
	p, err := NewFromBytes([]byte(doc))
	require.NoError(t, err)

	require.Error(t, p.UnmarshalKey("nope", &section{}))
}

func TestUndecodedKeys(t *testing.T) {
	p, err := NewFromBytes([]byte("[xedge]\nboard = \"x\"\ntypo_key = 1\n"))
	require.NoError(t, err)

	require.NoError(t, p.UnmarshalKey("xedge", &section{}))
	assert.Equal(t, []string{"xedge.typo_key"}, p.Undecoded())
}

func TestBadDocument(t *testing.T) {
	_, err := NewFromBytes([]byte("[xedge\nboard = "))
	require.Error(t, err)
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xedge.toml")

	_, err := NewFromFile(path, false)
	require.Error(t, err)

	p, err := NewFromFile(path, true)
	require.NoError(t, err)
	assert.False(t, p.Has("xedge"))

	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	p, err = NewFromFile(path, false)
	require.NoError(t, err)
	assert.True(t, p.Has("xedge"))
	assert.Equal(t, path, p.Path)
}
