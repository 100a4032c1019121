package transfer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return &Document{
		Version: CurrentVersion,
		Project: Node{
			Title: "Bridge",
			Start: "2024-03-01",
			Phases: []Node{
				{Title: "Survey", Start: "2024-03-01"},
				{Title: "Design", Start: "2024-04-01", Phases: []Node{
					{Title: "Preliminary", Start: "2024-04-01"},
					{Title: "Final", Start: "2024-05-01"},
				}},
			},
		},
	}
}

func TestEncodeDecode_PreservesChildOrder(t *testing.T) {
	data, err := Encode(sampleDocument())
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Bridge")

	got, err := Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleDocument(), got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("version: 1\nproject:\n  title: X\n  start: 2024-01-01\n  position: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing document")
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, Save(path, sampleDocument()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Project.Phases[1].Phases[1].Title)

	require.NoError(t, Save(path, &Document{Version: 1, Project: Node{Title: "Other", Start: "2024-01-01"}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Bridge")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestNodeCount(t *testing.T) {
	assert.Equal(t, 5, sampleDocument().Project.Count())
	assert.Equal(t, 1, Node{Title: "solo"}.Count())
}
