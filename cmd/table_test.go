package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCmd_CSV(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)

	out, err := runCmd(t, tableCmd)
	require.NoError(t, err)
	assert.Equal(t, "industry,lower,upper\n"+
		"Agric,100,199\n"+
		"Agric,200,299\n"+
		"Mines,1000,1299\n"+
		"Rtail,5200,5999\n", out)
}

func TestTableCmd_YAMLToFile(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)
	tableFormat = "yaml"
	tableOutput = filepath.Join(t.TempDir(), "ff3.yaml")

	out, err := runCmd(t, tableCmd)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(tableOutput)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Agric")
	assert.Contains(t, string(data), "lower: 5200")
}

func TestTableCmd_FileFlagOverridesConfig(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)
	cfg.Table.Path = "/nonexistent/Siccodes.txt"

	other := filepath.Join(t.TempDir(), "Siccodes1.txt")
	require.NoError(t, os.WriteFile(other, []byte(" 1 Only\n 0100-0199\n"), 0o644))
	tableFile = other

	out, err := runCmd(t, tableCmd)
	require.NoError(t, err)
	assert.Equal(t, "industry,lower,upper\nOnly,100,199\n", out)
}

func TestTableCmd_ReadsExportedCSV(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)
	exported := filepath.Join(t.TempDir(), "ff.csv")
	require.NoError(t, os.WriteFile(exported, []byte("industry,lower,upper\nMines,1000,1299\nEmpty,,\n"), 0o644))
	tableFile = exported
	tableFormat = "json"

	out, err := runCmd(t, tableCmd)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Mines"`)
	assert.Contains(t, out, `"name": "Empty"`)
}

func TestTableCmd_Errors(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)
	tableFormat = "xml"
	_, err := runCmd(t, tableCmd)
	require.Error(t, err)

	resetFlags(t)
	cfg = testConfig(t)
	cfg.Table.Path = ""
	_, err = runCmd(t, tableCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table.path is required")

	resetFlags(t)
	cfg = testConfig(t)
	tableFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = runCmd(t, tableCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
}
