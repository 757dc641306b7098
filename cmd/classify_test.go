package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCmd(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)

	out, err := runCmd(t, classifyCmd, "150", "1100", "5500", "9999")
	require.NoError(t, err)
	assert.Equal(t, "150\tAgric\n1100\tMines\n5500\tRtail\n9999\t\n", out)
}

func TestClassifyCmd_EarlyFallback(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)
	cfg.Classify.Fallback = true

	// 1100 lies in Mines, but Agric's first range fails first.
	out, err := runCmd(t, classifyCmd, "150", "1100")
	require.NoError(t, err)
	assert.Equal(t, "150\tAgric\n1100\tOther\n", out)
}

func TestClassifyCmd_AfterScanFallback(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)
	cfg.Classify.Fallback = true
	classifyFallbackMode = "after-scan"
	classifyLabel = "Misc"

	out, err := runCmd(t, classifyCmd, "1100", "9999")
	require.NoError(t, err)
	assert.Equal(t, "1100\tMines\n9999\tMisc\n", out)
}

func TestClassifyCmd_BadArgs(t *testing.T) {
	resetFlags(t)
	cfg = testConfig(t)

	_, err := runCmd(t, classifyCmd, "28x4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"28x4" is not a SIC code`)

	resetFlags(t)
	cfg = testConfig(t)
	classifyFallbackMode = "sometimes"
	_, err = runCmd(t, classifyCmd, "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback_mode")
}
