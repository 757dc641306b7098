package industry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func miningRetail() *Table {
	return FromIndustries([]Industry{
		{Name: "Mining", Ranges: []Range{{1000, 1299}}},
		{Name: "Retail", Ranges: []Range{{5200, 5999}}},
	})
}

func TestClassify_NoFallback(t *testing.T) {
	table := miningRetail()

	got := Classify(table, 5500, false)
	assert.Equal(t, Result{Industry: "Retail", Kind: Matched}, got)

	got = Classify(table, 1000, false)
	assert.Equal(t, "Mining", got.Industry)

	got = Classify(table, 1299, false)
	assert.Equal(t, "Mining", got.Industry)

	got = Classify(table, 9999, false)
	assert.Equal(t, Result{}, got)
	assert.False(t, got.Found())
}

func TestClassify_EarlyFallback(t *testing.T) {
	table := miningRetail()

	// 5500 belongs to Retail, but the first range examined is Mining's.
	got := Classify(table, 5500, true)
	assert.Equal(t, Result{Industry: DefaultFallbackLabel, Kind: Fallback}, got)

	got = Classify(table, 1100, true)
	assert.Equal(t, Result{Industry: "Mining", Kind: Matched}, got)
}

func TestClassify_EarlyFallbackSecondRangeOfFirstIndustry(t *testing.T) {
	table := FromIndustries([]Industry{
		{Name: "Mining", Ranges: []Range{{1000, 1299}, {1400, 1499}}},
	})
	got := Classify(table, 1450, true)
	assert.Equal(t, Fallback, got.Kind)

	got = Classify(table, 1450, false)
	assert.Equal(t, "Mining", got.Industry)
}

func TestClassify_EarlyFallbackSkipsEmptyLeadingIndustries(t *testing.T) {
	table := FromIndustries([]Industry{
		{Name: "Empty"},
		{Name: "AlsoEmpty"},
		{Name: "Retail", Ranges: []Range{{5200, 5999}}},
		{Name: "Mining", Ranges: []Range{{1000, 1299}}},
	})

	got := Classify(table, 5300, true)
	assert.Equal(t, Result{Industry: "Retail", Kind: Matched}, got)

	got = Classify(table, 1100, true)
	assert.Equal(t, Fallback, got.Kind)
}

func TestClassify_FallbackWithNoRanges(t *testing.T) {
	table := FromIndustries([]Industry{{Name: "Empty"}})
	assert.Equal(t, Result{}, Classify(table, 1234, true))

	c := Classifier{Table: table, Fallback: true, Mode: FallbackAfterScan}
	assert.Equal(t, Result{Industry: "Other", Kind: Fallback}, c.Classify(1234))
}

func TestClassify_NilTable(t *testing.T) {
	assert.Equal(t, Result{}, Classify(nil, 1000, true))
}

func TestClassifier_AfterScan(t *testing.T) {
	c := Classifier{Table: miningRetail(), Fallback: true, Mode: FallbackAfterScan}

	assert.Equal(t, Result{Industry: "Retail", Kind: Matched}, c.Classify(5500))
	assert.Equal(t, Result{Industry: "Other", Kind: Fallback}, c.Classify(9999))
}

func TestClassifier_AfterScanWithoutFallback(t *testing.T) {
	c := Classifier{Table: miningRetail(), Mode: FallbackAfterScan}
	assert.Equal(t, Result{}, c.Classify(9999))
}

func TestClassifier_CustomLabel(t *testing.T) {
	c := Classifier{Table: miningRetail(), Fallback: true, Label: "Unclassified"}
	assert.Equal(t, Result{Industry: "Unclassified", Kind: Fallback}, c.Classify(9999))
}

func TestClassify_FirstMatchWins(t *testing.T) {
	table := FromIndustries([]Industry{
		{Name: "A", Ranges: []Range{{1000, 1999}}},
		{Name: "B", Ranges: []Range{{1500, 1599}}},
	})
	assert.Equal(t, "A", Classify(table, 1550, false).Industry)
}

func TestParseFallbackMode(t *testing.T) {
	tests := []struct {
		in   string
		want FallbackMode
	}{
		{"", FallbackEarly},
		{"early", FallbackEarly},
		{"EARLY", FallbackEarly},
		{"after-scan", FallbackAfterScan},
		{"after_scan", FallbackAfterScan},
		{"full", FallbackAfterScan},
	}
	for _, tt := range tests {
		got, err := ParseFallbackMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFallbackMode("sometimes")
	assert.Error(t, err)
}

func TestResultKindString(t *testing.T) {
	assert.Equal(t, "matched", Matched.String())
	assert.Equal(t, "fallback", Fallback.String())
	assert.Equal(t, "unmatched", Unmatched.String())
	assert.Equal(t, "early", FallbackEarly.String())
	assert.Equal(t, "after-scan", FallbackAfterScan.String())
}
