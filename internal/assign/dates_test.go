package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1990-01-31", "1990-01-31", true},
		{" 1990-01-31 ", "1990-01-31", true},
		{"1990/01/31", "1990-01-31", true},
		{"01/31/1990", "1990-01-31", true},
		{"1/5/1990", "1990-01-05", true},
		{"03/04/2020", "2020-03-04", true},
		{"19900131", "1990-01-31", true},
		{"Jan 31, 1990", "1990-01-31", true},
		{"31-Jan-1990", "1990-01-31", true},
		{"31JAN1990", "1990-01-31", true},
		{"1990-01", "1990-01-01", true},
		{"1990-01-31 00:00:00", "1990-01-31", true},
		{"1990-01-31 16:30:00", "1990-01-31 16:30:00", true},
		{"1990-01-31T16:30:00Z", "1990-01-31 16:30:00", true},
		{"not a date", "not a date", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestIsDateColumn(t *testing.T) {
	assert.True(t, IsDateColumn("date"))
	assert.True(t, IsDateColumn("DATE"))
	assert.True(t, IsDateColumn("namedt_date"))
	assert.True(t, IsDateColumn("LinkDate"))
	assert.False(t, IsDateColumn("sic"))
	assert.False(t, IsDateColumn("namedt"))
}
