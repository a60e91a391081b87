package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseBRNumber(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"thousands and decimals", "1.234.567,89", "1234567.89", false},
		{"plain integer", "120500", "120500", false},
		{"negative", "-3.250,5", "-3250.5", false},
		{"quoted with spaces", ` "12,00" `, "12", false},
		{"empty", "", "", true},
		{"text", "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBRNumber(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseBRIntRounds(t *testing.T) {
	v, err := parseBRInt("1.000,50")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), v)

	v, err = parseBRInt("1.000,49")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v)
}

func TestDecodeText(t *testing.T) {
	t.Run("utf8 with BOM", func(t *testing.T) {
		assert.Equal(t, "até", DecodeText([]byte("\ufeffaté")))
	})

	t.Run("windows-1252", func(t *testing.T) {
		raw, err := charmap.Windows1252.NewEncoder().String("até o dia 01/03/2024")
		require.NoError(t, err)
		assert.Equal(t, "até o dia 01/03/2024", DecodeText([]byte(raw)))
	})
}
