package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowpulse/internal/shared/testutil"
	"flowpulse/pkg/contracts/domain"
)

func TestExtractReportDate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    time.Time
		wantErr bool
	}{
		{
			name:    "marker on second line",
			content: "Participação\nDados acumulados do início do mês até o dia 15/03/2024\nx;1;2;3;4",
			want:    testutil.Day(2024, 3, 15),
		},
		{
			name:    "marker without accent",
			content: "Dados acumulados ate o dia 02/01/2023",
			want:    testutil.Day(2023, 1, 2),
		},
		{
			name:    "marker after scanned lines",
			content: "1\n2\n3\n4\n5\naté o dia 15/03/2024",
			wantErr: true,
		},
		{
			name:    "year out of bounds",
			content: "até o dia 15/03/1999",
			wantErr: true,
		},
		{
			name:    "month out of bounds",
			content: "até o dia 15/13/2024",
			wantErr: true,
		},
		{
			name:    "non existent day",
			content: "até o dia 31/02/2024",
			wantErr: true,
		},
		{
			name:    "invalid first match falls through to a valid one",
			content: "até o dia 00/03/2024\naté o dia 04/03/2024",
			want:    testutil.Day(2024, 3, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractReportDate(tt.content, 5)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrReportDateNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlowReport(t *testing.T) {
	content := testutil.FlowReportCSV(testutil.Day(2024, 3, 5),
		testutil.FlowRow{Category: "Estrangeiro", Buys: 1500000.4, Sells: 1200000},
		testutil.FlowRow{Category: "Institucional", Buys: 800000, Sells: 950000.6},
	) + "Pessoa Física;abc;0,00;10,00;0,00\n" +
		"linha curta;1;2\n" +
		"Dados acumulados;1,00;0;1,00;0\n"

	rows, warnings, err := ParseFlowReport(domain.UploadedFile{Name: "b3.csv", Content: content}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Estrangeiro", rows[0].Category)
	assert.Equal(t, int64(1500000), rows[0].Buys)
	assert.Equal(t, int64(1200000), rows[0].Sells)
	assert.Equal(t, int64(300000), rows[0].Flow())
	assert.Equal(t, testutil.Day(2024, 3, 5), rows[0].Date)
	assert.Equal(t, int64(950001), rows[1].Sells)

	require.Len(t, warnings, 1)
	assert.Equal(t, "b3.csv", warnings[0].File)
	assert.Equal(t, 6, warnings[0].Line)
}

func TestParseFlowReportMissingDate(t *testing.T) {
	_, _, err := ParseFlowReport(domain.UploadedFile{Name: "bad.csv", Content: "Estrangeiro;1;0;1;0"}, DefaultOptions())
	assert.ErrorIs(t, err, ErrReportDateNotFound)
	assert.Contains(t, err.Error(), "bad.csv")
}

func TestParseFlowReportRowLimit(t *testing.T) {
	content := testutil.FlowReportCSV(testutil.Day(2024, 3, 5),
		testutil.FlowRow{Category: "A", Buys: 10, Sells: 5},
		testutil.FlowRow{Category: "B", Buys: 10, Sells: 5},
	)
	opts := DefaultOptions()
	opts.MaxRowsPerFile = 4

	rows, warnings, err := ParseFlowReport(domain.UploadedFile{Name: "f.csv", Content: content}, opts)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Reason, "row limit")
}
