package quantum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowpulse/internal/shared/testutil"
	"flowpulse/pkg/contracts/domain"
)

func TestPeaksAndValleys(t *testing.T) {
	flow := testutil.FlowSeries("PF", start, 10, 0, 10, 0, 500, 0, 10, 0, 10, 0, -300, 0, 10, 0, 10)

	extremes := PeaksAndValleys(flow)
	require.Len(t, extremes, 2)

	valley := extremes[0]
	assert.Equal(t, domain.ExtremeSellValley, valley.Type)
	assert.False(t, valley.Type.IsPeak())
	assert.Equal(t, start.AddDate(0, 0, 10), valley.Date)
	assert.InDelta(t, 53.0, valley.Intensity, 0.01)
	assert.Nil(t, valley.DaysToNext)
	assert.Contains(t, valley.Context, "Vale de R$ 0,30 mi")

	peak := extremes[1]
	assert.Equal(t, domain.ExtremeBuyPeak, peak.Type)
	assert.True(t, peak.Type.IsPeak())
	assert.Equal(t, 500.0, peak.Value)
	assert.InDelta(t, 80.61, peak.Intensity, 0.01)
	require.NotNil(t, peak.DaysToNext)
	assert.Equal(t, 6, *peak.DaysToNext)
	assert.Equal(t, "Pico de R$ 0,50 mi (3,2σ acima da média)", peak.Context)
}

func TestPeaksAndValleys_NeedsStrictNeighbours(t *testing.T) {
	flow := testutil.FlowSeries("PF", start, 0, 0, 500, 500, 0, 0, 0)
	assert.Empty(t, PeaksAndValleys(flow))
}

func TestPeaksAndValleys_FlatSeries(t *testing.T) {
	flow := testutil.FlowSeries("PF", start, 5, 5, 5, 5, 5, 5)
	assert.Empty(t, PeaksAndValleys(flow))
}
