package kernel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/config"
	"worksim/internal/kernel"
)

func newKernel(seed int64) *kernel.Kernel {
	return kernel.New(seed, config.Default().Temporal)
}

func TestSameSeedSameStream(t *testing.T) {
	a, b := newKernel(9), newKernel(9)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)
	assert.Equal(t, a.Wave(20, start, end, kernel.SCurve), b.Wave(20, start, end, kernel.SCurve))
}

func TestWeightedChoice(t *testing.T) {
	k := newKernel(1)
	_, err := k.WeightedChoice(nil)
	assert.ErrorIs(t, err, kernel.ErrEmptyDistribution)
	_, err = k.WeightedChoice([]float64{0, -1})
	assert.ErrorIs(t, err, kernel.ErrEmptyDistribution)

	for i := 0; i < 100; i++ {
		idx, err := k.WeightedChoice([]float64{0, 3, 0})
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
	}

	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		counts[k.MustKey(map[string]float64{"a": 3, "b": 1}, "a")]++
	}
	assert.InDelta(t, 0.75, float64(counts["a"])/4000, 0.04)
	assert.Equal(t, "z", k.MustKey(nil, "z"))
}

func TestIntBetweenIsInclusive(t *testing.T) {
	k := newKernel(3)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := k.IntBetween(2, 4)
		require.GreaterOrEqual(t, v, 2)
		require.LessOrEqual(t, v, 4)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, 5, k.IntBetween(5, 1))
}

func TestSampleDistinct(t *testing.T) {
	k := newKernel(4)
	got := k.Sample(1000, 50)
	require.Len(t, got, 50)
	seen := map[int]bool{}
	for _, v := range got {
		require.False(t, seen[v])
		require.True(t, v >= 0 && v < 1000)
		seen[v] = true
	}
	assert.Len(t, k.Sample(3, 10), 3)
	assert.Empty(t, k.Sample(3, 0))
}

func TestTimestampStaysInRange(t *testing.T) {
	k := newKernel(5)
	start := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)
	for i := 0; i < 500; i++ {
		ts := k.Timestamp(start, end, kernel.Window{BusinessHours: true, WeekdayWeighted: true})
		require.False(t, ts.Before(start))
		require.False(t, ts.After(end))
		assert.Equal(t, ts, ts.Truncate(time.Second))
	}
	assert.Equal(t, start, k.Timestamp(start, start, kernel.Window{}))
}

func TestBusinessHoursMostlyRespected(t *testing.T) {
	k := newKernel(6)
	start := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	inside := 0
	for i := 0; i < 1000; i++ {
		ts := k.Timestamp(start, end, kernel.Window{BusinessHours: true})
		if !kernel.IsWeekend(ts) && ts.Hour() >= 9 && ts.Hour() < 18 {
			inside++
		}
	}
	assert.Greater(t, inside, 990)
}

func TestDateAvoidsWeekends(t *testing.T) {
	k := newKernel(7)
	start := time.Date(2025, 8, 4, 15, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 2, 0)
	weekend := 0
	for i := 0; i < 2000; i++ {
		d := k.Date(start, end, true)
		require.Equal(t, kernel.Day(d), d)
		if kernel.IsWeekend(d) {
			weekend++
		}
	}
	// uniform would put about 2/7 of draws on weekends
	assert.Less(t, float64(weekend)/2000, 0.15)
}

func TestLogNormalDaysClamped(t *testing.T) {
	k := newKernel(8)
	for i := 0; i < 1000; i++ {
		v := k.LogNormalDays(1.5, 0.8, 0.1, 30)
		require.GreaterOrEqual(t, v, 0.1)
		require.LessOrEqual(t, v, 30.0)
	}
}

func TestWaveShapes(t *testing.T) {
	k := newKernel(10)
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, 0)
	mid := start.Add(end.Sub(start) / 2)

	for _, curve := range []kernel.Curve{kernel.Linear, kernel.Exponential, kernel.SCurve} {
		w := k.Wave(400, start, end, curve)
		require.Len(t, w, 400)
		for i := range w {
			require.False(t, w[i].Before(start) || w[i].After(end))
			if i > 0 {
				require.False(t, w[i].Before(w[i-1]), "wave must be sorted")
			}
		}
	}

	late := 0
	for _, ts := range k.Wave(400, start, end, kernel.Exponential) {
		if ts.After(mid) {
			late++
		}
	}
	// density rises toward end
	assert.Greater(t, late, 240)
}

func TestWaveFavorsBusyWeekdays(t *testing.T) {
	k := newKernel(11)
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, 0)

	perDay := make(map[time.Weekday]int)
	for _, ts := range k.Wave(7000, start, end, kernel.Linear) {
		require.False(t, ts.Before(start) || ts.After(end))
		perDay[ts.Weekday()]++
	}
	weekend := max(perDay[time.Saturday], perDay[time.Sunday])
	for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday} {
		assert.Greater(t, perDay[d], 2*weekend, "%s", d)
	}
}
