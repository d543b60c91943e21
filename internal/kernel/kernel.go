// Package kernel supplies every generator with reproducible,
// distribution-shaped random values drawn from one seeded stream.
//
// A Kernel is not safe for concurrent use. The generation pipeline is
// single threaded and threads one Kernel through every call, so the same seed
// and configuration always replay the same sequence.
package kernel

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"worksim/internal/config"
)

// ErrEmptyDistribution is returned when a weighted draw has nothing to choose from.
var ErrEmptyDistribution = errors.New("empty distribution")

// Kernel wraps the seeded stream and the temporal configuration.
type Kernel struct {
	rng       *rand.Rand
	cfg       config.Temporal
	weights   [7]float64
	maxWeight float64
}

// New seeds a Kernel. The weekday table is normalized by its largest weight.
func New(seed int64, cfg config.Temporal) *Kernel {
	k := &Kernel{
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		cfg: cfg,
	}
	for day := range k.weights {
		k.weights[day] = 1
	}
	if len(cfg.WeekdayWeights) > 0 {
		for day := range k.weights {
			k.weights[day] = 0
		}
		for name, w := range cfg.WeekdayWeights {
			if d, ok := config.ParseWeekday(name); ok {
				k.weights[d] = w
			}
		}
	}
	for _, w := range k.weights {
		k.maxWeight = math.Max(k.maxWeight, w)
	}
	if k.maxWeight <= 0 {
		k.maxWeight = 1
	}
	return k
}

// Float64 returns a uniform value in [0, 1).
func (k *Kernel) Float64() float64 { return k.rng.Float64() }

// Chance reports true with probability p.
func (k *Kernel) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return k.rng.Float64() < p
}

// IntBetween returns a uniform integer in [lo, hi]. Reversed bounds collapse to lo.
func (k *Kernel) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + k.rng.IntN(hi-lo+1)
}

// IntN returns a uniform integer in [0, n). n must be positive.
func (k *Kernel) IntN(n int) int { return k.rng.IntN(n) }

// Uniform returns a uniform float in [lo, hi).
func (k *Kernel) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*k.rng.Float64()
}

// Gauss draws from a normal distribution.
func (k *Kernel) Gauss(mean, stddev float64) float64 {
	return mean + stddev*k.rng.NormFloat64()
}

// Read fills p from the stream. It never fails.
func (k *Kernel) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := k.rng.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

// Shuffle permutes n elements with swap.
func (k *Kernel) Shuffle(n int, swap func(i, j int)) { k.rng.Shuffle(n, swap) }

// Sample returns k distinct indexes out of [0, n) in draw order.
func (k *Kernel) Sample(n, count int) []int {
	if count > n {
		count = n
	}
	if count <= 0 {
		return nil
	}
	// partial Fisher-Yates over a sparse permutation
	moved := make(map[int]int, 2*count)
	at := func(i int) int {
		if v, ok := moved[i]; ok {
			return v
		}
		return i
	}
	out := make([]int, count)
	for i := 0; i < count; i++ {
		j := i + k.rng.IntN(n-i)
		vi, vj := at(i), at(j)
		moved[i], moved[j] = vj, vi
		out[i] = vj
	}
	return out
}

// Pick returns a uniformly chosen element of items. ok is false when items is empty.
func Pick[T any](k *Kernel, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[k.rng.IntN(len(items))], true
}

// SampleOf returns up to count distinct elements of items.
func SampleOf[T any](k *Kernel, items []T, count int) []T {
	idx := k.Sample(len(items), count)
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}

// WeightedChoice returns an index with probability proportional to its weight.
// Weights need not sum to one.
func (k *Kernel) WeightedChoice(weights []float64) (int, error) {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if len(weights) == 0 || total <= 0 {
		return 0, ErrEmptyDistribution
	}
	r := k.rng.Float64() * total
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		r -= w
		if r < 0 {
			return i, nil
		}
	}
	return last, nil
}

// WeightedKey draws a key of table. Keys are visited in sorted order so the
// draw never depends on map iteration order.
func (k *Kernel) WeightedKey(table map[string]float64) (string, error) {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	weights := make([]float64, len(keys))
	for i, key := range keys {
		weights[i] = table[key]
	}
	i, err := k.WeightedChoice(weights)
	if err != nil {
		return "", err
	}
	return keys[i], nil
}

// MustKey is WeightedKey for tables already checked by config validation.
// It falls back to def when the table is empty.
func (k *Kernel) MustKey(table map[string]float64, def string) string {
	key, err := k.WeightedKey(table)
	if err != nil {
		return def
	}
	return key
}

// Window constrains Timestamp sampling.
type Window struct {
	BusinessHours   bool
	WeekdayWeighted bool
}

// WeekdayWeight returns the configured weight for d.
func (k *Kernel) WeekdayWeight(d time.Weekday) float64 { return k.weights[d] }

// Timestamp samples an instant in [start, end] by rejection against the
// weekday table and, when requested, the business-hour window. After the
// configured number of attempts it returns an unconstrained uniform sample.
// Results are truncated to whole seconds.
func (k *Kernel) Timestamp(start, end time.Time, w Window) time.Time {
	if !end.After(start) {
		return start.Truncate(time.Second)
	}
	span := end.Sub(start)
	attempts := k.cfg.MaxTimestampAttempts
	if attempts <= 0 {
		attempts = 100
	}
	for i := 0; i < attempts; i++ {
		ts := start.Add(time.Duration(k.rng.Float64() * float64(span)))
		if w.WeekdayWeighted && k.rng.Float64() > k.weights[ts.Weekday()]/k.maxWeight {
			continue
		}
		if w.BusinessHours && !k.inBusinessHours(ts) {
			continue
		}
		return ts.Truncate(time.Second)
	}
	return start.Add(time.Duration(k.rng.Float64() * float64(span))).Truncate(time.Second)
}

func (k *Kernel) inBusinessHours(ts time.Time) bool {
	if ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday {
		return false
	}
	h := ts.Hour()
	return h >= k.cfg.BusinessStartHour && h < k.cfg.BusinessEndHour
}

// Date samples a calendar day in [start, end] at midnight UTC. When
// avoidWeekends is set a weekend draw is rejected with the configured ratio.
func (k *Kernel) Date(start, end time.Time, avoidWeekends bool) time.Time {
	from := Day(start)
	days := int(Day(end).Sub(from).Hours() / 24)
	if days <= 0 {
		return from
	}
	attempts := k.cfg.MaxDateAttempts
	if attempts <= 0 {
		attempts = 50
	}
	for i := 0; i < attempts; i++ {
		d := from.AddDate(0, 0, k.rng.IntN(days+1))
		if avoidWeekends && IsWeekend(d) && k.Chance(k.cfg.WeekendRejectRatio) {
			continue
		}
		return d
	}
	return from.AddDate(0, 0, k.rng.IntN(days+1))
}

// LogNormalDays draws a heavy-tailed duration in days clamped to [minDays, maxDays].
func (k *Kernel) LogNormalDays(mean, sigma, minDays, maxDays float64) float64 {
	v := math.Exp(mean + sigma*k.rng.NormFloat64())
	return math.Max(minDays, math.Min(maxDays, v))
}

// Curve selects the shape of a generation wave.
type Curve string

const (
	Linear      Curve = "linear"
	Exponential Curve = "exponential"
	SCurve      Curve = "s_curve"
)

func progress(curve Curve, i, n int) float64 {
	switch curve {
	case Exponential:
		return math.Log(1+(math.Exp(2)-1)*float64(i)/float64(n)) / 2
	case SCurve:
		x := float64(i) / float64(max(n-1, 1))
		return 1 / (1 + math.Exp(-10*(x-0.5)))
	default:
		return float64(i) / float64(max(n-1, 1))
	}
}

// Wave returns count sorted instants over [start, end] following curve. Each
// point is jittered, clamped into range, re-sampled within the configured
// window, then moved to a weekday-weighted day of the surrounding week.
func (k *Kernel) Wave(count int, start, end time.Time, curve Curve) []time.Time {
	if count <= 0 {
		return nil
	}
	span := end.Sub(start)
	window := time.Duration(k.cfg.WaveWindowHours) * time.Hour
	out := make([]time.Time, count)
	for i := 0; i < count; i++ {
		p := progress(curve, i, count)
		p += k.Uniform(-k.cfg.WaveJitter, k.cfg.WaveJitter)
		p = math.Max(0, math.Min(1, p))
		ts := start.Add(time.Duration(p * float64(span)))
		if window > 0 {
			lo, hi := ts.Add(-window), ts.Add(window)
			if lo.Before(start) {
				lo = start
			}
			if hi.After(end) {
				hi = end
			}
			ts = k.Timestamp(lo, hi, Window{WeekdayWeighted: true})
		}
		out[i] = k.weekdayShift(ts, start, end).Truncate(time.Second)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Before(out[b]) })
	return out
}

// weekdayShift moves ts by -3..+3 whole days, drawing the day by weekday
// weight. Every weekday appears once among the candidates, so day counts
// follow the weight table. Candidates outside [start, end] are excluded.
func (k *Kernel) weekdayShift(ts, start, end time.Time) time.Time {
	weights := make([]float64, 7)
	for o := -3; o <= 3; o++ {
		c := ts.AddDate(0, 0, o)
		if c.Before(start) || c.After(end) {
			continue
		}
		weights[o+3] = k.weights[c.Weekday()]
	}
	i, err := k.WeightedChoice(weights)
	if err != nil {
		return ts
	}
	return ts.AddDate(0, 0, i-3)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// Hours converts a whole number of hours to a Duration.
func Hours(n int) time.Duration { return time.Duration(n) * time.Hour }

// Days converts a whole number of days to a Duration.
func Days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }
