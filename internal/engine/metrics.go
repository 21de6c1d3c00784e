package engine

import (
	"math"
	"sort"

	"github.com/quantgrid/gridtrail-engine/internal/fill"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

// Metrics is the reported-metrics set of spec.md §8. The return, drawdown,
// ratio, and equity-shape metrics each carry a _w variant: the mean of the
// same metric evaluated over 10 overlapping tail subsets of the minute
// series, "[0..N], [N/2..N], [2N/3..N], …, [9N/10..N]". Gain, the
// position-holding metrics, and VolumePctPerDayAvg have no _w variant;
// they are computed over the whole run only. Computed post-hoc over the driver's recorded Observations
// and Fills buffers rather than as inline streaming accumulators — the
// design notes call streaming accumulators "where possible", and since
// the observation buffer is already the complete, append-only record
// spec.md §5's resource discipline requires, a single post-hoc pass over
// it is simpler and equally correct.
type Metrics struct {
	ADG, ADGW     float64
	MDG, MDGW     float64
	Gain          float64
	DrawdownWorst, DrawdownWorstW                   float64
	DrawdownWorstMean1Pct, DrawdownWorstMean1PctW    float64
	ExpectedShortfall1Pct, ExpectedShortfall1PctW    float64
	SharpeRatio, SharpeRatioW   float64
	SortinoRatio, SortinoRatioW float64
	CalmarRatio, CalmarRatioW   float64
	SterlingRatio, SterlingRatioW float64
	OmegaRatio, OmegaRatioW     float64
	LossProfitRatio, LossProfitRatioW float64

	PositionsHeldPerDay float64
	PositionHeldHoursMean, PositionHeldHoursMedian, PositionHeldHoursMax float64

	VolumePctPerDayAvg float64

	EquityChoppiness, EquityChoppinessW float64
	EquityJerkiness, EquityJerknessW    float64
	ExponentialFitError, ExponentialFitErrorW float64
}

const minutesPerDay = 1440.0

// Compute derives the full Metrics set from a completed run's observation
// and fill buffers.
func Compute(observations []Observation, fills []fill.Event) Metrics {
	if len(observations) == 0 {
		return Metrics{}
	}
	equity := make([]float64, len(observations))
	for i, o := range observations {
		equity[i] = o.Equity
	}
	windowed := func(fn func([]float64) float64, series []float64) (float64, float64) {
		return fn(series), tailMean(series, fn)
	}

	m := Metrics{}
	days := float64(len(observations)) / minutesPerDay
	if days <= 0 {
		days = 1
	}

	m.Gain = equity[len(equity)-1]/equity[0] - 1

	m.ADG, m.ADGW = windowed(func(e []float64) float64 { return averageDailyGain(e) }, equity)
	m.MDG, m.MDGW = windowed(func(e []float64) float64 { return medianDailyGain(e) }, equity)

	m.DrawdownWorst, m.DrawdownWorstW = windowed(worstDrawdown, equity)
	m.DrawdownWorstMean1Pct, m.DrawdownWorstMean1PctW = windowed(worstMeanFractionDrawdown, equity)
	m.ExpectedShortfall1Pct, m.ExpectedShortfall1PctW = windowed(func(e []float64) float64 { return expectedShortfall(periodReturns(e), 0.01) }, equity)

	m.SharpeRatio, m.SharpeRatioW = windowed(func(e []float64) float64 { return sharpe(periodReturns(e)) }, equity)
	m.SortinoRatio, m.SortinoRatioW = windowed(func(e []float64) float64 { return sortino(periodReturns(e)) }, equity)
	m.OmegaRatio, m.OmegaRatioW = windowed(func(e []float64) float64 { return omega(periodReturns(e)) }, equity)

	m.CalmarRatio, m.CalmarRatioW = windowed(func(e []float64) float64 {
		dd := worstDrawdown(e)
		if dd == 0 {
			return 0
		}
		return averageDailyGain(e) / dd
	}, equity)
	m.SterlingRatio, m.SterlingRatioW = windowed(func(e []float64) float64 {
		dd := worstMeanFractionDrawdown(e)
		if dd == 0 {
			return 0
		}
		return averageDailyGain(e) / dd
	}, equity)

	m.LossProfitRatio, m.LossProfitRatioW = windowed(func(e []float64) float64 {
		from := observations[len(observations)-len(e)].TsMinute
		var tail []fill.Event
		for _, ev := range fills {
			if ev.TsMinute >= from {
				tail = append(tail, ev)
			}
		}
		return lossProfitRatioOverFills(tail)
	}, equity)

	m.EquityChoppiness, m.EquityChoppinessW = windowed(choppiness, equity)
	m.EquityJerkiness, m.EquityJerknessW = windowed(jerkiness, equity)
	m.ExponentialFitError, m.ExponentialFitErrorW = windowed(exponentialFitError, equity)

	held := heldDurations(observations)
	m.PositionsHeldPerDay = float64(len(held)) / days
	m.PositionHeldHoursMean, m.PositionHeldHoursMedian, m.PositionHeldHoursMax = durationStats(held)

	m.VolumePctPerDayAvg = volumePctPerDay(fills, equity, days)

	return m
}

// periodReturns returns simple per-minute returns of an equity series.
func periodReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, equity[i]/equity[i-1]-1)
	}
	return out
}

func averageDailyGain(equity []float64) float64 {
	if len(equity) < 2 || equity[0] <= 0 {
		return 0
	}
	days := float64(len(equity)) / minutesPerDay
	if days <= 0 {
		return 0
	}
	total := equity[len(equity)-1] / equity[0]
	if total <= 0 {
		return -1
	}
	return math.Pow(total, 1/days) - 1
}

func medianDailyGain(equity []float64) float64 {
	returns := periodReturns(equity)
	if len(returns) == 0 {
		return 0
	}
	daily := bucketDaily(returns)
	if len(daily) == 0 {
		return 0
	}
	sorted := append([]float64(nil), daily...)
	sort.Float64s(sorted)
	return median(sorted)
}

// bucketDaily compounds per-minute returns into per-day returns.
func bucketDaily(returns []float64) []float64 {
	var out []float64
	acc := 1.0
	count := 0
	for _, r := range returns {
		acc *= 1 + r
		count++
		if count == int(minutesPerDay) {
			out = append(out, acc-1)
			acc = 1.0
			count = 0
		}
	}
	if count > 0 {
		out = append(out, acc-1)
	}
	return out
}

func worstDrawdown(equity []float64) float64 {
	peak := equity[0]
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd := (peak - e) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// worstMeanFractionDrawdown is the mean of the worst 1% of per-minute
// drawdown readings, the "_mean_1pct" sibling of worstDrawdown.
func worstMeanFractionDrawdown(equity []float64) float64 {
	peak := equity[0]
	dds := make([]float64, 0, len(equity))
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dds = append(dds, (peak-e)/peak)
		}
	}
	return meanOfWorstFraction(dds, 0.01)
}

func expectedShortfall(returns []float64, fraction float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	n := int(math.Ceil(float64(len(sorted)) * fraction))
	if n < 1 {
		n = 1
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += sorted[i]
	}
	return sum / float64(n)
}

func meanOfWorstFraction(values []float64, fraction float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	n := int(math.Ceil(float64(len(sorted)) * fraction))
	if n < 1 {
		n = 1
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += sorted[i]
	}
	return sum / float64(n)
}

func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := meanStd(returns)
	if std == 0 {
		return 0
	}
	return mean / std
}

func sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, _ := meanStd(returns)
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	_, downsideStd := meanStd(downside)
	if downsideStd == 0 {
		return 0
	}
	return mean / downsideStd
}

func omega(returns []float64) float64 {
	var gains, losses float64
	for _, r := range returns {
		if r > 0 {
			gains += r
		} else {
			losses += -r
		}
	}
	if losses == 0 {
		return 0
	}
	return gains / losses
}

func lossProfitRatioOverFills(fills []fill.Event) float64 {
	var profit, loss float64
	for _, ev := range fills {
		if ev.RealizedPnL > 0 {
			profit += ev.RealizedPnL
		} else {
			loss += -ev.RealizedPnL
		}
	}
	if profit == 0 {
		return 0
	}
	return loss / profit
}

// choppiness measures how much of the minute-to-minute path is "wasted
// motion" relative to net progress: sum(|delta|) / |total range|.
func choppiness(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	var sumAbs float64
	for i := 1; i < len(equity); i++ {
		sumAbs += math.Abs(equity[i] - equity[i-1])
	}
	totalRange := math.Abs(equity[len(equity)-1] - equity[0])
	if totalRange == 0 {
		return 0
	}
	return sumAbs / totalRange
}

// jerkiness is the standard deviation of the second difference of the
// equity curve, normalized by mean equity: a smoother curve has lower
// jerkiness.
func jerkiness(equity []float64) float64 {
	if len(equity) < 3 {
		return 0
	}
	second := make([]float64, 0, len(equity)-2)
	for i := 2; i < len(equity); i++ {
		second = append(second, equity[i]-2*equity[i-1]+equity[i-2])
	}
	_, std := meanStd(second)
	meanEquity, _ := meanStd(equity)
	if meanEquity == 0 {
		return 0
	}
	return std / meanEquity
}

// exponentialFitError is the RMS relative residual between the equity
// curve and a log-linear (exponential) best fit.
func exponentialFitError(equity []float64) float64 {
	n := len(equity)
	if n < 2 {
		return 0
	}
	logs := make([]float64, n)
	for i, e := range equity {
		if e <= 0 {
			return 0
		}
		logs[i] = math.Log(e)
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range logs {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	var sumSqErr float64
	for i, y := range logs {
		fitted := intercept + slope*float64(i)
		sumSqErr += (y - fitted) * (y - fitted)
	}
	return math.Sqrt(sumSqErr / fn)
}

type heldInterval struct {
	openMinute, closeMinute int64
}

// heldDurations scans the observation buffer's position snapshots for
// open-to-close intervals per (symbol, side).
func heldDurations(observations []Observation) []heldInterval {
	type key struct {
		symbol string
		side   types.Side
	}
	openSince := make(map[key]int64)
	var out []heldInterval

	for _, obs := range observations {
		seen := make(map[key]bool, len(obs.Positions))
		for _, p := range obs.Positions {
			k := key{p.Symbol, p.Side}
			seen[k] = true
			if _, open := openSince[k]; !open {
				openSince[k] = obs.TsMinute
			}
		}
		for k, since := range openSince {
			if !seen[k] {
				out = append(out, heldInterval{openMinute: since, closeMinute: obs.TsMinute})
				delete(openSince, k)
			}
		}
	}
	return out
}

func durationStats(intervals []heldInterval) (mean, med, worstCase float64) {
	if len(intervals) == 0 {
		return 0, 0, 0
	}
	hours := make([]float64, len(intervals))
	var sum float64
	for i, iv := range intervals {
		h := float64(iv.closeMinute-iv.openMinute) / 60.0
		hours[i] = h
		sum += h
		if h > worstCase {
			worstCase = h
		}
	}
	mean = sum / float64(len(hours))
	sort.Float64s(hours)
	med = median(hours)
	return mean, med, worstCase
}

func volumePctPerDay(fills []fill.Event, equity []float64, days float64) float64 {
	if days <= 0 || len(equity) == 0 {
		return 0
	}
	var totalNotional float64
	for _, ev := range fills {
		totalNotional += ev.Notional
	}
	avgEquity, _ := meanStd(equity)
	if avgEquity == 0 {
		return 0
	}
	return (totalNotional / days) / avgEquity
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	std = math.Sqrt(sumSq / float64(len(xs)))
	return mean, std
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// tailMean is the spec.md §8 "_w" variant: the mean of fn evaluated over
// 10 overlapping tail subsets of series, starting at fraction 0, then
// k/(k+1) for k=1..9 ("[0..N], [N/2..N], [2N/3..N], …, [9N/10..N]").
func tailMean(series []float64, fn func([]float64) float64) float64 {
	n := len(series)
	if n == 0 {
		return 0
	}
	starts := []float64{0}
	for k := 1; k <= 9; k++ {
		starts = append(starts, float64(k)/float64(k+1))
	}
	var sum float64
	for _, frac := range starts {
		start := int(frac * float64(n))
		if start >= n {
			start = n - 1
		}
		sum += fn(series[start:])
	}
	return sum / float64(len(starts))
}
