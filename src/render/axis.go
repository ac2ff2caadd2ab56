package render

import (
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

// niceTicks generates up to n tick marks covering [min, max] using 1, 2, 2.5, 5 steps.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil(span/step) + 1
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	ticks := []chart.Tick{}
	for v := start; v <= end+bestStep/2; v += bestStep {
		v = round6(v)
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+3 {
			break
		}
	}
	return ticks
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case av >= 0.01:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
}

// extent tracks the data range of one value axis.
type extent struct {
	min, max float64
	seen     bool
	hasBars  bool
}

func (e *extent) add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if !e.seen {
		e.min, e.max, e.seen = v, v, true
		return
	}
	e.min = math.Min(e.min, v)
	e.max = math.Max(e.max, v)
}

// axisScale resolves the drawn range and ticks for one value axis. Bars and
// BeginAtZero anchor the range at zero; explicit Min/Max win over data.
func axisScale(ax types.Axis, e extent) (*chart.ContinuousRange, []chart.Tick) {
	lo, hi := 0.0, 1.0
	if e.seen {
		lo, hi = e.min, e.max
	}
	if (ax.BeginAtZero || e.hasBars) && lo > 0 {
		lo = 0
	}
	if ax.Min != nil {
		lo = *ax.Min
	}
	if ax.Max != nil {
		hi = *ax.Max
	}
	if hi <= lo {
		hi = lo + 1
	}
	ticks := niceTicks(lo, hi, 6)
	var kept []chart.Tick
	for _, t := range ticks {
		if ax.Min != nil && t.Value < lo {
			continue
		}
		if ax.Max != nil && t.Value > hi {
			continue
		}
		kept = append(kept, t)
	}
	if ax.Min != nil && (len(kept) == 0 || kept[0].Value != lo) {
		kept = append([]chart.Tick{{Value: lo, Label: formatTick(lo)}}, kept...)
	}
	if ax.Max != nil && (len(kept) == 0 || kept[len(kept)-1].Value != hi) {
		kept = append(kept, chart.Tick{Value: hi, Label: formatTick(hi)})
	}
	if len(kept) < 2 {
		kept = []chart.Tick{{Value: lo, Label: formatTick(lo)}, {Value: hi, Label: formatTick(hi)}}
	}
	return &chart.ContinuousRange{Min: kept[0].Value, Max: kept[len(kept)-1].Value}, kept
}

// categoryAxis places labels at integer positions with half-step padding on both ends.
// Dense label sets are thinned to every step-th label.
func categoryAxis(labels []string, step int) (*chart.ContinuousRange, []chart.Tick) {
	if step < 1 {
		step = 1
	}
	n := len(labels)
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, l := range labels {
		if i%step != 0 {
			l = ""
		}
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	ticks = append(ticks, chart.Tick{Value: float64(n) - 0.5})
	return &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5}, ticks
}

// labelLayout decides rotation and thinning for the category axis.
func labelLayout(labels []string, width int, rotate float64) (float64, int, int) {
	longest := 0
	for _, l := range labels {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	perLabel := longest*7 + 10
	if rotate == 0 && len(labels)*perLabel > width {
		rotate = 45
	}
	if rotate != 0 {
		perLabel = 18
	}
	fit := width / perLabel
	if fit < 1 {
		fit = 1
	}
	step := int(math.Ceil(float64(len(labels)) / float64(fit)))
	if step < 1 {
		step = 1
	}
	padBottom := 28
	if rotate != 0 {
		padBottom += int(float64(longest*6) * math.Sin(rotate*math.Pi/180))
		if padBottom > 130 {
			padBottom = 130
		}
	}
	return rotate, step, padBottom
}
