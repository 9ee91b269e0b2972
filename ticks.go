package lcfiplot

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks labels round values about NSuggestedTicks apart (default 5)
// with unlabelled minor ticks between them. Tick values are rounded to the
// minor step so they print without float noise.
type PreciseTicks struct {
	NSuggestedTicks int
}

// niceSteps are the major step mantissas and the minor divisions of each.
var niceSteps = []struct {
	mantissa float64
	minors   int
}{{1, 5}, {2, 4}, {2.5, 5}, {5, 5}, {10, 5}}

func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	if max <= min {
		panic("illegal range")
	}
	n := t.NSuggestedTicks
	if n < 2 {
		n = 5
	}

	raw := (max - min) / float64(n-1)
	mag := math.Pow10(int(math.Floor(math.Log10(raw))))
	step := niceSteps[len(niceSteps)-1]
	for _, s := range niceSteps {
		if s.mantissa >= raw/mag-1e-9 {
			step = s
			break
		}
	}
	minor := step.mantissa * mag / float64(step.minors)
	digits := 1 - int(math.Floor(math.Log10(minor)))
	if digits < 0 {
		digits = 0
	}

	var ticks []plot.Tick
	first := int(math.Ceil(min/minor - 1e-9))
	last := int(math.Floor(max/minor + 1e-9))
	for k := first; k <= last; k++ {
		v, _ := strconv.ParseFloat(strconv.FormatFloat(float64(k)*minor, 'f', digits, 64), 64)
		tk := plot.Tick{Value: v}
		if k%step.minors == 0 {
			tk.Label = formatFloatTick(v, -1)
		}
		ticks = append(ticks, tk)
	}
	return ticks
}

func formatFloatTick(v float64, prec int) string {
	return strconv.FormatFloat(v, 'g', prec, 64)
}

// LogScale is a logarithmic axis normalizer that tolerates empty bins:
// values at or below Floor (default 1e-3) are drawn at the floor.
type LogScale struct {
	Floor float64
}

func (s LogScale) Normalize(min, max, x float64) float64 {
	min, max = logRange(s.Floor, min, max)
	x = math.Max(x, min)
	logMin := math.Log(min)
	return (math.Log(x) - logMin) / (math.Log(max) - logMin)
}

// LogTicks puts a labelled tick on every decade and minor ticks on the
// integer multiples in between.
type LogTicks struct {
	Floor float64
}

func (t LogTicks) Ticks(min, max float64) []plot.Tick {
	min, max = logRange(t.Floor, min, max)

	var ticks []plot.Tick
	for e := math.Floor(math.Log10(min)); e <= math.Ceil(math.Log10(max)); e++ {
		decade := math.Pow(10, e)
		if decade >= min && decade <= max {
			ticks = append(ticks, plot.Tick{Value: decade, Label: formatFloatTick(decade, -1)})
		}
		for m := 2.0; m < 10; m++ {
			if v := m * decade; v >= min && v <= max {
				ticks = append(ticks, plot.Tick{Value: v})
			}
		}
	}
	return ticks
}

func logRange(floor, min, max float64) (float64, float64) {
	if floor <= 0 {
		floor = 1e-3
	}
	min = math.Max(min, floor)
	if max <= min {
		max = min * 10
	}
	return min, max
}
