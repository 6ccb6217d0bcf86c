package engine

import (
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// seedStride separates per-iteration seeds; an odd 64-bit constant keeps the
// derived seeds distinct for any base seed. The stride exceeds math.MaxInt64,
// so the derivation wraps in uint64.
const seedStride uint64 = 0x9E3779B97F4A7C15

// jitterScale is the relative magnitude of the deterministic perturbation
// applied to zero-variance resamples before fitting.
const jitterScale = 1e-3

// BootstrapOptions configures the resampling run. Zero values select the
// defaults noted on each field.
type BootstrapOptions struct {
	// Resamples is the number of bootstrap iterations (default 1000).
	Resamples int
	// Alpha sets the percentile interval to [alpha/2, 1-alpha/2] (default 0.05).
	Alpha float64
	// Workers bounds the fit parallelism (default GOMAXPROCS).
	Workers int
	// Seed is the base of the per-iteration random sources. Results are
	// deterministic for a fixed seed regardless of Workers.
	Seed int64
}

func (o BootstrapOptions) withDefaults() BootstrapOptions {
	if o.Resamples <= 0 {
		o.Resamples = 1000
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		o.Alpha = 0.05
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// BootstrapCI estimates percentile confidence intervals for the fitted shape
// and scale by resampling the interval sequence with replacement, keeping
// each drawn element's censoring flag paired with its duration.
//
// Per-resample fit failures are tolerated: a resample with zero observed
// intervals is refit in uncensored mode, and zero-variance resamples receive
// a small seeded multiplicative jitter first. If more than half the resamples
// still fail, the run surfaces a DegenerateDataError instead of an interval
// over too few samples.
func (f *Fitter) BootstrapCI(intervals []models.TBFInterval, opts BootstrapOptions) (models.ConfidenceInterval, error) {
	if len(intervals) == 0 {
		return models.ConfidenceInterval{}, &InsufficientDataError{Reason: "empty interval sequence"}
	}
	opts = opts.withDefaults()

	shapes := make([]float64, opts.Resamples)
	scales := make([]float64, opts.Resamples)
	ok := make([]bool, opts.Resamples)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fit, err := f.fitResample(intervals, iterationSeed(opts.Seed, i))
				if err == nil {
					shapes[i] = fit.Shape
					scales[i] = fit.Scale
					ok[i] = true
				}
			}
		}()
	}
	for i := 0; i < opts.Resamples; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	goodShapes := make([]float64, 0, opts.Resamples)
	goodScales := make([]float64, 0, opts.Resamples)
	for i := 0; i < opts.Resamples; i++ {
		if ok[i] {
			goodShapes = append(goodShapes, shapes[i])
			goodScales = append(goodScales, scales[i])
		}
	}

	failed := opts.Resamples - len(goodShapes)
	if failed*2 > opts.Resamples {
		return models.ConfidenceInterval{}, &DegenerateDataError{
			Failed: failed,
			Total:  opts.Resamples,
			Reason: "too many bootstrap resamples failed to fit",
		}
	}

	sort.Float64s(goodShapes)
	sort.Float64s(goodScales)
	lower := opts.Alpha / 2
	upper := 1 - opts.Alpha/2

	return models.ConfidenceInterval{
		Shape: models.Bound{
			Low:  stat.Quantile(lower, stat.LinInterp, goodShapes, nil),
			High: stat.Quantile(upper, stat.LinInterp, goodShapes, nil),
		},
		Scale: models.Bound{
			Low:  stat.Quantile(lower, stat.LinInterp, goodScales, nil),
			High: stat.Quantile(upper, stat.LinInterp, goodScales, nil),
		},
	}, nil
}

// iterationSeed derives the i-th resample's seed from the base seed with
// wrapping uint64 arithmetic.
func iterationSeed(base int64, i int) int64 {
	return int64(uint64(base) + uint64(i)*seedStride)
}

// fitResample draws one paired resample and fits it, applying the jitter and
// uncensored-fallback rules.
func (f *Fitter) fitResample(intervals []models.TBFInterval, seed int64) (models.WeibullFit, error) {
	rng := rand.New(rand.NewSource(seed))
	n := len(intervals)

	sample := make([]models.TBFInterval, n)
	anyObserved := false
	for i := range sample {
		sample[i] = intervals[rng.Intn(n)]
		if !sample[i].Censored {
			anyObserved = true
		}
	}

	if zeroVariance(sample) {
		// Some optimizers collapse on identical values; nudge each duration
		// with a seeded multiplicative jitter.
		for i := range sample {
			sample[i].DurationHours *= 1 + jitterScale*(rng.Float64()-0.5)
		}
	}

	if !anyObserved {
		durations := make([]float64, n)
		for i, iv := range sample {
			durations[i] = iv.DurationHours
		}
		return f.FitUncensored(durations)
	}
	return f.Fit(sample)
}

func zeroVariance(intervals []models.TBFInterval) bool {
	for _, iv := range intervals[1:] {
		if iv.DurationHours != intervals[0].DurationHours {
			return false
		}
	}
	return true
}
