package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/tonhe/flocheck/internal/threshold"
)

// Metric names produced by the sampler.
const (
	MetricInUtil  = "in_util"
	MetricOutUtil = "out_util"
)

// UtilizationMetrics lists the tracked metrics in report order.
var UtilizationMetrics = []string{MetricInUtil, MetricOutUtil}

var (
	// ErrCounterWrap indicates that an SNMP counter decreased between samples.
	ErrCounterWrap = errors.New("counter wrap detected")
	// ErrZeroSpeed guards the utilization division.
	ErrZeroSpeed = errors.New("maximum interface speed is zero")
)

// CounterSample holds raw SNMP counter values at a point in time.
type CounterSample struct {
	InOctets  uint64
	OutOctets uint64
	Timestamp time.Time
}

// Utilization holds per-direction rates and their share of the link speed.
type Utilization struct {
	InRate  float64 // bits/s
	OutRate float64 // bits/s
	In      float64 // percent, two decimals
	Out     float64 // percent, two decimals
}

// Values returns the utilization percentages keyed by metric name.
func (u Utilization) Values() threshold.Values {
	return threshold.Values{
		MetricInUtil:  u.In,
		MetricOutUtil: u.Out,
	}
}

// ComputeUtilization derives utilization from two samples taken elapsed
// apart on a link of maxBps. elapsed is the configured sampling delay, not
// the difference of the sample timestamps.
func ComputeUtilization(first, second CounterSample, elapsed time.Duration, maxBps uint64) (Utilization, error) {
	if maxBps == 0 {
		return Utilization{}, ErrZeroSpeed
	}
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return Utilization{}, errors.New("zero or negative elapsed time")
	}
	if second.InOctets < first.InOctets || second.OutOctets < first.OutOctets {
		return Utilization{}, ErrCounterWrap
	}

	deltaIn := second.InOctets - first.InOctets
	deltaOut := second.OutOctets - first.OutOctets
	capacity := seconds * float64(maxBps)

	return Utilization{
		InRate:  float64(deltaIn) * 8 / seconds,
		OutRate: float64(deltaOut) * 8 / seconds,
		In:      percent(deltaIn, capacity),
		Out:     percent(deltaOut, capacity),
	}, nil
}

func percent(delta uint64, capacity float64) float64 {
	return math.Round(float64(delta)*8*100/capacity*100) / 100
}

// Sampler takes two counter samples separated by a fixed delay.
type Sampler struct {
	Reader *Reader
	Delay  time.Duration
	// Sleep blocks for d or until ctx is done. Defaults to SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewSampler creates a Sampler reading through reader.
func NewSampler(reader *Reader, delay time.Duration) *Sampler {
	return &Sampler{Reader: reader, Delay: delay, Sleep: SleepContext}
}

// Sample reads the counters, waits for the delay and reads them again. The
// reads never overlap.
func (s *Sampler) Sample(ctx context.Context, index int) (CounterSample, CounterSample, error) {
	first, err := s.Reader.Counters(index)
	if err != nil {
		return CounterSample{}, CounterSample{}, err
	}

	sleep := s.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	if err := sleep(ctx, s.Delay); err != nil {
		return CounterSample{}, CounterSample{}, err
	}

	second, err := s.Reader.Counters(index)
	if err != nil {
		return CounterSample{}, CounterSample{}, err
	}
	return first, second, nil
}

// SleepContext blocks for d, returning early with ctx's error if it is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
