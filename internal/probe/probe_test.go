package probe

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonhe/flocheck/internal/engine"
	"github.com/tonhe/flocheck/internal/engine/enginetest"
	"github.com/tonhe/flocheck/internal/speed"
	"github.com/tonhe/flocheck/internal/threshold"
)

// On a 10 Mb/s link sampled 10 s apart, 125000 octets equal 1% utilization.
const octetsPerPercent = 125_000

func device(inPct, outPct uint64) *enginetest.Device {
	return enginetest.NewDevice().
		Set(engine.OIDifDescr+".1", enginetest.OctetString("Loopback0")).
		Set(engine.OIDifDescr+".3", enginetest.OctetString("GigabitEthernet0/1")).
		Set(engine.OIDifOperStatus+".3", enginetest.Integer(1)).
		Set(engine.OIDdot3StatsIndex+".1", enginetest.Integer(3)).
		Set(engine.OIDdot3StatsDuplexStatus+".1", enginetest.Integer(3)).
		Set(engine.OIDifSpeed+".3", enginetest.Gauge32(10_000_000)).
		Set(engine.OIDifHCInOctets+".3",
			enginetest.Counter64(5000), enginetest.Counter64(5000+inPct*octetsPerPercent)).
		Set(engine.OIDifHCOutOctets+".3",
			enginetest.Counter64(7000), enginetest.Counter64(7000+outPct*octetsPerPercent))
}

func defaultOptions() Options {
	return Options{
		Interface:    "GigabitEthernet0/1",
		Warning:      "in_util,gt,90:out_util,gt,90",
		Critical:     "in_util,gt,95:out_util,gt,95",
		Delay:        DefaultDelay,
		CheckDuplex:  true,
		ExpectDuplex: engine.DuplexFull,
	}
}

func newTestProbe(dev *enginetest.Device, opts Options) (*Probe, *time.Duration) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	p := New(dev, true, opts, logrus.NewEntry(logger))
	var slept time.Duration
	p.sampler.Sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}
	return p, &slept
}

func counterRead(dev *enginetest.Device) bool {
	for _, oid := range dev.Gets {
		if oid == engine.OIDifHCInOctets+".3" {
			return true
		}
	}
	return false
}

func TestRunOK(t *testing.T) {
	p, slept := newTestProbe(device(8, 2), defaultOptions())

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, threshold.OK, res.Severity)
	assert.Equal(t, 0, res.ExitCode())
	assert.Equal(t, 10*time.Second, *slept)
	assert.Equal(t,
		"IFUTIL OK - GigabitEthernet0/1 (full duplex): in_util 8.00% OK, out_util 2.00% OK | "+
			"'in_util'=8.00%;90;95;0;100 'out_util'=2.00%;90;95;0;100",
		res.String())
}

func TestRunWarning(t *testing.T) {
	opts := defaultOptions()
	opts.Critical = "out_util,gt,95"
	p, _ := newTestProbe(device(93, 85), opts)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, threshold.Warning, res.Severity)
	assert.Equal(t, 1, ExitCode(res, err))
	assert.Equal(t,
		"IFUTIL WARNING - GigabitEthernet0/1 (full duplex): in_util 93.00% WARNING (in_util,gt,90), out_util 85.00% OK | "+
			"'in_util'=93.00%;90;;0;100 'out_util'=85.00%;90;95;0;100",
		res.String())
}

func TestRunCriticalBeatsWarning(t *testing.T) {
	p, _ := newTestProbe(device(97, 91), defaultOptions())

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, threshold.Critical, res.Severity)
	assert.Equal(t, 2, res.ExitCode())
	assert.Equal(t, threshold.Critical, res.Report.Metrics[0].Status)
	assert.Equal(t, threshold.Warning, res.Report.Metrics[1].Status)
}

func TestRunInterfaceDown(t *testing.T) {
	dev := device(1, 1).Set(engine.OIDifOperStatus+".3", enginetest.Integer(2))
	p, _ := newTestProbe(dev, defaultOptions())

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, threshold.Critical, res.Severity)
	assert.Nil(t, res.Report)
	assert.Equal(t,
		"IFUTIL CRITICAL - interface GigabitEthernet0/1 is down, not up, cannot check utilization",
		res.String())
	assert.False(t, dev.Walked(engine.OIDdot3StatsIndex))
	assert.False(t, counterRead(dev))
}

func TestRunDuplexMismatch(t *testing.T) {
	dev := device(1, 1).Set(engine.OIDdot3StatsDuplexStatus+".1", enginetest.Integer(2))
	p, _ := newTestProbe(dev, defaultOptions())

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, threshold.Critical, res.Severity)
	assert.Contains(t, res.Message, "half duplex")
	assert.Contains(t, res.Message, "expected full duplex")
	assert.False(t, counterRead(dev))
}

func TestRunHalfDuplexExpected(t *testing.T) {
	dev := device(1, 1).Set(engine.OIDdot3StatsDuplexStatus+".1", enginetest.Integer(2))
	opts := defaultOptions()
	opts.ExpectDuplex = engine.DuplexHalf
	p, _ := newTestProbe(dev, opts)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, threshold.OK, res.Severity)
	assert.Equal(t, "GigabitEthernet0/1 (half duplex)", res.Label)
}

func TestRunDuplexCheckDisabled(t *testing.T) {
	dev := enginetest.NewDevice().
		Set(engine.OIDifDescr+".3", enginetest.OctetString("GigabitEthernet0/1")).
		Set(engine.OIDifOperStatus+".3", enginetest.Integer(1)).
		Set(engine.OIDifSpeed+".3", enginetest.Gauge32(10_000_000)).
		Set(engine.OIDifHCInOctets+".3", enginetest.Counter64(0), enginetest.Counter64(octetsPerPercent)).
		Set(engine.OIDifHCOutOctets+".3", enginetest.Counter64(0), enginetest.Counter64(0))
	opts := defaultOptions()
	opts.CheckDuplex = false
	p, _ := newTestProbe(dev, opts)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, threshold.OK, res.Severity)
	assert.Equal(t, "GigabitEthernet0/1", res.Label)
	assert.False(t, dev.Walked(engine.OIDdot3StatsIndex))
}

func TestRunDuplexUnsupported(t *testing.T) {
	dev := enginetest.NewDevice().
		Set(engine.OIDifDescr+".3", enginetest.OctetString("GigabitEthernet0/1")).
		Set(engine.OIDifOperStatus+".3", enginetest.Integer(1))
	p, _ := newTestProbe(dev, defaultOptions())

	res, err := p.Run(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, 3, ExitCode(res, err))
	assert.Contains(t, err.Error(), "disable the duplex check")
}

func TestRunInterfaceNotFound(t *testing.T) {
	opts := defaultOptions()
	opts.Interface = "TenGigabitEthernet1/1"
	p, _ := newTestProbe(device(1, 1), opts)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, engine.ErrInterfaceNotFound)
}

func TestRunZeroSpeed(t *testing.T) {
	dev := device(1, 1).Set(engine.OIDifSpeed+".3", enginetest.Gauge32(0))
	p, _ := newTestProbe(dev, defaultOptions())

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, engine.ErrZeroSpeed)
	assert.False(t, counterRead(dev), "no sampling before the speed guard")
}

func TestRunZeroSpeedOverride(t *testing.T) {
	opts := defaultOptions()
	opts.MaxSpeed = "0"
	p, _ := newTestProbe(device(1, 1), opts)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, engine.ErrZeroSpeed)
}

func TestRunSpeedOverride(t *testing.T) {
	dev := device(8, 2).Set(engine.OIDifSpeed+".3", enginetest.Gauge32(0))
	opts := defaultOptions()
	opts.MaxSpeed = "10m"
	p, _ := newTestProbe(dev, opts)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Report.Metrics[0].Value)
	for _, oid := range dev.Gets {
		assert.NotEqual(t, engine.OIDifSpeed+".3", oid, "override must skip the speed read")
	}
}

func TestRunInvalidSpeedOverride(t *testing.T) {
	opts := defaultOptions()
	opts.MaxSpeed = "10x"
	dev := device(1, 1)
	p, _ := newTestProbe(dev, opts)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, speed.ErrInvalidMultiplier)
	assert.Empty(t, dev.Walks)
}

func TestRunThresholdErrorsReportedTogether(t *testing.T) {
	opts := defaultOptions()
	opts.Warning = "bogus,gt,90"
	opts.Critical = "in_util,eq,95"
	dev := device(1, 1)
	p, _ := newTestProbe(dev, opts)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, threshold.ErrUnknownMetric)
	assert.ErrorIs(t, err, threshold.ErrUnknownOperator)
	assert.Empty(t, dev.Walks, "no device I/O on configuration errors")

	line := ErrorLine(err)
	assert.NotContains(t, line, "\n")
	assert.Contains(t, line, "IFUTIL UNKNOWN - parse thresholds: warning: unknown metric")
}

func TestRunMissingOptions(t *testing.T) {
	opts := defaultOptions()
	opts.Critical = ""
	p, _ := newTestProbe(device(1, 1), opts)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
}

func TestRunCounterReadFailure(t *testing.T) {
	boom := errors.New("request timeout (after 0 retries)")
	dev := device(1, 1).Fail(engine.OIDifHCInOctets+".3", boom)
	p, _ := newTestProbe(dev, defaultOptions())

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrCommunication)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "IFUTIL UNKNOWN - sample counters: request timeout (after 0 retries)", ErrorLine(err))
}

func TestRunCounterWrap(t *testing.T) {
	dev := device(1, 1).Set(engine.OIDifHCInOctets+".3", enginetest.Counter64(500), enginetest.Counter64(10))
	p, _ := newTestProbe(dev, defaultOptions())

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrCommunication)
	assert.ErrorIs(t, err, engine.ErrCounterWrap)
}

func TestRunDeterministic(t *testing.T) {
	p1, _ := newTestProbe(device(93, 85), defaultOptions())
	p2, _ := newTestProbe(device(93, 85), defaultOptions())

	r1, err := p1.Run(context.Background())
	require.NoError(t, err)
	r2, err := p2.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, defaultOptions().Validate())

	opts := defaultOptions()
	opts.Interface = ""
	assert.Error(t, opts.Validate())

	opts = defaultOptions()
	opts.Delay = 0
	assert.Error(t, opts.Validate())

	opts = defaultOptions()
	opts.ExpectDuplex = engine.DuplexUnknown
	assert.Error(t, opts.Validate())
	opts.CheckDuplex = false
	assert.NoError(t, opts.Validate())
}
