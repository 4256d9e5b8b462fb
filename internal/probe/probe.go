// Package probe sequences a single interface utilization check: resolve the
// interface, verify its state, sample its counters and evaluate thresholds.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tonhe/flocheck/internal/engine"
	"github.com/tonhe/flocheck/internal/speed"
	"github.com/tonhe/flocheck/internal/threshold"
)

// DefaultDelay is the gap between the two counter samples.
const DefaultDelay = 10 * time.Second

// Options are the per-run parameters.
type Options struct {
	Interface string
	Warning   string
	Critical  string
	// MaxSpeed overrides the device-reported speed, e.g. "100m".
	MaxSpeed     string
	Delay        time.Duration
	CheckDuplex  bool
	ExpectDuplex engine.Duplex
}

// Validate checks required options.
func (o Options) Validate() error {
	switch {
	case o.Interface == "":
		return errors.New("interface name is required")
	case o.Warning == "":
		return errors.New("warning threshold is required")
	case o.Critical == "":
		return errors.New("critical threshold is required")
	case o.Delay <= 0:
		return fmt.Errorf("sample delay must be positive, got %s", o.Delay)
	case o.CheckDuplex && o.ExpectDuplex != engine.DuplexFull && o.ExpectDuplex != engine.DuplexHalf:
		return fmt.Errorf("expected duplex must be half or full, got %s", o.ExpectDuplex)
	}
	return nil
}

// Probe runs one check against one device.
type Probe struct {
	opts    Options
	reader  *engine.Reader
	sampler *engine.Sampler
	log     *logrus.Entry
}

// New creates a Probe reading through client. highCapacity selects 64-bit
// counters.
func New(client engine.Client, highCapacity bool, opts Options, log *logrus.Entry) *Probe {
	reader := engine.NewReader(client, highCapacity)
	return &Probe{
		opts:    opts,
		reader:  reader,
		sampler: engine.NewSampler(reader, opts.Delay),
		log:     log.WithField("interface", opts.Interface),
	}
}

// Run executes the check. A non-nil error means no verdict could be formed;
// device-state problems are reported as a CRITICAL Result instead.
func (p *Probe) Run(ctx context.Context) (*Result, error) {
	if err := p.opts.Validate(); err != nil {
		return nil, configError("options", err)
	}

	warn, crit, err := p.parseThresholds()
	if err != nil {
		return nil, err
	}

	var override uint64
	if p.opts.MaxSpeed != "" {
		if override, err = speed.Parse(p.opts.MaxSpeed); err != nil {
			return nil, configError("max speed", err)
		}
	}

	handle, err := p.reader.ResolveIndex(p.opts.Interface)
	if err != nil {
		if errors.Is(err, engine.ErrInterfaceNotFound) {
			return nil, configError("resolve interface", err)
		}
		return nil, commError("resolve interface", err)
	}
	log := p.log.WithField("ifindex", handle.Index)
	log.Debug("Resolved interface")

	status, err := p.reader.OperStatus(handle.Index)
	if err != nil {
		return nil, commError("read operational status", err)
	}
	log.WithField("status", status).Debug("Read operational status")
	if status != engine.OperUp {
		return &Result{
			Severity: threshold.Critical,
			Message:  fmt.Sprintf("interface %s is %s, not up, cannot check utilization", handle.Name, status),
		}, nil
	}

	if p.opts.CheckDuplex {
		duplex, err := p.reader.Duplex(handle.Index)
		if err != nil {
			return nil, commError("read duplex", err)
		}
		log.WithField("duplex", duplex).Debug("Read duplex status")
		if duplex == engine.DuplexUnsupported {
			return nil, configError("read duplex",
				errors.New("device does not report per-port duplex status, disable the duplex check"))
		}
		if duplex != p.opts.ExpectDuplex {
			return &Result{
				Severity: threshold.Critical,
				Message: fmt.Sprintf("interface %s is in %s mode, expected %s",
					handle.Name, duplex.Phrase(), p.opts.ExpectDuplex.Phrase()),
			}, nil
		}
	}

	maxBps := override
	if p.opts.MaxSpeed == "" {
		if maxBps, err = p.reader.NominalSpeed(handle.Index); err != nil {
			return nil, commError("read interface speed", err)
		}
	}
	if maxBps == 0 {
		return nil, configError("determine max speed", engine.ErrZeroSpeed)
	}
	log.WithField("max_speed", speed.Format(maxBps)).Debug("Determined max speed")

	first, second, err := p.sampler.Sample(ctx, handle.Index)
	if err != nil {
		return nil, commError("sample counters", err)
	}

	util, err := engine.ComputeUtilization(first, second, p.opts.Delay, maxBps)
	if err != nil {
		return nil, commError("compute utilization", err)
	}
	log.WithFields(logrus.Fields{
		"in_rate":  util.InRate,
		"out_rate": util.OutRate,
		"in_util":  util.In,
		"out_util": util.Out,
	}).Debug("Computed utilization")

	report := threshold.Evaluate(util.Values(), warn, crit, engine.UtilizationMetrics)
	return &Result{
		Severity: report.Severity,
		Label:    p.label(handle),
		Message:  report.Phrases(),
		Report:   report,
	}, nil
}

// parseThresholds parses both expressions and reports every fault at once.
func (p *Probe) parseThresholds() (warn, crit threshold.Expression, err error) {
	warn, warnErrs := threshold.Parse(p.opts.Warning, engine.UtilizationMetrics)
	crit, critErrs := threshold.Parse(p.opts.Critical, engine.UtilizationMetrics)

	var errs []error
	for _, e := range warnErrs {
		errs = append(errs, fmt.Errorf("warning: %w", e))
	}
	for _, e := range critErrs {
		errs = append(errs, fmt.Errorf("critical: %w", e))
	}
	if len(errs) > 0 {
		return nil, nil, configError("parse thresholds", errors.Join(errs...))
	}
	return warn, crit, nil
}

func (p *Probe) label(h engine.InterfaceHandle) string {
	if !p.opts.CheckDuplex {
		return h.Name
	}
	return fmt.Sprintf("%s (%s)", h.Name, p.opts.ExpectDuplex.Phrase())
}
