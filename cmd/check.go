package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tonhe/flocheck/internal/engine"
	"github.com/tonhe/flocheck/internal/identity"
	"github.com/tonhe/flocheck/internal/probe"
)

const checkCmdName = "check"

type checkFlags struct {
	host          string
	port          int
	iface         string
	warning       string
	critical      string
	maxSpeed      string
	delaySeconds  int
	halfDuplex    bool
	noDuplexCheck bool
	identity      string
	community     string
	snmpVersion   string
	timeout       time.Duration
}

// sessionOpener connects to a device.
type sessionOpener func(ctx context.Context, host string, port int, id *identity.Identity, timeout time.Duration) (session, error)

type session interface {
	engine.Client
	HighCapacity() bool
	Close() error
}

func openSession(ctx context.Context, host string, port int, id *identity.Identity, timeout time.Duration) (session, error) {
	return engine.Open(ctx, host, port, id, timeout)
}

func (a *app) newCheckCmd() *cobra.Command {
	f := &checkFlags{}
	cmd := &cobra.Command{
		Use:   checkCmdName,
		Short: "Check utilization of one interface",
		Example: `  flocheck check -H 10.0.0.1 -C public -i GigabitEthernet0/1 \
      -w in_util,gt,80:out_util,gt,80 -c in_util,gt,95:out_util,gt,95`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCheck(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.host, "host", "H", "", "Device hostname or address")
	fl.IntVarP(&f.port, "port", "p", 161, "SNMP port (default from config)")
	fl.StringVarP(&f.iface, "interface", "i", "", "Interface name as reported by ifDescr or ifName")
	fl.StringVarP(&f.warning, "warning", "w", "", "Warning threshold, e.g. in_util,gt,80:out_util,gt,80")
	fl.StringVarP(&f.critical, "critical", "c", "", "Critical threshold, e.g. in_util,gt,95")
	fl.StringVarP(&f.maxSpeed, "max-speed", "s", "", "Override interface speed, e.g. 100m or 1g")
	fl.IntVarP(&f.delaySeconds, "delay", "d", int(probe.DefaultDelay/time.Second), "Seconds between counter samples (default from config)")
	fl.BoolVar(&f.halfDuplex, "half-duplex", false, "Expect half duplex instead of full duplex")
	fl.BoolVar(&f.noDuplexCheck, "no-duplex-check", false, "Skip the duplex check")
	fl.StringVar(&f.identity, "identity", "", "Identity name from the vault (default from config)")
	fl.StringVarP(&f.community, "community", "C", "", "SNMP v1/v2c community, bypasses the vault")
	fl.StringVar(&f.snmpVersion, "snmp-version", identity.Version2c, "SNMP version used with --community (1 or 2c)")
	fl.DurationVarP(&f.timeout, "timeout", "t", 15*time.Second, "Overall timeout (default from config)")

	for _, name := range []string{"host", "interface", "warning", "critical"} {
		_ = cmd.MarkFlagRequired(name)
	}
	cmd.MarkFlagsMutuallyExclusive("identity", "community")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, f *checkFlags) error {
	fl := cmd.Flags()
	if !fl.Changed("port") {
		f.port = a.cfg.Port
	}
	if !fl.Changed("timeout") {
		f.timeout = a.cfg.Timeout
	}
	delay := time.Duration(f.delaySeconds) * time.Second
	if !fl.Changed("delay") {
		delay = a.cfg.Delay
	}

	opts := probe.Options{
		Interface:    f.iface,
		Warning:      f.warning,
		Critical:     f.critical,
		MaxSpeed:     f.maxSpeed,
		Delay:        delay,
		CheckDuplex:  !f.noDuplexCheck,
		ExpectDuplex: engine.DuplexFull,
	}
	if f.halfDuplex {
		opts.ExpectDuplex = engine.DuplexHalf
	}
	if f.timeout <= delay {
		return fmt.Errorf("timeout %s must exceed the sample delay %s", f.timeout, delay)
	}

	id, err := a.resolveCredentials(f)
	if err != nil {
		return err
	}

	log := a.log.WithFields(logrus.Fields{"host": f.host, "identity": id.Name})

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	sess, err := a.open(ctx, f.host, f.port, id, f.timeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.WithError(err).Debug("Closing SNMP session")
		}
	}()

	res, err := probe.New(sess, sess.HighCapacity(), opts, log).Run(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.WithError(err).Warn("Probe timed out")
		}
		return err
	}

	fmt.Fprintln(a.stdout, res.String())
	a.exitCode = res.ExitCode()
	return nil
}

// resolveCredentials picks the command-line community or a vault identity.
func (a *app) resolveCredentials(f *checkFlags) (*identity.Identity, error) {
	if f.community != "" {
		if f.snmpVersion != identity.Version1 && f.snmpVersion != identity.Version2c {
			return nil, fmt.Errorf("--community requires --snmp-version 1 or 2c, got %q", f.snmpVersion)
		}
		return identity.Community(f.snmpVersion, f.community), nil
	}

	name := f.identity
	if name == "" {
		name = a.cfg.DefaultIdentity
	}
	if name == "" {
		return nil, errors.New("no SNMP credentials: pass --community or --identity, or set default_identity")
	}

	store, err := a.openStore(false)
	if err != nil {
		return nil, err
	}
	return store.Get(name)
}
