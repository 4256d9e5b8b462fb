package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tonhe/flocheck/internal/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change flocheck defaults",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config directory",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				dir, err := config.GetConfigDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, dir)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective config",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.cfg.Encode(a.stdout)
			},
		},
		&cobra.Command{
			Use:   "identity NAME",
			Short: "Set the default identity",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				a.cfg.DefaultIdentity = args[0]
				if err := a.saveConfig(); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Default identity set to %q.\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "delay DURATION",
			Short: "Set the default gap between counter samples, e.g. 30s",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				d, err := time.ParseDuration(args[0])
				if err != nil {
					return fmt.Errorf("invalid delay: %w", err)
				}
				a.cfg.Delay = d
				if a.cfg.Timeout <= d {
					a.cfg.Timeout = d + 5*time.Second
				}
				if err := a.saveConfig(); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Default delay set to %s.\n", d)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) saveConfig() error {
	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("creating config directories: %w", err)
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if err := config.SaveConfig(a.cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	a.log.WithField("path", path).Debug("Saved config")
	return nil
}
