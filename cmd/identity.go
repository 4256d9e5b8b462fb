package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tonhe/flocheck/internal/config"
	"github.com/tonhe/flocheck/internal/engine"
	"github.com/tonhe/flocheck/internal/identity"
	"github.com/tonhe/flocheck/tui"
	"github.com/tonhe/flocheck/tui/styles"
	"golang.org/x/term"
)

// EnvMasterKey holds the vault password for non-interactive runs.
const EnvMasterKey = "FLOCHECK_MASTER_KEY"

func (a *app) newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage SNMP credentials in the encrypted vault",
	}

	var port int
	var timeout time.Duration
	test := &cobra.Command{
		Use:   "test NAME HOST",
		Short: "Read sysDescr from HOST using identity NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.identityTest(cmd, args[0], args[1], port, timeout)
		},
	}
	test.Flags().IntVarP(&port, "port", "p", 161, "SNMP port")
	test.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "SNMP timeout")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored identities",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return a.identityList() },
		},
		&cobra.Command{
			Use:   "add",
			Short: "Add an identity interactively",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return a.identityAdd() },
		},
		&cobra.Command{
			Use:   "remove NAME",
			Short: "Remove an identity",
			Args:  cobra.ExactArgs(1),
			RunE:  func(_ *cobra.Command, args []string) error { return a.identityRemove(args[0]) },
		},
		test,
	)
	return cmd
}

// openStore opens the identity vault. An empty password is tried first so
// password-less vaults open silently; then FLOCHECK_MASTER_KEY; then a
// terminal prompt when interactive is set and stdin is a terminal.
func (a *app) openStore(interactive bool) (*identity.FileStore, error) {
	path, err := config.GetIdentityStorePath()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating config directories: %w", err)
	}

	store, err := identity.OpenFileStore(path, []byte(""))
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, identity.ErrDecrypt) {
		return nil, err
	}

	if key := os.Getenv(EnvMasterKey); key != "" {
		return identity.OpenFileStore(path, []byte(key))
	}
	if !interactive || a.stdin == nil || !term.IsTerminal(int(a.stdin.Fd())) {
		return nil, fmt.Errorf("identity vault is locked: set %s", EnvMasterKey)
	}

	fmt.Fprint(a.stderr, "Master password: ")
	password, err := term.ReadPassword(int(a.stdin.Fd()))
	fmt.Fprintln(a.stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return identity.OpenFileStore(path, password)
}

func (a *app) identityList() error {
	store, err := a.openStore(true)
	if err != nil {
		return err
	}
	summaries, err := store.List()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(a.stdout, "No identities configured.")
		return nil
	}
	fmt.Fprintln(a.stdout, identityTable(summaries, styles.Default))
	return nil
}

func identityTable(summaries []identity.Summary, sty *styles.Styles) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(sty.TableBorder).
		Headers("NAME", "VERSION", "USER", "AUTH", "PRIV").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return sty.TableHeader
			case col == 0:
				return sty.IdentityName
			case col == 1:
				return sty.IdentityVersion
			}
			return sty.TableCell
		})
	for _, s := range summaries {
		t.Row(s.Name, "v"+s.Version, dash(s.Username), dash(s.AuthProto), dash(s.PrivProto))
	}
	return t.Render()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *app) identityAdd() error {
	if a.stdin == nil || !term.IsTerminal(int(a.stdin.Fd())) {
		return errors.New("identity add needs an interactive terminal")
	}
	id, err := tui.RunIdentityForm(a.stdin, a.stderr)
	if errors.Is(err, tui.ErrCancelled) {
		fmt.Fprintln(a.stderr, "Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	store, err := a.openStore(true)
	if err != nil {
		return err
	}
	if err := store.Add(*id); err != nil {
		return err
	}
	a.log.WithField("identity", id.Name).Debug("Stored identity")
	fmt.Fprintf(a.stdout, "Identity %q added.\n", id.Name)
	return nil
}

func (a *app) identityRemove(name string) error {
	store, err := a.openStore(true)
	if err != nil {
		return err
	}
	if err := store.Remove(name); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Identity %q removed.\n", name)
	return nil
}

func (a *app) identityTest(cmd *cobra.Command, name, host string, port int, timeout time.Duration) error {
	store, err := a.openStore(true)
	if err != nil {
		return err
	}
	id, err := store.Get(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stderr, "Testing SNMP connectivity to %s using identity %q...\n", host, name)
	sess, err := engine.Open(cmd.Context(), host, port, id, timeout)
	if err != nil {
		return err
	}
	defer sess.Close()

	descr, err := sess.SysDescr()
	if err != nil {
		return fmt.Errorf("SNMP GET failed: %w", err)
	}
	fmt.Fprintf(a.stdout, "sysDescr: %s\n", descr)
	fmt.Fprintln(a.stdout, "Connection test successful.")
	return nil
}
