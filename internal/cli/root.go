// Package cli implements the lplockd command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goLPLockd/internal/config"
	"github.com/LeJamon/goLPLockd/internal/di"
	"github.com/LeJamon/goLPLockd/internal/node"
)

const version = "0.1.0-dev"

// options holds the global flags.
type options struct {
	configFile string
	debug      bool
	owner      string
	jsonOut    bool
}

// app is the state shared by the commands of one invocation. The node and
// its stores are opened on first use and released by close.
type app struct {
	opts      options
	cfg       *config.Config
	container *di.Container
	provider  *di.Provider
}

// Execute runs the command line with the process arguments.
func Execute() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	return errors.Join(err, a.close())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "lplockd",
		Short: "lplockd - LP share lock ledger",
		Long: `lplockd locks liquidity provider shares of a constant-product pool in
escrow, lets their owner collect the trading fees the locked position earns,
and releases timed locks once they mature.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configFile, "conf", "", "configuration file path")
	flags.BoolVar(&a.opts.debug, "debug", false, "enable normally suppressed debug logging")
	flags.StringVar(&a.opts.owner, "owner", "", "owner public key (defaults to the configured owner)")
	flags.BoolVar(&a.opts.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newLockCmd(a),
		newPermanentLockCmd(a),
		newCollectFeesCmd(a),
		newUnlockCmd(a),
		newShowCmd(a),
		newPoolCmd(a),
		newTokenCmd(a),
		newHistoryCmd(a),
		newTxCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if a.opts.configFile != "" {
		cfg, err = config.LoadConfig(a.opts.configFile)
	} else {
		cfg, err = config.LoadDefaultConfig()
	}
	if err != nil {
		return nil, err
	}
	if a.opts.debug {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *app) services() (*di.Provider, error) {
	if a.provider != nil {
		return a.provider, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	container := di.New()
	provider := di.NewProvider(container, cfg)
	if err := provider.RegisterAll(); err != nil {
		return nil, err
	}
	a.container = container
	a.provider = provider
	return provider, nil
}

func (a *app) node() (*node.Node, error) {
	p, err := a.services()
	if err != nil {
		return nil, err
	}
	return p.Node()
}

// ownerKey resolves the account commands act for.
func (a *app) ownerKey() (solana.PublicKey, error) {
	if a.opts.owner != "" {
		return parseKey("owner", a.opts.owner)
	}
	cfg, err := a.config()
	if err != nil {
		return solana.PublicKey{}, err
	}
	owner, err := cfg.OwnerKey()
	if err != nil {
		return solana.PublicKey{}, err
	}
	if owner.IsZero() {
		return solana.PublicKey{}, errors.New("no owner: pass --owner or set owner in the configuration")
	}
	return owner, nil
}

func (a *app) close() error {
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	a.container = nil
	a.provider = nil
	return err
}
