// Command tzrecover searches for a forgotten Tezos fundraiser passphrase.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/tzpass-recovery/internal/config"
)

var (
	colorTitle = color.New(color.FgCyan, color.Bold)
	colorInfo  = color.New(color.FgBlue)
	colorWarn  = color.New(color.FgYellow)
	colorError = color.New(color.FgRed)
	colorFound = color.New(color.FgGreen, color.Bold)
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configFile string
	logFile    string

	email      string
	address    string
	mnemonic   string
	iterations int
	minLength  int
	maxLength  int
	comps      [4]string

	logOut *os.File
}

func newRootCommand() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:   "tzrecover",
		Short: "Recover a Tezos fundraiser wallet passphrase from remembered pieces",
		Long: `tzrecover rebuilds candidate passphrases from up to four remembered
components, salts and generated fragments, derives the fundraiser address
for each and compares it with the target address.

Settings are read from --config (YAML), then TEZOS_RECOVERY_* environment
variables, then command-line flags; later sources win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			rf.closeLog()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&rf.configFile, "config", "c", "", "YAML config file")
	pf.StringVar(&rf.logFile, "log-file", "", "Append library logs to this file instead of stderr")
	pf.StringVar(&rf.email, "email", "", "Registration email")
	pf.StringVar(&rf.address, "address", "", "Target tz1/tz2 address")
	pf.StringVar(&rf.mnemonic, "mnemonic", "", "Recovery mnemonic (space separated)")
	pf.IntVar(&rf.iterations, "iterations", 0, "PBKDF2 rounds (default 2048)")
	pf.IntVar(&rf.minLength, "min-length", 0, "Shortest candidate in characters (default 13)")
	pf.IntVar(&rf.maxLength, "max-length", 0, "Longest candidate in characters (default 64)")
	for i := range rf.comps {
		pf.StringVar(&rf.comps[i], fmt.Sprintf("comp%d", i+1), "", fmt.Sprintf("Remembered component %d", i+1))
	}

	root.AddCommand(
		newSearchCommand(rf),
		newDeriveCommand(rf),
		newSpaceCommand(rf),
	)
	return root
}

// load resolves the effective config: defaults < file < env < flags.
func (rf *rootFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Defaults()
	if rf.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(rf.configFile); err != nil {
			return cfg, err
		}
	}

	env, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return cfg, err
	}
	cfg = config.Merge(cfg, env)

	var over config.Config
	flags := cmd.Flags()
	if flags.Changed("email") {
		over.Email = rf.email
	}
	if flags.Changed("address") {
		over.Address = rf.address
	}
	if flags.Changed("mnemonic") {
		over.Mnemonic = rf.mnemonic
	}
	over.Iterations = rf.iterations
	over.PasswordConstraints.MinLength = rf.minLength
	over.PasswordConstraints.MaxLength = rf.maxLength
	over.Components = config.Components{
		Component1: rf.comps[0],
		Component2: rf.comps[1],
		Component3: rf.comps[2],
		Component4: rf.comps[3],
	}
	if flags.Changed("log-file") {
		over.Search.LogFile = rf.logFile
	}
	cfg = config.Merge(cfg, over)

	// min-length 0 is a legitimate override that Merge cannot express.
	if flags.Changed("min-length") {
		cfg.PasswordConstraints.MinLength = rf.minLength
	}
	return cfg, rf.openLog(cfg.Search.LogFile)
}

func (rf *rootFlags) openLog(path string) error {
	if path == "" || rf.logOut != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	rf.logOut = f
	log.SetOutput(f)
	return nil
}

func (rf *rootFlags) closeLog() {
	if rf.logOut != nil {
		log.SetOutput(os.Stderr)
		rf.logOut.Close()
		rf.logOut = nil
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		colorError.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
