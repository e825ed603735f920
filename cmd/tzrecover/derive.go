package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/tzpass-recovery/pkg/tzrecovery"
)

type deriveCommand struct {
	root       *rootFlags
	resultFile string
	cmd        *cobra.Command
}

func newDeriveCommand(rf *rootFlags) *cobra.Command {
	cc := &deriveCommand{root: rf}
	cc.cmd = &cobra.Command{
		Use:   "derive PASSWORD...",
		Short: "Test single passphrases against the target address",
		Long: `Derives the address of each given passphrase and reports its distance to
the target. A match is appended to the result file like a search hit.`,
		Example: `tzrecover derive --config recovery.yml 'Tezos2017!'`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    cc.Execute,
	}
	cc.cmd.Flags().StringVar(&cc.resultFile, "result-file", "", "File matches are appended to (default password.lst)")
	return cc.cmd
}

func (c *deriveCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := c.root.load(cmd)
	if err != nil {
		return err
	}
	if c.resultFile != "" {
		cfg.Search.ResultFile = c.resultFile
	}

	client := tzrecovery.NewClient().WithSink(tzrecovery.NewFileSink(cfg.Search.ResultFile))
	session, err := client.NewSession(cfg.Params())
	if err != nil {
		return err
	}
	for _, password := range args {
		attempt, err := session.Check(password)
		if err != nil {
			return err
		}
		switch {
		case attempt.Matched:
			colorFound.Printf("✅ %q -> %s (match, recorded in %s)\n", password, attempt.DerivedAddress, cfg.Search.ResultFile)
		case math.IsInf(attempt.Distance, 1):
			colorError.Printf("%q could not be derived\n", password)
		default:
			fmt.Printf("%q -> %s (distance %.4f)\n", password, attempt.DerivedAddress, attempt.Distance)
		}
	}
	return nil
}
