package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/tzpass-recovery/pkg/tzrecovery"
)

var slotNames = []struct {
	label rune
	name  string
}{
	{tzrecovery.SlotLiteral, "prefix salt"},
	{tzrecovery.SlotVariable, "variable salt"},
	{tzrecovery.SlotComp1, "component 1"},
	{tzrecovery.SlotComp2, "component 2"},
	{tzrecovery.SlotComp3, "component 3"},
	{tzrecovery.SlotComp4, "component 4"},
	{tzrecovery.SlotExtra, "extra salt"},
}

type spaceCommand struct {
	root         *rootFlags
	withVariable bool
	count        bool
	cmd          *cobra.Command
}

func newSpaceCommand(rf *rootFlags) *cobra.Command {
	cc := &spaceCommand{root: rf}
	cc.cmd = &cobra.Command{
		Use:   "space",
		Short: "Print the size of the candidate space without deriving anything",
		Args:  cobra.NoArgs,
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().BoolVar(&cc.withVariable, "with-variable", false, "Let the variable salt move among the components")
	cc.cmd.Flags().BoolVar(&cc.count, "count", false, "Also enumerate the plan to count candidates within the length bounds")
	return cc.cmd
}

func (c *spaceCommand) Execute(cmd *cobra.Command, _ []string) error {
	cfg, err := c.root.load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("with-variable") {
		cfg.Generation.WithVariable = c.withVariable
	}
	plan, err := cfg.Plan()
	if err != nil {
		return err
	}

	colorTitle.Println("Candidate space")
	for _, s := range slotNames {
		if list := plan.SlotList(s.label); len(list) > 0 {
			fmt.Printf("  %c %-14s %d entries\n", s.label, s.name, len(list))
		}
	}
	templates := plan.Templates()
	fmt.Printf("  %d templates (%d permuted slots): %s\n", len(templates), plan.ActiveSlots(), strings.Join(templates, " "))
	minLen, maxLen := plan.LengthBounds()
	fmt.Printf("  Length window: %d..%d characters\n", minLen, maxLen)
	colorInfo.Printf("  Tuples: %s\n", plan.Space().String())

	if c.count {
		res, err := plan.Candidates()
		if err != nil {
			return err
		}
		colorInfo.Printf("  Within length window: %d of %d\n", res.Kept, res.Considered)
	}
	return nil
}
