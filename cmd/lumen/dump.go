package main

import (
	"github.com/spf13/cobra"

	"lumen/internal/ir"
	"lumen/internal/irfile"
	"lumen/internal/passes"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <tree.lir>",
	Short: "Print a tree file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, root, err := irfile.Codec{Facts: passes.FactTypes()}.ReadFile(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		opts := ir.PrintOptions{}
		opts.IDs, _ = flags.GetBool("ids")
		opts.Locations, _ = flags.GetBool("locations")
		opts.Metadata, _ = flags.GetBool("metadata")
		opts.Diagnostics, _ = flags.GetBool("diagnostics")
		if check, _ := flags.GetBool("check"); check {
			if err := ir.CheckInvariants(root); err != nil {
				return err
			}
		}
		return ir.Print(cmd.OutOrStdout(), u, root, opts)
	},
}

func init() {
	dumpCmd.Flags().Bool("ids", false, "show node identities")
	dumpCmd.Flags().Bool("locations", false, "show source locations")
	dumpCmd.Flags().Bool("metadata", true, "show metadata facts")
	dumpCmd.Flags().Bool("diagnostics", true, "show attached diagnostics")
	dumpCmd.Flags().Bool("check", false, "validate tree invariants first")
}
