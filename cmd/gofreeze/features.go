package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the configured features",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		defs, err := cfg.Definitions()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTYPE\tINTERVAL\tENABLED\tDISABLED\tPERSIST\tCANDIDATES")
		for _, d := range defs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\t%t\t%d\n",
				d.Name, d.Type, d.Interval, d.Enabled, d.Disabled, d.PersistAddress, len(d.Candidates))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}
