package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"gofreeze/tracing"

	"github.com/spf13/cobra"
)

var traceFeature string

var traceCmd = &cobra.Command{
	Use:   "trace [db]",
	Short: "Print events recorded in a trace database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.TraceDB
		}
		if path == "" {
			return errors.New("no trace database: pass one or set trace_db")
		}

		records, err := tracing.ReadRecords(path, traceFeature)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tSESSION\tFEATURE\tEVENT\tKIND\tADDRESS\tDETAIL")
		for _, r := range records {
			detail := r.Error
			switch {
			case detail != "":
			case r.Type == "value_changed":
				detail = fmt.Sprintf("value=%g", r.Value)
			case r.Pairs > 0:
				detail = fmt.Sprintf("pairs=%d", r.Pairs)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t0x%X\t%s\n",
				r.Time.Format("15:04:05.000"), r.Session, r.Feature, r.Type, r.Kind, r.Address, detail)
		}
		return tw.Flush()
	},
}

func init() {
	traceCmd.Flags().StringVar(&traceFeature, "feature", "", "only show this feature")
	rootCmd.AddCommand(traceCmd)
}
