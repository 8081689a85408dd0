package main

import (
	"errors"

	"gofreeze/process"

	"github.com/spf13/cobra"
)

var (
	dumpPID    int
	dumpOutput string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Save the readable memory of a process for offline resolve",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if dumpPID <= 0 {
			return errors.New("--pid is required")
		}
		if dumpOutput == "" {
			return errors.New("--output is required")
		}
		return saveDump(cmd.Context(), process.ProcessID(dumpPID), dumpOutput)
	},
}

func init() {
	dumpCmd.Flags().IntVar(&dumpPID, "pid", 0, "process ID to dump")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "output directory")
	rootCmd.AddCommand(dumpCmd)
}
