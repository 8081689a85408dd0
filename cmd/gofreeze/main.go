// Command gofreeze holds feature values in a running process, driven by an
// HTTP control surface.
package main

import (
	"fmt"
	"os"

	"gofreeze/config"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gofreeze",
	Short: "Resolve pointer chains in a target process and hold values there.",
	Long: `gofreeze resolves each feature's address through a list of candidate ` +
		`pointer chains starting at a module base, then rewrites the feature's ` +
		`value on a fixed interval until stopped. Features are driven over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"YAML configuration file (built-in defaults when empty)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
