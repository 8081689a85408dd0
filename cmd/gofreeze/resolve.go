package main

import (
	"fmt"
	"io"
	"os"

	"gofreeze/chain"
	"gofreeze/feature"
	"gofreeze/hexdump"
	"gofreeze/process"
	"gofreeze/process_blob"

	"github.com/spf13/cobra"
)

var (
	resolveFrom  string
	resolveBytes int
	resolveColor bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [feature...]",
	Short: "Walk every candidate chain and show where it lands",
	Long: `Walk every candidate chain of the selected features (all when none are ` +
		`named) against the live target, or against a saved dump with --from, ` +
		`printing each dereference and whether the final address validates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		defs, err := cfg.Definitions()
		if err != nil {
			return err
		}
		defs, err = selectDefinitions(defs, args)
		if err != nil {
			return err
		}

		var target process.Process
		if resolveFrom != "" {
			dump, err := process_blob.LoadDump(resolveFrom)
			if err != nil {
				return err
			}
			target = dump
		} else {
			target, err = openProcess(cfg.Target)
			if err != nil {
				return fmt.Errorf("open target: %w", err)
			}
		}
		defer target.Close()

		base, err := target.ModuleBaseAddress(cfg.Target.Module)
		if err != nil {
			return fmt.Errorf("module %s: %w", cfg.Target.Module, err)
		}

		fmt.Printf("module %s at %s\n", cfg.Target.Module, base)
		for _, def := range defs {
			resolveFeature(os.Stdout, target, base, def)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFrom, "from", "", "resolve against a dump directory instead of the live target")
	resolveCmd.Flags().IntVar(&resolveBytes, "bytes", 0, "hexdump this many bytes around each resolved address")
	resolveCmd.Flags().BoolVar(&resolveColor, "color", false, "color the hexdump")
	rootCmd.AddCommand(resolveCmd)
}

func selectDefinitions(defs []feature.Definition, names []string) ([]feature.Definition, error) {
	if len(names) == 0 {
		return defs, nil
	}

	byName := make(map[string]feature.Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	out := make([]feature.Definition, 0, len(names))
	for _, n := range names {
		d, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}

func resolveFeature(w io.Writer, target process.Process, base process.ProcessMemoryAddress, def feature.Definition) {
	fmt.Fprintf(w, "\n%s\n", def.Name)

	for i, c := range def.Candidates {
		fmt.Fprintf(w, "  candidate %d %s\n", i, c)

		addr, hops, err := chain.Trace(target, base, c)
		for _, h := range hops {
			fmt.Fprintf(w, "    [%d] *%s = %s\n", h.Step, h.At, h.Value)
		}
		if err != nil {
			fmt.Fprintf(w, "    broken: %v\n", err)
			continue
		}

		if err := chain.Validate(target, addr); err != nil {
			fmt.Fprintf(w, "    -> %s invalid: %v\n", addr, err)
			continue
		}
		fmt.Fprintf(w, "    -> %s valid\n", addr)

		if resolveBytes > 0 {
			dumpAround(w, target, addr)
		}
	}
}

// dumpAround prints resolveBytes bytes starting on the 16-byte line that
// holds addr, with the value at addr highlighted.
func dumpAround(w io.Writer, target process.Process, addr process.ProcessMemoryAddress) {
	start := process.ProcessMemoryAddress(uint64(addr) &^ 0xF)

	data, err := target.ReadMemory(start, process.ProcessMemorySize(resolveBytes))
	if err != nil {
		fmt.Fprintf(w, "    hexdump: %v\n", err)
		return
	}

	mm, _ := target.GetMemoryMap()
	hexdump.Write(w, data, hexdump.Options{
		Base:      uint64(start),
		Mark:      uint64(addr),
		MarkSize:  4,
		MemoryMap: mm,
		Color:     resolveColor,
	})
}
