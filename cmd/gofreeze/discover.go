package main

import (
	"errors"
	"fmt"
	"strconv"

	"gofreeze/feature"
	"gofreeze/process"
	"gofreeze/process_blob"
	"gofreeze/search"

	"github.com/spf13/cobra"
)

var (
	discoverFrom      string
	discoverType      string
	discoverDepth     int
	discoverSize      uint
	discoverTolerance float64
	discoverLimit     int
)

var discoverCmd = &cobra.Command{
	Use:   "discover <value>",
	Short: "Search for offset chains from the module base to a value",
	Long: `Search the structures reachable from the module base for fields ` +
		`holding value and print the offset chains that reach them. The ` +
		`chains can be pasted into a feature's offsets.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		vt, err := feature.ParseValueType(discoverType)
		if err != nil {
			return err
		}

		opts := []search.Option{
			search.WithMaxDepth(discoverDepth),
			search.WithMaxStructSize(discoverSize),
			search.WithMaxResults(discoverLimit),
		}
		switch vt {
		case feature.Int32:
			v, err := strconv.ParseInt(args[0], 0, 32)
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}
			opts = append(opts, search.WithInt32(int32(v)))
		case feature.Float32:
			v, err := strconv.ParseFloat(args[0], 32)
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}
			opts = append(opts, search.WithFloat32(v, discoverTolerance))
		default:
			return errors.New("unsupported value type")
		}

		var target process.Process
		if discoverFrom != "" {
			dump, err := process_blob.LoadDump(discoverFrom)
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

		chains, err := search.Chains(target, base, opts...)
		if err != nil {
			return err
		}

		for _, c := range chains {
			fmt.Println(c)
		}
		fmt.Printf("%d chains from %s at %s\n", len(chains), cfg.Target.Module, base)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverFrom, "from", "", "search a dump directory instead of the live target")
	discoverCmd.Flags().StringVar(&discoverType, "type", "int32", "value type: int32 or float32")
	discoverCmd.Flags().IntVar(&discoverDepth, "depth", 3, "maximum dereferences per chain")
	discoverCmd.Flags().UintVar(&discoverSize, "size", 0x400, "bytes scanned per structure")
	discoverCmd.Flags().Float64Var(&discoverTolerance, "tolerance", 1e-6, "float32 match tolerance")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 100, "stop after this many chains (0 for no limit)")
	rootCmd.AddCommand(discoverCmd)
}
