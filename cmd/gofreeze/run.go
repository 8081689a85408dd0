package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gofreeze/control"
	"gofreeze/feature"
	"gofreeze/metrics"
	"gofreeze/session"
	"gofreeze/ticker"
	"gofreeze/tracing"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const defaultListen = "127.0.0.1:7878"

var startFeatures []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attach to the target and serve the control API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&startFeatures, "start", nil,
		"features to start once attached")
	rootCmd.AddCommand(runCmd)
}

func run(parent context.Context) error {
	log := logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "gofreeze"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	defs, err := cfg.Definitions()
	if err != nil {
		return err
	}

	proc, err := openProcess(cfg.Target)
	if err != nil {
		return fmt.Errorf("open target: %w", err)
	}
	defer proc.Close()

	base, err := proc.ModuleBaseAddress(cfg.Target.Module)
	if err != nil {
		return fmt.Errorf("module %s: %w", cfg.Target.Module, err)
	}
	log.Infoln("Attached to pid", proc.GetPID(), "module", cfg.Target.Module, "at", base.ToString())

	m := metrics.NewReporter()
	reporters := []feature.Reporter{tracing.NewLogReporter(), m}

	if cfg.TraceDB != "" {
		trace, err := tracing.NewSQLiteWriter(cfg.TraceDB)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := trace.Close(); cerr != nil {
				log.Warn("Close trace: ", cerr)
			}
		}()
		reporters = append(reporters, trace)
	}

	sched := ticker.NewRealtime()

	sess, err := session.New(session.Context{Base: base, Memory: proc}, sched, tracing.Multi(reporters...), defs...)
	if err != nil {
		return err
	}

	stopAll := func() {
		if err := sess.StopAll(); err != nil {
			log.Warn("Stop all: ", err)
		}
	}
	defer stopAll()
	// exits that skip the deferred shutdown still restore the target
	atexit.Register(stopAll)

	for _, name := range startFeatures {
		f, err := sess.Feature(name)
		if err != nil {
			return err
		}
		if err := f.Start(); err != nil {
			log.Warn(err)
		}
	}

	listen := cfg.Listen
	if listen == "" {
		listen = defaultListen
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sched.Run(ctx)
	}()

	err = control.NewServer(sess, m.Handler()).ListenAndServe(ctx, listen)
	stop()
	<-done

	log.Infoln("Shutting down")
	return err
}
