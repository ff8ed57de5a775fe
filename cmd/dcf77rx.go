package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"dcf77rx/pkg/app"
	"dcf77rx/pkg/app/config"
	"dcf77rx/pkg/recording"
	"dcf77rx/pkg/sampler"
	dcfsignal "dcf77rx/pkg/signal"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "DCF77 time signal receiver",
		Version: app.VERSION,
		Description: "Sample the output of a DCF77 receiver module, decode the minute frames" +
			"\n and publish the time corrections to mqtt, the web services and a serial console." +
			"\n Recordings of the raw samples can be replayed and broadcasts can be simulated offline.",
		UsageText: "dcf77rx [--config <file>] [--log standard|debug|trace] [command]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the receiver and use the configuration file dcf77rx.yaml" +
			"\n\t\tdcf77rx --config /opt/womat/dcf77rx.yaml" +
			"\n\tdecode a recording" +
			"\n\t\tdcf77rx replay --file line.rec.zst",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Value: "standard", Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
		},
		Action: func(ctx *cli.Context) error {
			return run(cfg, "")
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "receive the time signal (default)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "record", Aliases: []string{"r"}, Usage: "record the raw samples to `FILE` (.zst compresses)"},
				},
				Action: func(ctx *cli.Context) error {
					return run(cfg, ctx.String("record"))
				},
			},
			{
				Name:  "replay",
				Usage: "decode a recording at full speed",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "read samples from `FILE`"},
				},
				Action: func(ctx *cli.Context) error {
					return replay(cfg, ctx.String("file"))
				},
			},
			{
				Name:  "simulate",
				Usage: "decode a synthetic broadcast",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Usage: "broadcast `TIME` (RFC3339), default now"},
					&cli.IntFlag{Name: "minutes", Aliases: []string{"m"}, Value: 3, Usage: "length of the broadcast in `MINUTES`"},
					&cli.Float64Flag{Name: "noise", Aliases: []string{"n"}, Usage: "`PROBABILITY` of an inverted sample"},
					&cli.Int64Flag{Name: "seed", Value: 1, Usage: "noise `SEED`"},
				},
				Action: func(ctx *cli.Context) error {
					return simulate(cfg, ctx.String("start"), ctx.Int("minutes"), ctx.Float64("noise"), ctx.Int64("seed"))
				},
			},
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
}

// run receives the time signal until the process is interrupted.
func run(cfg *config.Config, record string) error {
	if err := cfg.LoadConfig(); err != nil {
		return err
	}
	if record != "" {
		cfg.Record.File = record
	}

	debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
	defer func() {
		debug.InfoLog.Printf("closing log file %s", cfg.Log.FileString)
		_ = cfg.Log.File.Close()
	}()

	a, err := app.New(cfg)
	defer func() {
		debug.InfoLog.Printf("closing app %s", app.Version())
		_ = a.Close()
	}()

	if err != nil {
		return err
	}

	debug.InfoLog.Printf("starting app %s", app.Version())
	if err = a.Run(); err != nil {
		return err
	}

	// capture exit signals to ensure resources are released on exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// wait for am os.Interrupt signal (CTRL C)
	select {
	case sig := <-quit:
		debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
	case <-a.Shutdown():
		debug.InfoLog.Print("application shutdown")
	}

	return nil
}

// loadOffline reads the config file if there is one, the offline commands run with the defaults otherwise.
func loadOffline(cfg *config.Config) error {
	err := cfg.LoadConfig()
	if errors.Is(err, fs.ErrNotExist) {
		err = cfg.Apply()
	}
	if err != nil {
		return err
	}

	debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
	return nil
}

func replay(cfg *config.Config, file string) error {
	if err := loadOffline(cfg); err != nil {
		return err
	}

	r, err := recording.Open(file)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	rc := cfg.Decoder.Receiver
	if r.Rate() != rc.SamplingRate {
		debug.InfoLog.Printf("recording sampled at %d Hz, configured %d Hz", r.Rate(), rc.SamplingRate)
		if rc, err = cfg.Decoder.ReceiverConfig(r.Rate()); err != nil {
			return err
		}
	}

	snap, err := app.Offline(rc, r, func(c app.Correction) {
		fmt.Printf("%10.3fs  %s  %s  %s\n", float64(c.Tick+1)/float64(rc.SamplingRate), c.Time, c.Date, c.Frame)
	})
	fmt.Printf("%d frames decoded, %d rejected, state %s\n", snap.Decoded, snap.Rejected, snap.State)
	return err
}

func simulate(cfg *config.Config, start string, minutes int, noise float64, seed int64) error {
	if err := loadOffline(cfg); err != nil {
		return err
	}

	t := time.Now()
	if start != "" {
		var err error
		if t, err = time.Parse(time.RFC3339, start); err != nil {
			return fmt.Errorf("start %q: %w", start, err)
		}
	}

	rc := cfg.Decoder.Receiver
	g := dcfsignal.New(rc.SamplingRate, t, seed)
	g.Noise = noise
	src := &sampler.Generated{Sample: g.Sample, N: int64(minutes) * 60 * int64(rc.SamplingRate)}

	snap, err := app.Offline(rc, src, func(c app.Correction) {
		sent := g.Time(c.Tick + 1)
		status := "ok"
		if dcfsignal.Time(sent) != c.Decoded() {
			status = "MISMATCH"
		}
		fmt.Printf("%s  %s  %s  %s\n", sent.Format(time.RFC3339), c.Time, c.Date, status)
	})
	fmt.Printf("%d frames decoded, %d rejected, state %s\n", snap.Decoded, snap.Rejected, snap.State)
	return err
}
