// Command pitchperfect detects the notes played into a microphone and can
// play a recorded melody back as pure tones.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/pitch-perfect/algorithms/tonal"
	"github.com/RyanBlaney/pitch-perfect/audio"
	"github.com/RyanBlaney/pitch-perfect/audio/file"
	otoaudio "github.com/RyanBlaney/pitch-perfect/audio/oto"
	"github.com/RyanBlaney/pitch-perfect/audio/portaudio"
	"github.com/RyanBlaney/pitch-perfect/detect"
	"github.com/RyanBlaney/pitch-perfect/display"
	"github.com/RyanBlaney/pitch-perfect/internal/config"
	"github.com/RyanBlaney/pitch-perfect/internal/observe"
	"github.com/RyanBlaney/pitch-perfect/logging"
	"github.com/RyanBlaney/pitch-perfect/transfer"
)

const usage = `usage: pitchperfect <command> [flags]

commands:
  detect     show the note being played
  transfer   record a melody and play it back when you pause
  devices    list audio devices
`

func main() {
	os.Exit(run(os.Args[1:]))
}

// options are the flags shared by the subcommands
type options struct {
	configPath string
	method     string
	input      string
	file       string
	plain      bool
}

func parseFlags(name string, args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to the YAML configuration file (default: $PITCH_CONFIG)")
	fs.StringVar(&opts.method, "method", "", "pitch estimator: yin or autocorrelation")
	fs.StringVar(&opts.input, "input", "", "input device name (default: system default)")
	fs.StringVar(&opts.file, "file", "", "decode this audio file with ffmpeg instead of capturing")
	fs.BoolVar(&opts.plain, "plain", false, "print status lines instead of drawing the full-screen display")
	err := fs.Parse(args)
	return opts, err
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	command := args[0]
	switch command {
	case "detect", "transfer":
	case "devices":
		return listDevices()
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "pitchperfect: unknown command %q\n\n%s", command, usage)
		return 2
	}

	opts, err := parseFlags(command, args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// ── Configuration ─────────────────────────────────────────────────────────
	cfg, err := config.Loader{Path: opts.configPath}.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pitchperfect: %v\n", err)
		return 1
	}
	if opts.method != "" {
		cfg.Detect.Method = opts.method
	}
	if opts.input != "" {
		cfg.Audio.InputDevice = opts.input
	}
	if opts.file != "" {
		cfg.Audio.File = opts.file
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pitchperfect: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger, closeLog, err := newLogger(cfg.Log, !opts.plain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pitchperfect: %v\n", err)
		return 1
	}
	defer closeLog()
	logging.SetGlobalLogger(logger)

	// The logger may be discarded while the TUI draws, so fatal errors also
	// go to stderr
	fatal := func(err error, msg string) int {
		logger.Error(err, msg)
		fmt.Fprintf(os.Stderr, "pitchperfect: %s: %v
", msg, err)
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	// ── Metrics (optional) ────────────────────────────────────────────────────
	if cfg.Metrics.Addr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
		if err != nil {
			return fatal(err, "failed to initialise metrics")
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("metrics shutdown failed", logging.Fields{"error": err.Error()})
			}
		}()
		g.Go(func() error {
			logger.Info("serving metrics", logging.Fields{"addr": cfg.Metrics.Addr})
			return observe.Serve(ctx, cfg.Metrics.Addr)
		})
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	method, err := tonal.ParseMethod(cfg.Detect.Method)
	if err != nil {
		return fatal(err, "invalid estimator")
	}
	estimator, err := tonal.NewEstimator(method, tonal.Params{
		YinThreshold:      cfg.Detect.YinThreshold,
		AutocorrThreshold: cfg.Detect.AutocorrThreshold,
		Interpolate:       cfg.Detect.Interpolate,
	})
	if err != nil {
		return fatal(err, "invalid estimator")
	}

	device := newDevice(cfg, logger)
	metrics := observe.DefaultMetrics()

	title := "Pitch Detector"
	if command == "transfer" {
		title = "Pitch Transfer"
	}
	var (
		disp display.Display
		tui  *display.TUI
	)
	if opts.plain {
		disp = display.NewLine(os.Stdout)
	} else {
		tui = display.NewTUI(title, tea.WithAltScreen(), tea.WithContext(ctx))
		disp = tui
	}
	if cfg.Log.File != "" {
		// Keep a record of every status change beside the screen
		disp = display.Multi{disp, display.NewLog(logger)}
	}

	var pipeline interface{ Run(context.Context) error }
	switch command {
	case "detect":
		pipeline, err = detect.New(detect.Config{
			SampleRate: cfg.Audio.SampleRate,
			FrameSize:  cfg.DetectFrameSize(),
			Threshold:  cfg.Detect.Threshold,
			DCCutoff:   cfg.Detect.DCCutoff,
		}, device, estimator, disp, detect.WithMetrics(metrics), detect.WithLogger(logger))
	case "transfer":
		pipeline, err = transfer.New(transfer.Config{
			SampleRate:        cfg.Audio.SampleRate,
			FrameSize:         cfg.TransferFrameSize(),
			AmbienceThreshold: cfg.Transfer.AmbienceThreshold,
			EchoGuard:         cfg.Transfer.EchoGuard,
			Amplitude:         cfg.Transfer.Amplitude,
			Fade:              cfg.Transfer.Fade,
		}, device, estimator, disp,
			transfer.WithGate(newGate(cfg.Transfer)),
			transfer.WithMetrics(metrics),
			transfer.WithLogger(logger),
		)
	}
	if err != nil {
		return fatal(err, "failed to build pipeline")
	}

	logger.Info("pitchperfect starting", logging.Fields{
		"command":     command,
		"method":      method.String(),
		"sample_rate": cfg.Audio.SampleRate,
		"playback":    cfg.Audio.Playback,
	})

	g.Go(func() error {
		defer cancel()
		return pipeline.Run(ctx)
	})
	if tui != nil {
		g.Go(func() error {
			defer cancel()
			if err := tui.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("display: %w", err)
			}
			return nil
		})
	}

	// Every goroutine, the TUI included, has returned here, so stderr is
	// the terminal again
	err = g.Wait()
	if cfg.Audio.File != "" && file.IsEOF(err) {
		logger.Info("end of file", logging.Fields{"path": cfg.Audio.File})
		err = nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err, "pitchperfect stopped")
	}
	return exitCode(os.Stderr, err)
}

// exitCode reports err on w and maps it to the process exit status.
// Cancellation is a clean exit.
func exitCode(w io.Writer, err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	if errors.Is(err, audio.ErrDeviceNotFound) {
		fmt.Fprintf(w, "pitchperfect: %v (run 'pitchperfect devices' to list devices)\n", err)
	} else {
		fmt.Fprintf(w, "pitchperfect: %v\n", err)
	}
	return 1
}

// newLogger writes to the configured file, or to stderr unless the TUI owns
// the terminal
func newLogger(cfg config.LogConfig, tui bool) (logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case tui:
		w = io.Discard
	}

	return logging.NewLogger(w, level, cfg.Format == "json"), closeFn, nil
}

// newDevice picks the input (microphone or file) and the playback backend
func newDevice(cfg *config.Config, logger logging.Logger) audio.Device {
	pa := portaudio.New(audio.Config{
		SampleRate:      cfg.Audio.SampleRate,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		InputDevice:     cfg.Audio.InputDevice,
		OutputDevice:    cfg.Audio.OutputDevice,
	}, logger)
	if cfg.Audio.File == "" && cfg.Audio.Playback != config.PlaybackOto {
		return pa
	}

	var input, output audio.Device = pa, pa
	if cfg.Audio.File != "" {
		input = file.New(file.Config{
			Path:       cfg.Audio.File,
			SampleRate: cfg.Audio.SampleRate,
			FFmpegPath: cfg.Audio.FFmpegPath,
			Timeout:    cfg.Audio.FFmpegTimeout,
			Realtime:   cfg.Audio.Realtime,
		}, logger)
	}
	if cfg.Audio.Playback == config.PlaybackOto {
		output = otoaudio.New(cfg.Audio.SampleRate)
	}
	return audio.Pair{Input: input, Output: output}
}

func newGate(cfg config.TransferConfig) transfer.IdleGate {
	if cfg.IdleGate == config.GateModulo {
		return transfer.ModuloGate{Period: cfg.ModuloPeriod, Window: cfg.Grace}
	}
	return transfer.DurationGate{Grace: cfg.Grace}
}

func listDevices() int {
	names, err := portaudio.Devices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pitchperfect: %v\n", err)
		return 1
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return 0
}
