package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/pitch-perfect/algorithms/tonal"
	"github.com/RyanBlaney/pitch-perfect/logging"
)

// Load reads the YAML configuration file at path on top of [Default] and
// validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Fields absent from the document keep their defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", cfg.Audio.SampleRate))
	}
	if cfg.Audio.File != "" && cfg.Audio.FFmpegPath == "" {
		errs = append(errs, errors.New("audio.ffmpeg_path is required to decode audio.file"))
	}
	if cfg.Audio.FFmpegTimeout < 0 {
		errs = append(errs, fmt.Errorf("audio.ffmpeg_timeout must not be negative, got %v", cfg.Audio.FFmpegTimeout))
	}
	if cfg.Audio.FramesPerBuffer < 0 {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer must not be negative, got %d", cfg.Audio.FramesPerBuffer))
	}
	switch cfg.Audio.Playback {
	case PlaybackPortAudio, PlaybackOto:
	default:
		errs = append(errs, fmt.Errorf("audio.playback %q is invalid; valid values: %s, %s", cfg.Audio.Playback, PlaybackPortAudio, PlaybackOto))
	}

	if _, err := tonal.ParseMethod(cfg.Detect.Method); err != nil {
		errs = append(errs, fmt.Errorf("detect.method: %w", err))
	}
	if cfg.Detect.FrameSize < 0 {
		errs = append(errs, fmt.Errorf("detect.frame_size must not be negative, got %d", cfg.Detect.FrameSize))
	}
	if cfg.Detect.DCCutoff < 0 || cfg.Detect.DCCutoff >= float64(cfg.Audio.SampleRate)/2 {
		errs = append(errs, fmt.Errorf("detect.dc_cutoff must be in [0, sample_rate/2), got %v", cfg.Detect.DCCutoff))
	}
	if cfg.Detect.YinThreshold <= 0 || cfg.Detect.YinThreshold >= 1 {
		errs = append(errs, fmt.Errorf("detect.yin_threshold must be in (0, 1), got %v", cfg.Detect.YinThreshold))
	}
	if cfg.Detect.AutocorrThreshold <= 0 || cfg.Detect.AutocorrThreshold >= 1 {
		errs = append(errs, fmt.Errorf("detect.autocorr_threshold must be in (0, 1), got %v", cfg.Detect.AutocorrThreshold))
	}

	if cfg.Transfer.FrameSize < 0 {
		errs = append(errs, fmt.Errorf("transfer.frame_size must not be negative, got %d", cfg.Transfer.FrameSize))
	}
	switch cfg.Transfer.IdleGate {
	case GateDuration, GateModulo:
	default:
		errs = append(errs, fmt.Errorf("transfer.idle_gate %q is invalid; valid values: %s, %s", cfg.Transfer.IdleGate, GateDuration, GateModulo))
	}
	if cfg.Transfer.Grace < 0 || cfg.Transfer.EchoGuard < 0 {
		errs = append(errs, errors.New("transfer.grace and transfer.echo_guard must not be negative"))
	}
	if cfg.Transfer.IdleGate == GateModulo && cfg.Transfer.ModuloPeriod <= cfg.Transfer.Grace {
		errs = append(errs, fmt.Errorf("transfer.modulo_period %v must exceed transfer.grace %v", cfg.Transfer.ModuloPeriod, cfg.Transfer.Grace))
	}
	if cfg.Transfer.Amplitude <= 0 || cfg.Transfer.Amplitude > 1 {
		errs = append(errs, fmt.Errorf("transfer.amplitude must be in (0, 1], got %v", cfg.Transfer.Amplitude))
	}
	if cfg.Transfer.Fade < 0 || cfg.Transfer.Fade > 1 {
		errs = append(errs, fmt.Errorf("transfer.fade must be in [0, 1], got %v", cfg.Transfer.Fade))
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: text, json", cfg.Log.Format))
	}

	return errors.Join(errs...)
}

// Loader resolves the configuration from an optional file plus PITCH_*
// environment variables. Tests can override Lookup to inject deterministic
// maps.
type Loader struct {
	// Path is the YAML file to read. Empty falls back to PITCH_CONFIG and
	// then to the defaults.
	Path   string
	Lookup func(string) (string, bool)
}

// Load reads the file, applies environment overrides and validates
func (l Loader) Load() (*Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}

	path := l.Path
	if path == "" {
		overrideString(l.Lookup, "PITCH_CONFIG", &path)
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrideString(l.Lookup, "PITCH_INPUT_DEVICE", &cfg.Audio.InputDevice)
	overrideString(l.Lookup, "PITCH_OUTPUT_DEVICE", &cfg.Audio.OutputDevice)
	overrideString(l.Lookup, "PITCH_PLAYBACK", &cfg.Audio.Playback)
	overrideString(l.Lookup, "PITCH_FILE", &cfg.Audio.File)
	overrideString(l.Lookup, "PITCH_FFMPEG_PATH", &cfg.Audio.FFmpegPath)
	overrideString(l.Lookup, "PITCH_METHOD", &cfg.Detect.Method)
	overrideString(l.Lookup, "PITCH_IDLE_GATE", &cfg.Transfer.IdleGate)
	overrideString(l.Lookup, "PITCH_LOG_LEVEL", &cfg.Log.Level)
	overrideString(l.Lookup, "PITCH_LOG_FORMAT", &cfg.Log.Format)
	overrideString(l.Lookup, "PITCH_LOG_FILE", &cfg.Log.File)
	overrideString(l.Lookup, "PITCH_METRICS_ADDR", &cfg.Metrics.Addr)

	if err := errors.Join(
		overrideInt(l.Lookup, "PITCH_SAMPLE_RATE", &cfg.Audio.SampleRate),
		overrideFloat(l.Lookup, "PITCH_DETECT_THRESHOLD", &cfg.Detect.Threshold),
		overrideFloat(l.Lookup, "PITCH_AMBIENCE_THRESHOLD", &cfg.Transfer.AmbienceThreshold),
		overrideDuration(l.Lookup, "PITCH_GRACE", &cfg.Transfer.Grace),
		overrideDuration(l.Lookup, "PITCH_ECHO_GUARD", &cfg.Transfer.EchoGuard),
		overrideDuration(l.Lookup, "PITCH_FFMPEG_TIMEOUT", &cfg.Audio.FFmpegTimeout),
	); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideFloat(lookup func(string) (string, bool), key string, target *float64) error {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("config: invalid value for %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: invalid value for %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}

func overrideDuration(lookup func(string) (string, bool), key string, target *time.Duration) error {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: invalid value for %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}
