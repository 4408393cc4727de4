// Package config defines the YAML configuration for the pitchperfect
// command and its environment overrides.
package config

import "time"

const (
	DefaultSampleRate        = 44100
	DefaultFramesPerBuffer   = 1024
	DefaultMethod            = "yin"
	DefaultDetectThreshold   = 60.0
	DefaultAmbienceThreshold = 70.0
	DefaultYinThreshold      = 0.1
	DefaultAutocorrThreshold = 0.7
	DefaultDCCutoff          = 10.0
	DefaultFFmpegPath        = "ffmpeg"
	DefaultIdleGate          = GateDuration
	DefaultGrace             = 900 * time.Millisecond
	DefaultModuloPeriod      = time.Minute
	DefaultEchoGuard         = time.Second
	DefaultAmplitude         = 0.08
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// Idle gate names accepted by TransferConfig.IdleGate
const (
	GateDuration = "duration"
	GateModulo   = "modulo"
)

// Playback backends accepted by AudioConfig.Playback
const (
	PlaybackPortAudio = "portaudio"
	PlaybackOto       = "oto"
)

// Config is the root configuration
type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Detect   DetectConfig   `yaml:"detect"`
	Transfer TransferConfig `yaml:"transfer"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AudioConfig selects devices and the stream format
type AudioConfig struct {
	SampleRate      int           `yaml:"sample_rate"`
	FramesPerBuffer int           `yaml:"frames_per_buffer"`
	InputDevice     string        `yaml:"input_device"`  // Empty selects the system default
	OutputDevice    string        `yaml:"output_device"` // Empty selects the system default
	Playback        string        `yaml:"playback"`      // portaudio or oto
	File            string        `yaml:"file"`          // Decode this file instead of capturing
	FFmpegPath      string        `yaml:"ffmpeg_path"`
	FFmpegTimeout   time.Duration `yaml:"ffmpeg_timeout"` // Zero means no limit
	Realtime        bool          `yaml:"realtime"`       // Pace file frames at the sample rate
}

// DetectConfig tunes live note detection
type DetectConfig struct {
	Method            string  `yaml:"method"`
	FrameSize         int     `yaml:"frame_size"` // Zero means a quarter second
	Threshold         float64 `yaml:"threshold"`  // dB SPL
	YinThreshold      float64 `yaml:"yin_threshold"`
	AutocorrThreshold float64 `yaml:"autocorr_threshold"`
	Interpolate       bool    `yaml:"interpolate"`
	DCCutoff          float64 `yaml:"dc_cutoff"` // Hz; zero disables the DC blocker
}

// TransferConfig tunes melody recording and playback
type TransferConfig struct {
	FrameSize         int           `yaml:"frame_size"`         // Zero means a sixteenth of a second
	AmbienceThreshold float64       `yaml:"ambience_threshold"` // dB SPL
	IdleGate          string        `yaml:"idle_gate"`
	Grace             time.Duration `yaml:"grace"`
	ModuloPeriod      time.Duration `yaml:"modulo_period"`
	EchoGuard         time.Duration `yaml:"echo_guard"`
	Amplitude         float64       `yaml:"amplitude"`
	Fade              float64       `yaml:"fade"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // Empty logs to stderr, or nowhere while the TUI is drawing
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Empty disables the endpoint
}

// Default returns a configuration with every field at its default
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			Playback:        PlaybackPortAudio,
			FFmpegPath:      DefaultFFmpegPath,
		},
		Detect: DetectConfig{
			Method:            DefaultMethod,
			Threshold:         DefaultDetectThreshold,
			YinThreshold:      DefaultYinThreshold,
			AutocorrThreshold: DefaultAutocorrThreshold,
			DCCutoff:          DefaultDCCutoff,
		},
		Transfer: TransferConfig{
			AmbienceThreshold: DefaultAmbienceThreshold,
			IdleGate:          DefaultIdleGate,
			Grace:             DefaultGrace,
			ModuloPeriod:      DefaultModuloPeriod,
			EchoGuard:         DefaultEchoGuard,
			Amplitude:         DefaultAmplitude,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DetectFrameSize returns the detection frame length in samples
func (c *Config) DetectFrameSize() int {
	if c.Detect.FrameSize > 0 {
		return c.Detect.FrameSize
	}
	return c.Audio.SampleRate / 4
}

// TransferFrameSize returns the transfer frame length in samples
func (c *Config) TransferFrameSize() int {
	if c.Transfer.FrameSize > 0 {
		return c.Transfer.FrameSize
	}
	return c.Audio.SampleRate / 16
}
