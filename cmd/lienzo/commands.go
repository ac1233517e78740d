package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-lienzo/canvas"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/logging"
	"github.com/RyanBlaney/sonido-lienzo/spectrogram"
	"github.com/RyanBlaney/sonido-lienzo/transcode"
)

// Command-line configuration
var flags struct {
	configPath  string
	envFiles    []string
	logFile     string
	demo        bool
	annotations string
	ffmpeg      string
	ffprobe     string
}

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open a recording in the spectrogram viewer",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runView,
}

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Print what ffprobe reports about a recording",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	viewCmd.Flags().BoolVar(&flags.demo, "demo", false,
		"show a synthesized recording instead of a file")
	viewCmd.Flags().StringVarP(&flags.annotations, "annotations", "a", "",
		"annotations JSON file, read at start and written on exit")
	for _, c := range []*cobra.Command{viewCmd, probeCmd} {
		c.Flags().StringVar(&flags.ffmpeg, "ffmpeg", "ffmpeg", "path to the ffmpeg binary")
		c.Flags().StringVar(&flags.ffprobe, "ffprobe", "ffprobe", "path to the ffprobe binary")
	}
}

func loadConfig() (*config.CanvasConfig, error) {
	if len(flags.envFiles) > 0 {
		if err := config.LoadEnvFiles(flags.envFiles...); err != nil {
			return nil, err
		}
	}
	return config.Load(flags.configPath)
}

// setupLogger sends logs to the log file, or nowhere while the viewer owns
// the terminal.
func setupLogger(cfg *config.CanvasConfig, quiet bool) (logging.Logger, func(), error) {
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		return nil, nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	var logger logging.Logger
	closeFn := func() {}
	switch {
	case flags.logFile != "":
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger = logging.NewDefaultLoggerTo(f)
		closeFn = func() { f.Close() }
	case quiet:
		logger = &logging.NoOpLogger{}
	default:
		logger = logging.NewDefaultLogger()
	}
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)
	return logger, closeFn, nil
}

func newDecoder(logger logging.Logger) *transcode.Decoder {
	dc := transcode.DefaultDecoderConfig()
	dc.FFmpegPath = flags.ffmpeg
	dc.FFprobePath = flags.ffprobe
	return transcode.NewDecoder(dc, logger)
}

// demoAudio is a minute of crossing chirps, loud enough to read at -100 dB.
func demoAudio() (spectrogram.Audio, error) {
	return spectrogram.Synthesize(22050, 60,
		spectrogram.Sweep{From: 500, To: 9000, Amplitude: 0.5},
		spectrogram.Sweep{From: 8000, To: 1500, Amplitude: 0.3},
		spectrogram.Sweep{From: 3000, To: 3000, Amplitude: 0.1},
	)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var audio spectrogram.Audio
	recordingID := "demo"
	switch {
	case flags.demo:
		if audio, err = demoAudio(); err != nil {
			return err
		}
	case len(args) == 1:
		src, err := newDecoder(logger).Open(ctx, args[0])
		if err != nil {
			return err
		}
		audio = src
		recordingID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(args[0])).String()
	default:
		return errors.New("give a file to view, or --demo")
	}

	renderer, err := spectrogram.NewRenderer(spectrogram.Options{
		RecordingID: recordingID,
		Audio:       audio,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	persistence := annotations.NewMemoryPersistence()
	initial, err := readAnnotations(flags.annotations)
	if err != nil {
		return err
	}
	for _, a := range initial {
		persistence.Put(a)
	}

	engine, err := canvas.New(canvas.Options{
		Config:      cfg,
		RecordingID: recordingID,
		Bounds:      renderer.Bounds(),
		Annotations: initial,
		Persistence: persistence,
		Images:      renderer,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	m := newViewer(engine, cfg, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFlush()
	if err := engine.Flush(flushCtx); err != nil {
		logger.Warn("pending changes may be lost", logging.Fields{"error": err.Error()})
	}
	return writeAnnotations(flags.annotations, persistence.All())
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	rec, err := newDecoder(logger).Probe(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, struct {
		*transcode.Recording
		Bounds any `json:"bounds"`
	}{rec, rec.Bounds()})
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return printJSON(cmd, cfg)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readAnnotations(path string) ([]annotations.Annotation, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []annotations.Annotation
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

func writeAnnotations(path string, list []annotations.Annotation) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
