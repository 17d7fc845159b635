package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/htsvoice/internal/config"
	"github.com/example/htsvoice/internal/server"
	"github.com/example/htsvoice/internal/voice"
	"github.com/example/htsvoice/internal/voice/jsonvoice"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var voicePaths []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP synthesis server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if len(voicePaths) == 0 {
				voicePaths = cfg.Paths.VoicePaths
			}

			set, err := loadVoiceSet(voicePaths)
			if err != nil {
				return err
			}

			srv := server.New(cfg, set).WithShutdownTimeout(
				time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(os.Stdout, "listening on %s\n", cfg.Server.ListenAddr)

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringSliceVar(&voicePaths, "voice", nil, "Voice file(s) to load, in interpolation order (defaults to --paths-voice-paths)")

	return cmd
}

func loadVoiceSet(voicePaths []string) (voice.VoiceSet, error) {
	if len(voicePaths) == 0 {
		return voice.VoiceSet{}, fmt.Errorf("no voice files configured")
	}

	readers := make([]io.Reader, 0, len(voicePaths))
	for _, p := range voicePaths {
		f, err := os.Open(p)
		if err != nil {
			return voice.VoiceSet{}, fmt.Errorf("open voice %q: %w", p, err)
		}
		defer f.Close()

		readers = append(readers, f)
	}

	set, err := voice.LoadAll(jsonvoice.Loader{}, readers)
	if err != nil {
		return voice.VoiceSet{}, fmt.Errorf("load voices: %w", err)
	}

	if err := set.Validate(); err != nil {
		return voice.VoiceSet{}, fmt.Errorf("validate voices: %w", err)
	}

	return set, nil
}
