package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	passMark = "[ok]  "
	failMark = "[FAIL]"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that configured voice files exist and load cleanly",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			failed := false

			for _, p := range cfg.Paths.VoicePaths {
				if _, err := os.Stat(p); err != nil {
					fmt.Fprintf(os.Stdout, "%s voice file %q: %v\n", failMark, p, err)
					failed = true
					continue
				}
				fmt.Fprintf(os.Stdout, "%s voice file %q exists\n", passMark, p)
			}

			set, err := loadVoiceSet(cfg.Paths.VoicePaths)
			if err != nil {
				fmt.Fprintf(os.Stdout, "%s load voices: %v\n", failMark, err)
				failed = true
			} else {
				fmt.Fprintf(os.Stdout, "%s load voices: %d voice(s) loaded\n", passMark, len(set.Voices))
				if err := set.Validate(); err != nil {
					fmt.Fprintf(os.Stdout, "%s voice shape: %v\n", failMark, err)
					failed = true
				} else {
					fmt.Fprintf(os.Stdout, "%s voice shape: consistent\n", passMark)
				}
			}

			if cfg.Server.ListenAddr == "" {
				fmt.Fprintf(os.Stdout, "%s server listen address is empty\n", failMark)
				failed = true
			} else {
				fmt.Fprintf(os.Stdout, "%s server listen address: %s\n", passMark, cfg.Server.ListenAddr)
			}

			if failed {
				return errors.New("doctor checks failed")
			}

			fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	return cmd
}
