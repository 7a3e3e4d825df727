package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/lcd"
)

var (
	checkFormat string
	checkWatch  bool
)

var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Verify documents against a struct",
	Long:  `Loads each file (or stdin with "-") and reports every violation. Exits 1 when any document is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"-"}
		}
		if err := checkArgs(args, checkWatch); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err := checkOnce(ctx, cmd, args)
		if !checkWatch {
			return err
		}
		return watch(ctx, append([]string{cfg.Schema}, args...), func() {
			if err := checkOnce(ctx, cmd, args); err != nil && !errors.Is(err, errInvalid) {
				logger.Error("check failed", zap.Error(err))
			}
		})
	},
}

func init() {
	f := checkCmd.Flags()
	addLoadFlags(f)
	f.StringVar(&checkFormat, "format", "auto", "input format: auto, json or yaml")
	f.BoolVarP(&checkWatch, "watch", "w", false, "re-check when the schema or an input file changes")
	rootCmd.AddCommand(checkCmd)
}

// checkArgs rejects watching stdin, which can only be read once.
func checkArgs(files []string, watching bool) error {
	if watching && slices.Contains(files, "-") {
		return errors.New("--watch needs file arguments, stdin cannot be watched")
	}
	return nil
}

func checkOnce(ctx context.Context, cmd *cobra.Command, files []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	ds, err := lookupStruct(reg)
	if err != nil {
		return err
	}
	return runCheck(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), ds, files, checkFormat, loadOpt())
}

// runCheck verifies every file and prints one report per file. It returns
// errInvalid when at least one file failed.
func runCheck(ctx context.Context, out io.Writer, stdin io.Reader, ds *lcd.DataStruct, files []string, format string, opt lcd.LoadOpt) error {
	failed := 0
	for _, f := range files {
		src, err := readSource(f, format, stdin)
		if err != nil {
			return err
		}
		_, err = ds.Load(ctx, src, opt)
		if err == nil {
			fmt.Fprintf(out, "%s: ok\n", f)
			continue
		}
		ide, ok := lcd.AsInvalid(err)
		if !ok {
			return fmt.Errorf("%s: %w", f, err)
		}
		failed++
		fmt.Fprintf(out, "%s: invalid %s (%d issues)\n", f, ide.Struct, len(ide.Issues))
		for _, it := range ide.Issues {
			fmt.Fprintf(out, "  %s: %s: %s\n", it.Path, it.Code, it.Message)
		}
	}
	logger.Info("check finished", zap.Int("files", len(files)), zap.Int("invalid", failed))
	if failed > 0 {
		return errInvalid
	}
	return nil
}
