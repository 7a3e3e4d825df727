package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/lcd"
	"github.com/reoring/lcd/i18n"
	"github.com/reoring/lcd/internal/config"
	"github.com/reoring/lcd/internal/logging"
	"github.com/reoring/lcd/schemafile"
)

// errInvalid is returned when at least one document failed verification. The
// details have already been printed.
var errInvalid = errors.New("invalid data")

var (
	cfgFile string
	cfg     = &config.Config{DuplicateKeys: "error"}
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lcd",
	Short: "Load, check and dump structured data",
	Long: `lcd validates JSON and YAML documents against structs declared in a schema file.

Example:
  lcd check -s schema.yaml -t Person person.json
  lcd dump -s schema.yaml -t Person -o yaml person.json
  lcd describe -s schema.yaml`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default .lcd.yaml in the current or home directory)")
	pf.StringP("schema", "s", "", "schema file (YAML or JSON)")
	pf.StringP("type", "t", "", "struct name to check against")
	pf.String("lang", "en", "message language (en, ja)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	l, err := logging.New(c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	i18n.SetLanguage(c.Lang)
	return nil
}

func loadRegistry() (*lcd.Registry, error) {
	if cfg.Schema == "" {
		return nil, errors.New("no schema file: use --schema or set schema in .lcd.yaml")
	}
	reg, err := schemafile.ParseFile(cfg.Schema)
	if err != nil {
		return nil, err
	}
	logger.Debug("schema loaded", zap.String("file", cfg.Schema), zap.Strings("structs", reg.Names()))
	return reg, nil
}

func lookupStruct(reg *lcd.Registry) (*lcd.DataStruct, error) {
	if cfg.Type == "" {
		names := reg.Names()
		if len(names) == 1 {
			return reg.MustLookup(names[0]), nil
		}
		return nil, fmt.Errorf("--type is required, schema declares %v", names)
	}
	ds, ok := reg.Lookup(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", lcd.ErrUnknownStruct, cfg.Type)
	}
	return ds, nil
}

func loadOpt() lcd.LoadOpt {
	sev := lcd.Error
	switch cfg.DuplicateKeys {
	case "ignore":
		sev = lcd.Ignore
	case "warn":
		sev = lcd.Warn
	}
	return lcd.LoadOpt{
		Verify:        lcd.VerifyOpt{Strict: cfg.Strict, FailFast: cfg.FailFast},
		DuplicateKeys: sev,
		MaxDepth:      cfg.MaxDepth,
		MaxBytes:      cfg.MaxBytes,
		OnWarning: func(it lcd.Issue) {
			logger.Warn(it.Message, zap.String("path", it.Path), zap.String("code", it.Code))
		},
	}
}
