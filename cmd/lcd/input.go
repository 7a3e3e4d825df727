package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/reoring/lcd"
)

// addLoadFlags registers the flags that feed lcd.LoadOpt through the config.
func addLoadFlags(f *pflag.FlagSet) {
	f.Bool("strict", false, "reject unknown keys at every level")
	f.Bool("fail-fast", false, "stop at the first violation")
	f.String("duplicate-keys", "error", "duplicate keys: ignore, warn or error")
	f.Int("max-depth", 0, "maximum nesting depth (0 = unlimited)")
	f.Int64("max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
}

// readSource reads path ("-" for stdin) into a Source. format "auto" picks
// YAML for .yaml/.yml files and JSON otherwise.
func readSource(path, format string, stdin io.Reader) (lcd.Source, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if format == "auto" {
		format = "json"
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		}
	}
	if format == "yaml" {
		return lcd.YAMLBytes(b), nil
	}
	return lcd.JSONReader(bytes.NewReader(b)), nil
}
