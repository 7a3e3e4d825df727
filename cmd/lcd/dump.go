package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/lcd"
)

var (
	dumpFormat   string
	dumpOutput   string
	dumpPreserve bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Load a document and print its canonical form",
	Long: `Loads one document, verifies it and prints the dump: declared fields in
declaration order, absent optional fields as null (or omitted with --preserve).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := "-"
		if len(args) == 1 {
			file = args[0]
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		ds, err := lookupStruct(reg)
		if err != nil {
			return err
		}
		mode := lcd.DumpCanonical
		if dumpPreserve {
			mode = lcd.DumpPreserve
		}
		return runDump(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), ds, file, loadOpt(), lcd.DumpOpt{Mode: mode})
	},
}

func init() {
	f := dumpCmd.Flags()
	addLoadFlags(f)
	f.StringVar(&dumpFormat, "format", "auto", "input format: auto, json or yaml")
	f.StringVarP(&dumpOutput, "output", "o", "json", "output format: json or yaml")
	f.BoolVar(&dumpPreserve, "preserve", false, "omit absent fields instead of writing null")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(ctx context.Context, out io.Writer, stdin io.Reader, ds *lcd.DataStruct, file string, opt lcd.LoadOpt, dopt lcd.DumpOpt) error {
	src, err := readSource(file, dumpFormat, stdin)
	if err != nil {
		return err
	}
	inst, err := ds.Load(ctx, src, opt)
	if err != nil {
		if ide, ok := lcd.AsInvalid(err); ok {
			fmt.Fprintln(out, ide.Error())
			return errInvalid
		}
		return err
	}
	switch dumpOutput {
	case "yaml":
		b, err := inst.DumpYAML(ctx, dopt)
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	case "json":
		b, err := inst.DumpJSON(ctx, dopt)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = out.Write(buf.Bytes())
		return err
	}
	return fmt.Errorf("unknown output format %q", dumpOutput)
}
