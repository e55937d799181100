// Command gendecode generates a Go instruction decoder from an instruction
// set description.
//
// Usage:
//
//	gendecode -r ROOT -t TEMPLATE -o OUTPUT [--package NAME] [--check]
//	gendecode decode -r ROOT WORD...
//
// The description is read from ROOT/isa/isa.yaml.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	stdout io.Writer
	stderr io.Writer

	logLevel string
	logJSON  bool
	log      zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, log: zerolog.Nop()}

	var (
		cfg   Config
		noFmt bool
	)
	rootCmd := &cobra.Command{
		Use:          "gendecode",
		Short:        "Generate an instruction decoder from an ISA description",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			run := cfg
			run.Format = !noFmt
			return NewGenerator(run, a.log, cmd.OutOrStdout()).Run()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.RootPath, "root", "r", "", "Path to project source root")
	flags.StringVarP(&cfg.TemplatePath, "template", "t", "", "Path to template file")
	flags.StringVarP(&cfg.OutputPath, "output", "o", "", "Path to generated file")
	flags.StringVar(&cfg.Package, "package", "decoder", "Package name passed to the template")
	flags.BoolVar(&cfg.Check, "check", false, "Report a diff instead of writing when the output is stale")
	flags.BoolVar(&noFmt, "no-fmt", false, "Do not gofmt the rendered output")
	flags.BoolVar(&cfg.Dump, "dump", false, "Dump the loaded description at debug level")
	for _, name := range []string{"root", "template", "output"} {
		_ = rootCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(a.newDecodeCmd())
	return rootCmd
}

func (a *app) initLogger() error {
	level, err := zerolog.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	typ := ConsoleLogger
	if a.logJSON {
		typ = JSONLogger
	}
	a.log = newLogger(a.stderr, LogOptions{LogLevel: level, Type: typ})
	return nil
}

func (a *app) newDecodeCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "decode WORD...",
		Short: "Decode instruction words against the description without generating code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isa, err := loadDescription(Config{RootPath: root}.DescriptionPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				raw, err := strconv.ParseUint(arg, 0, 32)
				if err != nil {
					return fmt.Errorf("invalid instruction word %q", arg)
				}
				d, ok := decodeWord(isa, uint32(raw))
				if !ok {
					fmt.Fprintf(out, "0x%08x: invalid encoding\n", raw)
					continue
				}
				fmt.Fprintf(out, "0x%08x: ", raw)
				dumpConfig.Fdump(out, d)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&root, "root", "r", ".", "Path to project source root")
	return cmd
}
