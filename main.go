package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/maleadt/IRViewer/internal/annotate"
	"github.com/maleadt/IRViewer/internal/config"
	"github.com/maleadt/IRViewer/internal/lineinfo"
	"github.com/maleadt/IRViewer/internal/llvmir"
	"github.com/maleadt/IRViewer/internal/strip"
)

const doc = `irviewer prints an LLVM IR module with debug info stripped and every
instruction annotated with the source lines it was inlined from.

OUTPUT "-" stands for the standard output.

Environment:
  ` + config.EnvLoadPath + `  root source paths are shortened against
  ` + config.EnvBaseDir + `   where sources are looked for when missing at recorded paths`

var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	var (
		configPath string
		verbosity  int
		helped     bool
	)

	cmd := &cobra.Command{
		Use:   "irviewer INPUT OUTPUT",
		Short: "Annotate LLVM IR with inlined source context",
		Long:  doc,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return errors.Mark(err, errUsage)
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(stderr, verbosity)

			cfg, err := config.Load(configPath)
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			cfg.ApplyEnv(lookupEnv)
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "validate config")
			}
			log.V(1).Info("config loaded", "file", configPath, "load-path", cfg.LoadPath, "base-dir", cfg.BaseDir)

			return annotateModule(args[0], args[1], stdout, cfg, log)
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Mark(err, errUsage)
	})
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		helped = true
	})
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with annotation settings")
	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "log progress to stderr, repeat for more details")

	err := cmd.Execute()
	if helped {
		// Help is printed as usage and is not a successful run.
		fmt.Fprintf(stderr, "%s\n\n", cmd.Long)
		fmt.Fprint(stderr, cmd.UsageString())
		return 1
	}
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "irviewer: %s\n", err)
			fmt.Fprint(stderr, cmd.UsageString())
			return 1
		}

		fmt.Fprintf(stderr, "irviewer: %s\n", err)
		return 1
	}

	return 0
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity}).WithName("irviewer")
}

// annotateModule reads the input module, strips it and writes it annotated
// to output. Nothing is written when the module can not be read.
func annotateModule(input, output string, stdout io.Writer, cfg *config.Config, log logr.Logger) (err error) {
	m, err := llvmir.ParseFile(input)
	if err != nil {
		return err
	}
	for _, rep := range m.Diagnostics() {
		log.V(1).Info("module diagnostic", "report", rep.String())
	}
	log.V(1).Info("module parsed", "functions", len(m.Functions()), "globals", len(m.GlobalObjects()))

	archive, _ := strip.Run(m, log.WithName("strip"))

	printer := lineinfo.NewPrinter(
		cfg.Style(),
		lineinfo.NewPathResolver(cfg.LoadPath),
		lineinfo.NewSourceReader(cfg.BaseDir),
	)
	session := annotate.NewSession(printer, archive, log.WithName("annotate"))

	w := stdout
	if output != "-" {
		file, ferr := os.Create(output)
		if ferr != nil {
			return errors.Wrap(ferr, "create output file")
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "close output file")
			}
		}()
		w = file
	}

	if err := llvmir.Print(w, m, session); err != nil {
		return errors.Wrap(err, "print module")
	}

	return nil
}
