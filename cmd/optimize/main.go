package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/delaneyj/turnsignal/cmd/optimize/internal/config"
	"github.com/delaneyj/turnsignal/cmd/optimize/templates"
	"github.com/delaneyj/turnsignal/compiler"
	"github.com/urfave/cli/v3"
)

const (
	outKey        = "out"
	configDirKey  = "config"
	staticKeysKey = "static-keys"
	reservedKey   = "reserved"
	platformKey   = "platform"
	reportKey     = "report"
)

func main() {
	cmd := &cli.Command{
		Name:      "optimize",
		Usage:     "Mark static sub-trees of a template AST",
		ArgsUsage: "[ast.yaml]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  outKey,
				Usage: "Write the result to this file instead of stdout",
			},
			&cli.StringFlag{
				Name:  configDirKey,
				Usage: "Directory holding an optional " + config.FileName,
				Value: ".",
			},
			&cli.StringSliceFlag{
				Name:  staticKeysKey,
				Usage: "Extra node keys allowed on static elements",
			},
			&cli.StringSliceFlag{
				Name:  reservedKey,
				Usage: "Extra tags treated as platform elements",
			},
			&cli.StringFlag{
				Name:  platformKey,
				Usage: "Base reserved tag set: web or none",
			},
			&cli.BoolFlag{
				Name:  reportKey,
				Usage: "Print a text summary instead of the annotated AST",
			},
		},
		Action: optimize,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func optimize(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()

	cfg, err := config.LoadOptional(cmd.String(configDirKey))
	if err != nil {
		return err
	}
	cfg.Merge(cmd.StringSlice(staticKeysKey), cmd.StringSlice(reservedKey), cmd.String(platformKey))
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	source := cmd.Args().First()
	var in io.Reader = os.Stdin
	if source == "" || source == "-" {
		source = "stdin"
	} else {
		f, err := os.Open(source)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	root, err := compiler.Decode(in)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	compiler.Optimize(root, opts)

	write := func(out io.Writer) error {
		if cmd.Bool(reportKey) {
			templates.WriteSummary(out, templates.NewReport(source, root))
			return nil
		}
		return compiler.Encode(out, root)
	}
	if err := writeOutput(cmd.String(outKey), write); err != nil {
		return err
	}

	log.Printf("Optimized %s in %v", source, time.Since(start))
	return nil
}

// writeOutput runs write against stdout, or against the file at path when
// one is given. Errors from closing the file are returned.
func writeOutput(path string, write func(w io.Writer) error) (err error) {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}
