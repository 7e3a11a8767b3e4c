// Command retrocompressor is the CLI surface over the compression core:
// `retrocompressor (compress|expand) -m (lzss_huff|lzw|td0) -i <in> -o <out>`.
// It is a thin external collaborator — file I/O and flag parsing live here,
// never in the codec packages themselves.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	cerrors "github.com/dargueta/retrocompressor/errors"
	"github.com/dargueta/retrocompressor/lzsshuff"
	"github.com/dargueta/retrocompressor/lzw"
	"github.com/dargueta/retrocompressor/td0"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "retrocompressor",
		Usage: "Compress and expand LZHUF/Teledisk-family retro formats",
		Commands: []*cli.Command{
			compressCommand(),
			expandCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func methodFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "method",
		Aliases:  []string{"m"},
		Usage:    "compression algorithm: lzss_huff, lzw, or td0",
		Required: true,
	}
}

func inputFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "input path; repeat -i/-o pairs to process a batch",
		Required: true,
	}
}

func outputFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "output path, one per -i",
		Required: true,
	}
}

func compressCommand() *cli.Command {
	return &cli.Command{
		Name:   "compress",
		Usage:  "compress a file",
		Flags:  []cli.Flag{methodFlag(), inputFlag(), outputFlag()},
		Action: runBatch(compressOne),
	}
}

func expandCommand() *cli.Command {
	return &cli.Command{
		Name:   "expand",
		Usage:  "expand a file",
		Flags:  []cli.Flag{methodFlag(), inputFlag(), outputFlag()},
		Action: runBatch(expandOne),
	}
}

// fileOp performs one compress-or-expand operation, reading path `in` and
// writing path `out` with the named method.
type fileOp func(method, in, out string) error

// runBatch applies op to every (-i, -o) pair in the invocation. It continues
// past per-file failures so a batch run reports every failure instead of
// stopping at the first, accumulating them through errors.Batch (backed by
// hashicorp/go-multierror, the same package the core's errors package uses
// for this). AlreadyInForm is reported as a stderr notice, not a batch
// failure, per the spec's "non-fatal notice" contract for that condition.
func runBatch(op fileOp) cli.ActionFunc {
	return func(c *cli.Context) error {
		method := c.String("method")
		inputs := c.StringSlice("input")
		outputs := c.StringSlice("output")
		if len(inputs) != len(outputs) {
			return fmt.Errorf("-i and -o must be given the same number of times (%d vs %d)", len(inputs), len(outputs))
		}

		var batch cerrors.Batch
		for idx, in := range inputs {
			out := outputs[idx]
			err := op(method, in, out)
			if err == nil {
				continue
			}
			if errors.Is(err, cerrors.ErrAlreadyInForm) {
				fmt.Fprintf(os.Stderr, "notice: %s: already in requested form, skipped\n", in)
				continue
			}
			batch.Add(fmt.Errorf("%s: %w", in, err))
		}
		return batch.Err()
	}
}

func compressOne(method, in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	var compressed []byte
	switch method {
	case "lzss_huff":
		compressed, _, _, err = lzsshuff.Compress(data, lzsshuff.Options{Header: lzsshuff.Lzhuf})
	case "lzw":
		compressed, _, _, err = lzw.Compress(data, lzw.Options{})
	case "td0":
		compressed, err = td0.Transform(data, td0.Compress, td0.Options{})
	default:
		return fmt.Errorf("%q not supported", method)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(out, compressed, 0o644)
}

func expandOne(method, in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	var expanded []byte
	switch method {
	case "lzss_huff":
		expanded, _, _, err = lzsshuff.Expand(data, lzsshuff.Options{Header: lzsshuff.Lzhuf})
	case "lzw":
		expanded, _, _, err = lzw.Expand(data, lzw.Options{})
	case "td0":
		expanded, err = td0.Transform(data, td0.Expand, td0.Options{})
	default:
		return fmt.Errorf("%q not supported", method)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(out, expanded, 0o644)
}
