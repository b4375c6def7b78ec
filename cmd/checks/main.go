// Command checks extracts the checks from a statement PDF on disk.
//
//	checks -file statement.pdf [-expected-count N] [-expected-total X] [-format json|csv|xlsx]
//
// It exits 2 when the expectations are not met and 1 on any other failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-checks/internal/domain/statement/checks"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/export"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/service"
)

const (
	exitOK         = 0
	exitError      = 1
	exitValidation = 2
)

var errUsage = errors.New("usage")

type options struct {
	file      string
	format    export.Format
	preflight bool
	exp       checks.Expectations
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	opts, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, err)
		}
		return exitError
	}

	document, err := os.ReadFile(opts.file)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read %s: %v\n", opts.file, err)
		return exitError
	}

	svc := service.NewExtractionService(parser.NewPDFParser(parser.WithPreflight(opts.preflight)), logger)
	result, err := svc.Extract(ctx, document, opts.exp)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if _, ok := checks.AsValidationError(err); ok {
			return exitValidation
		}
		return exitError
	}

	if err := export.Write(stdout, opts.format, result); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var (
		opts          options
		expectedCount int
		expectedTotal string
		format        string
	)

	fs := flag.NewFlagSet("checks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "statement PDF to read (required)")
	fs.IntVar(&expectedCount, "expected-count", -1, "number of checks the statement should contain")
	fs.StringVar(&expectedTotal, "expected-total", "", "signed total the checks should sum to, e.g. -1325.25")
	fs.StringVar(&format, "format", "json", "output format: json, csv or xlsx")
	fs.BoolVar(&opts.preflight, "preflight", false, "validate the PDF structure before extracting")

	if err := fs.Parse(args); err != nil {
		return opts, errUsage
	}
	if opts.file == "" {
		fs.Usage()
		return opts, errUsage
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return opts, err
	}
	opts.format = f

	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "expected-count" {
			opts.exp.Count = &expectedCount
		}
	})
	if expectedTotal != "" {
		total, err := decimal.NewFromString(expectedTotal)
		if err != nil {
			return opts, fmt.Errorf("invalid -expected-total %q: %w", expectedTotal, err)
		}
		opts.exp.Total = &total
	}

	return opts, nil
}
