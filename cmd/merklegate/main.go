// Command merklegate commits a list of eligible voter addresses to a Merkle
// root and emits a membership proof per address. The input is a UTF-8 text
// file, one record per line, first comma-separated field the address, with
// an optional header line containing "address". Every proof is re-verified
// against the root before the artifact is written; no partial artifact is
// ever produced.
//
// Usage:
//
//	merklegate [flags] [input] [output]
//
// Flags:
//
//	-in          Input address list path
//	-out         Output artifact path (JSON)
//	-proof-for   Print this address's proof to stdout
//	-crosscheck  Re-verify the commitment with go-ethereum's primitives
//	-sign-key    Hex secp256k1 key; sign the root into the artifact
//	-verbosity   Log level 0-5 (default: 3)
//	-version     Print version and exit
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/merklegate/merklegate/allowlist"
	"github.com/merklegate/merklegate/attest"
	"github.com/merklegate/merklegate/geth"
	"github.com/merklegate/merklegate/log"
	"github.com/merklegate/merklegate/metrics"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	logger := log.New(cfg.LogLevel()).Module("merklegate")
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return 1
	}

	input, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		logger.Error("cannot read input", "path", cfg.InputPath, "err", err)
		return 1
	}

	reg := metrics.NewRegistry()
	report, err := allowlist.Build(string(input), allowlist.WithRegistry(reg))
	if err != nil {
		logger.Error("build failed", "err", err)
		return 1
	}

	for _, rej := range report.Rejections {
		logger.Warn("record rejected", "line", rej.Line, "reason", rej.Reason, "value", rej.Value)
	}
	logger.Info("commitment built",
		"root", report.Root,
		"accepted", len(report.Entries),
		"rejected", len(report.Rejections),
		"height", report.Height,
		"millis", reg.Histogram(metrics.BuildMillis).Sum(),
	)
	if report.TotalWeight != nil {
		logger.Info("total weight", "weight", report.TotalWeight.Dec())
	}

	if cfg.CrossCheck {
		if err := geth.CrossCheck(report); err != nil {
			logger.Error("cross-check failed", "err", err)
			return 1
		}
		logger.Info("cross-check passed", "leaves", len(report.Entries))
	}

	artifact := report.Artifact()
	if cfg.SignKey != "" {
		key, err := attest.ParseKey(cfg.SignKey)
		if err != nil {
			logger.Error("bad signing key", "err", err)
			return 1
		}
		att, err := attest.Attest(key, report.Root)
		if err != nil {
			logger.Error("attestation failed", "err", err)
			return 1
		}
		artifact.Attestation = att
		logger.Info("root signed", "signer", att.Signer)
	}

	if cfg.ProofFor != "" {
		if code := printProof(report, cfg.ProofFor); code != 0 {
			return code
		}
	}

	if cfg.OutputPath != "" {
		if err := artifact.WriteFile(cfg.OutputPath); err != nil {
			logger.Error("cannot write artifact", "err", err)
			return 1
		}
		logger.Info("artifact written", "path", cfg.OutputPath)
	}
	return 0
}

// printProof writes one address's membership proof to stdout, one sibling
// digest per line, root first.
func printProof(report *allowlist.Report, identifier string) int {
	entry, ok := report.FindEntry(identifier)
	if !ok {
		log.Error("address not in commitment", "address", identifier)
		return 1
	}
	fmt.Printf("root: %s\n", report.Root)
	fmt.Printf("leaf: %s\n", entry.Leaf)
	fmt.Printf("proof (%d siblings):\n", len(entry.Proof))
	for _, sib := range entry.Proof {
		fmt.Printf("  %s\n", sib)
	}
	return 0
}

// parseFlags parses CLI arguments into a Config. Returns the config, whether
// the caller should exit immediately, and the exit code. Positional
// arguments fill input and output paths when the named flags are unset.
func parseFlags(args []string) (Config, bool, int) {
	cfg := DefaultConfig()
	fs := newFlagSet(&cfg)

	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, true, 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("merklegate %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	rest := fs.Args()
	if cfg.InputPath == "" && len(rest) > 0 {
		cfg.InputPath = rest[0]
		rest = rest[1:]
	}
	if cfg.OutputPath == "" && len(rest) > 0 {
		cfg.OutputPath = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments: %s\n", strings.Join(rest, " "))
		return cfg, true, 2
	}

	return cfg, false, 0
}

// newFlagSet creates a flag.FlagSet that binds all CLI flags to the given
// Config. The FlagSet uses ContinueOnError so callers control the error
// handling behavior.
func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("merklegate", flag.ContinueOnError)
	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "input address list path")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "output artifact path (JSON)")
	fs.StringVar(&cfg.ProofFor, "proof-for", cfg.ProofFor, "print this address's proof to stdout")
	fs.BoolVar(&cfg.CrossCheck, "crosscheck", cfg.CrossCheck, "re-verify the commitment with go-ethereum's primitives")
	fs.StringVar(&cfg.SignKey, "sign-key", cfg.SignKey, "hex secp256k1 key used to sign the root")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-5 (0=silent, 5=trace)")
	return fs
}
