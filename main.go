// Hide messages in PNG files
//
// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//
// Stores text in ancillary chunks of PNG images, optionally encrypted with a
// passphrase, and reads it back out. The image itself stays decodable. Also
// searches the text (tEXt) chunks of PNG images for a regex.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/klausman/pngme/seal"
)

const usage = `Usage: %s <command> [options] ...

Commands:
  encode <file> [chunk-type] <message>   Hide a message in a chunk
  decode <file> [chunk-type]             Print a hidden message
  remove <file> [chunk-type]             Remove a chunk
  print  <file>                          List the chunks of a file
  grep   <regex> <file> [file, ...]      Search tEXt chunks

Run '%s <command> --help' for command options.
`

// errUsage signals that the command line was wrong and usage was printed.
var errUsage = errors.New("invalid usage")

type app struct {
	stdout, stderr io.Writer
	logger         *slog.Logger
	cfg            *Config

	// sealer encrypts messages when a key is given.
	sealer seal.Transform
	// readPassphrase prompts for a key interactively.
	readPassphrase func() (string, error)
}

// commonFlags are shared by all commands.
type commonFlags struct {
	config   string
	logLevel string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.config, "config", os.Getenv("PNGME_CONFIG"),
		"YAML config file (default $PNGME_CONFIG)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// setup loads the config and builds the logger once flags are parsed.
func (a *app) setup(c commonFlags, command string) error {
	cfg := Default()
	if c.config != "" {
		var err error
		if cfg, err = LoadFile(c.config); err != nil {
			return err
		}
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.sealer == nil {
		a.sealer = seal.Passphrase{WorkFactor: cfg.ScryptWorkFactor}
	}
	a.logger = newLogger(a.stderr, level).With("command", command)
	return nil
}

func main() {
	a := &app{
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		readPassphrase: promptPassphrase,
	}
	os.Exit(a.run(os.Args[1:]))
}

// run dispatches to a command and returns the process exit code.
func (a *app) run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintf(a.stderr, usage, os.Args[0], os.Args[0])
		return -1
	}

	var err error
	switch args[0] {
	case "encode":
		err = a.encode(args[1:])
	case "decode":
		err = a.decode(args[1:])
	case "remove":
		err = a.remove(args[1:])
	case "print":
		err = a.print(args[1:])
	case "grep":
		// grep has its own exit codes.
		return a.grep(args[1:])
	case "-h", "--help", "help":
		fmt.Fprintf(a.stderr, usage, os.Args[0], os.Args[0])
		return 0
	default:
		fmt.Fprintf(a.stderr, "Unknown command %q\n", args[0])
		fmt.Fprintf(a.stderr, usage, os.Args[0], os.Args[0])
		return -1
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return -1
	default:
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 1
	}
}

// newFlagSet returns a flag set for a command whose errors and usage go to
// stderr.
func (a *app) newFlagSet(name, args string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: %s %s [options] %s\n", os.Args[0], name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args, turning flag errors into errUsage.
func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}
