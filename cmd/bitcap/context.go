package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/backmassage/bitcap/internal/check"
	"github.com/backmassage/bitcap/internal/config"
	"github.com/backmassage/bitcap/internal/logging"
)

// errSilentExit ends the process with status 1 after the failure has
// already been reported through the logger.
var errSilentExit = errors.New("exit status 1")

// commandContext carries the flags shared by every subcommand and builds
// the effective Config from them.
type commandContext struct {
	flags *config.Flags
	in    io.Reader
	out   io.Writer
}

// loadConfig layers defaults < config file < flags, sets the input folder,
// and validates the result.
func (c *commandContext) loadConfig(folder string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := config.Load(strings.TrimSpace(c.flags.ConfigPath), &cfg); err != nil {
		return nil, err
	}
	if err := c.flags.Apply(&cfg); err != nil {
		return nil, err
	}
	cfg.InputDir = config.NormalizeDirArg(folder)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveFolder returns the folder argument, prompting for it when absent,
// and checks that it is a usable directory.
func (c *commandContext) resolveFolder(args []string) (string, error) {
	var folder string
	if len(args) > 0 {
		folder = args[0]
	} else {
		var err error
		folder, err = promptFolder(c.in, c.out)
		if err != nil {
			return "", err
		}
	}
	folder = config.NormalizeDirArg(folder)
	if folder == "" {
		return "", errors.New("no folder given")
	}
	if err := check.CheckFolder(folder); err != nil {
		return "", fmt.Errorf("invalid folder: %w", err)
	}
	return folder, nil
}

// setup resolves the folder and config and opens the logger. The caller
// must Close the logger.
func (c *commandContext) setup(args []string) (*config.Config, *logging.Logger, error) {
	folder, err := c.resolveFolder(args)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := c.loadConfig(folder)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// promptFolder asks for a folder path on w and reads one line from r.
func promptFolder(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter the folder path: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read folder path: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// maxArgs is cobra.MaximumNArgs with a friendlier message.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return fmt.Errorf("%s takes at most %d folder argument, got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}
