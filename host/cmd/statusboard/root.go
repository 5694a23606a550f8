package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"statusboard/host/serial"
)

// Environment variables read from the process or a .env file.
const (
	envDevice = "STATUSBOARD_DEVICE"
	envBaud   = "STATUSBOARD_BAUD"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Device  string
	Baud    int
	EnvFile string
	Format  string // "text" | "json"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the statusboard CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "statusboard",
		Short: "Host tools for the Pico status board",
		Long:  "Follow the board's trace stream and inspect the clock regime a board configuration produces.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.loadEnv(cmd)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Device, "device", "d", "/dev/ttyACM0", "serial device of the board")
	cmd.PersistentFlags().IntVar(&opts.Baud, "baud", serial.DefaultBaud, "baud rate (ignored by USB CDC)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with STATUSBOARD_* settings")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewClocksCommand(opts))

	return cmd
}

// loadEnv fills flags the user did not set from the environment. A
// missing env file is not an error.
func (o *RootOptions) loadEnv(cmd *cobra.Command) error {
	if o.EnvFile != "" {
		if err := godotenv.Load(o.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", o.EnvFile, err)
		}
	}

	flags := cmd.Flags()
	if v := os.Getenv(envDevice); v != "" && !flags.Changed("device") {
		o.Device = v
	}
	if v := os.Getenv(envBaud); v != "" && !flags.Changed("baud") {
		baud, err := strconv.Atoi(v)
		if err != nil || baud <= 0 {
			return fmt.Errorf("%s: invalid baud %q", envBaud, v)
		}
		o.Baud = baud
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
