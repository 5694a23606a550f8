package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"statusboard/host/serial"
	"statusboard/host/trace"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trace",
		Short: "Follow the board's trace stream",
		Long: `Open the board's USB serial port and print every boot and runtime
trace record until interrupted.

Examples:
  statusboard trace
  statusboard trace --device /dev/ttyACM1
  STATUSBOARD_DEVICE=/dev/cu.usbmodem101 statusboard trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, rootOpts)
		},
	}
}

func runTrace(cmd *cobra.Command, opts *RootOptions) error {
	cfg := serial.DefaultConfig(opts.Device)
	cfg.Baud = opts.Baud

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	if err := port.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", opts.Device, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	m := trace.NewMonitor(port, cmd.OutOrStdout())
	m.Follow = true
	err = m.Run(ctx)

	fmt.Fprintf(cmd.ErrOrStderr(), "%d records, %d faults, %d corrupt frames\n", m.Records(), m.Faults(), m.Dropped())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
