package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"statusboard/config"
	"statusboard/core"
)

// ClocksOptions holds flags for the clocks command.
type ClocksOptions struct {
	*RootOptions
	ConfigFile string
}

// ClockReport is the json form of the clocks output.
type ClockReport struct {
	Board  string            `json:"board"`
	RefHz  uint32            `json:"ref_hz"`
	Ticks  uint8             `json:"tick_divisor"`
	TickHz uint32            `json:"tick_hz"`
	BusHz  uint32            `json:"bus_source_hz"`
	SysPLL core.PLLPlan      `json:"pll_sys"`
	USBPLL core.PLLPlan      `json:"pll_usb"`
	Clocks map[string]uint32 `json:"clocks"`
}

// NewClocksCommand creates the clocks command.
func NewClocksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClocksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clocks",
		Short: "Show the clock regime a board configuration produces",
		Long: `Validate a board configuration and print the PLL settings and every
derived clock, without touching hardware.

Examples:
  statusboard clocks
  statusboard clocks --config board.json --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBoard(opts.ConfigFile)
			if err != nil {
				return err
			}
			tree, err := cfg.Validate()
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeClocksJSON(cmd.OutOrStdout(), cfg.Name, tree)
			}
			return writeClocksText(cmd.OutOrStdout(), cfg.Name, tree)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "board configuration (json); built-in board if empty")

	return cmd
}

func loadBoard(path string) (*config.BoardConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return config.LoadConfig(data)
}

func writeClocksText(w io.Writer, board string, tree *core.ClockTree) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "board\t%s\n", board)
	fmt.Fprintf(tw, "xosc\t%d Hz\ttick divisor %d\n", tree.RefHz, tree.Ticks)
	writePLL(tw, "pll_sys", tree.SysPLL)
	writePLL(tw, "pll_usb", tree.USBPLL)
	for _, c := range tree.Clocks() {
		fmt.Fprintf(tw, "%s\t%d Hz\n", c.Role, c.Hz)
	}
	fmt.Fprintf(tw, "tick\t%d Hz\n", tree.TickHz())
	fmt.Fprintf(tw, "bus source\t%d Hz\n", tree.BusSourceHz())
	return tw.Flush()
}

func writePLL(w io.Writer, name string, p core.PLLPlan) {
	fmt.Fprintf(w, "%s\t%d Hz\tvco %d refdiv %d fbdiv %d postdiv %d/%d delivered %d Hz\n",
		name, p.OutputHz, p.VCOHz, p.RefDiv, p.FBDiv, p.PostDiv1, p.PostDiv2, p.DeliveredHz())
}

func writeClocksJSON(w io.Writer, board string, tree *core.ClockTree) error {
	report := ClockReport{
		Board:  board,
		RefHz:  tree.RefHz,
		Ticks:  tree.Ticks,
		TickHz: tree.TickHz(),
		BusHz:  tree.BusSourceHz(),
		SysPLL: tree.SysPLL,
		USBPLL: tree.USBPLL,
		Clocks: make(map[string]uint32, core.NumClocks),
	}
	for _, c := range tree.Clocks() {
		report.Clocks[c.Role.String()] = c.Hz
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
