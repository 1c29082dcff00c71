package main

import (
	"fmt"
	"strconv"

	"cat20_wallet/internal/pkg/utils"

	"github.com/spf13/cobra"
)

// newAmountCmd converts between decimal and integer amounts without touching the network.
func newAmountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amount",
		Short: "Convert token amounts between decimal and smallest units",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "scale <amount> <decimals>",
		Short:   "Decimal amount to smallest units",
		Example: "  cat20wallet amount scale 1.23 2   # 123",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decimals, err := parseDecimals(args[1])
			if err != nil {
				return err
			}
			v, err := utils.ScaleByDecimals(args[0], decimals)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "unscale <units> <decimals>",
		Short:   "Smallest units to decimal amount",
		Example: "  cat20wallet amount unscale 100000000 8   # 1.00000000",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decimals, err := parseDecimals(args[1])
			if err != nil {
				return err
			}
			v, err := utils.ParseBigInt(args[0])
			if err != nil {
				return err
			}
			if v.Sign() < 0 {
				return fmt.Errorf("units must not be negative")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), utils.UnscaleByDecimals(v, decimals))
			return err
		},
	})

	return cmd
}

func parseDecimals(s string) (uint8, error) {
	d, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("decimals must be an integer between 0 and 255: %w", err)
	}
	return uint8(d), nil
}
