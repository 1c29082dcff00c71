package main

import (
	"fmt"
	"io"
	"strings"

	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/infrastructure/restapi"
	"cat20_wallet/internal/infrastructure/walletloader"
	"cat20_wallet/internal/pkg/logger"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Show the configured token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			info := a.directory.GetTokenInfo(cmd.Context(), a.cfg.Tracker.BaseURL, a.cfg.Tracker.TokenID, a.cfg.Network.Identifier)
			if info == nil {
				return entity.ErrNoTokenInfo
			}
			return printJSON(cmd.OutOrStdout(), restapi.ToTokenResponse(info, a.cfg.Network.Identifier))
		},
	}
}

func newBalanceCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the confirmed token balance of an address or of every address in a file",
		Args: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.NoArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			var addresses []string
			if file != "" {
				addresses, err = walletloader.NewAddressFileLoader(file, a.codec, a.cfg.Network.Identifier, logger.NewComponentAdapter("address_file")).Addresses()
				if err != nil {
					return err
				}
			} else {
				addresses = []string{strings.TrimSpace(args[0])}
			}

			info := a.directory.GetTokenInfo(cmd.Context(), a.cfg.Tracker.BaseURL, a.cfg.Tracker.TokenID, a.cfg.Network.Identifier)
			if info == nil {
				return entity.ErrNoTokenInfo
			}

			balances := make([]restapi.BalanceResponse, len(addresses))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.Tracker.MaxConcurrentRequests)
			for i, address := range addresses {
				g.Go(func() error {
					bal := a.utxos.GetBalance(ctx, a.cfg.Tracker.BaseURL, info, address)
					balances[i] = restapi.ToBalanceResponse(address, info.Decimals, bal)
					return nil
				})
			}
			_ = g.Wait()

			if file == "" {
				return printJSON(cmd.OutOrStdout(), balances[0])
			}
			return printJSON(cmd.OutOrStdout(), balances)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one address per line")
	return cmd
}

func newUtxosCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "utxos <address>",
		Short: "List spendable token outputs of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if limit <= 0 {
				limit = a.cfg.Tracker.UtxoLimit
			}
			address := strings.TrimSpace(args[0])
			set := a.utxos.GetTokenUtxos(cmd.Context(), a.cfg.Tracker.BaseURL, a.cfg.Tracker.TokenID, address, limit)
			return printJSON(cmd.OutOrStdout(), restapi.ToUtxoSetResponse(address, set))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of outputs (default tracker.utxoLimit)")
	return cmd
}

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <address> <amount>",
		Short: "Transfer tokens from the wallet account to an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if a.wallet == nil {
				return fmt.Errorf("%w: wallet.bridgeURL is not configured", entity.ErrNetworkUnavailable)
			}

			accounts, err := a.wallet.GetAccounts(cmd.Context())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				return fmt.Errorf("%w: wallet has no connected account", entity.ErrInvalidAddress)
			}

			info := a.directory.GetTokenInfo(cmd.Context(), a.cfg.Tracker.BaseURL, a.cfg.Tracker.TokenID, a.cfg.Network.Identifier)
			res, err := a.transfers().Submit(cmd.Context(), entity.TransferRequest{
				DestinationAddress: args[0],
				AmountDecimal:      args[1],
			}, info, accounts[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
