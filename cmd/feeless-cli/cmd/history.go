/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net/http"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [trace-id]",
	Short: "list approved action receipts, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			var receipt core.Receipt
			if err := callDaemon(cmd, http.MethodGet, "/wallet/history/"+args[0], nil, &receipt); err != nil {
				return err
			}

			return printJson(cmd, receipt)
		}

		var receipts []*core.Receipt
		path := fmt.Sprintf("/wallet/history?limit=%d", historyLimit)
		if err := callDaemon(cmd, http.MethodGet, path, nil, &receipts); err != nil {
			return err
		}

		return printJson(cmd, receipts)
	},
}

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "list last-known balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		var balances []*core.Balance
		if err := callDaemon(cmd, http.MethodGet, "/wallet/balances", nil, &balances); err != nil {
			return err
		}

		return printJson(cmd, balances)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <symbol>",
	Short: "look up token info on the node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token core.Token
		if err := callDaemon(cmd, http.MethodGet, "/wallet/tokens/"+args[0], nil, &token); err != nil {
			return err
		}

		return printJson(cmd, token)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd, balancesCmd, tokenCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "max receipts to list")
}
