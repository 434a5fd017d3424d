/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var sendOpt struct {
	amount string
	to     string
	token  string
	unlock int64
}

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "transfer funds straight through the wallet client",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(sendOpt.amount)
		if err != nil {
			return err
		}

		payload := core.SendPayload{
			Amount: amount,
			To:     sendOpt.to,
			Token:  sendOpt.token,
			Unlock: sendOpt.unlock,
		}

		var receipt core.Receipt
		if err := callDaemon(cmd, http.MethodPost, "/wallet/send", payload, &receipt); err != nil {
			return err
		}

		return printJson(cmd, receipt)
	},
}

var mintOpt struct {
	token  string
	supply string
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "mint a new token",
	RunE: func(cmd *cobra.Command, args []string) error {
		supply, err := decimal.NewFromString(mintOpt.supply)
		if err != nil {
			return err
		}

		payload := core.MintPayload{
			Token:  mintOpt.token,
			Supply: supply,
		}

		var receipt core.Receipt
		if err := callDaemon(cmd, http.MethodPost, "/wallet/mint", payload, &receipt); err != nil {
			return err
		}

		return printJson(cmd, receipt)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd, mintCmd)

	sendCmd.Flags().StringVar(&sendOpt.amount, "amount", "0", "amount")
	sendCmd.Flags().StringVar(&sendOpt.to, "to", "", "recipient public key")
	sendCmd.Flags().StringVar(&sendOpt.token, "token", "", "token symbol, empty for the native unit")
	sendCmd.Flags().Int64Var(&sendOpt.unlock, "unlock", 0, "unlock timestamp in ms (optional)")

	mintCmd.Flags().StringVar(&mintOpt.token, "token", "", "token symbol")
	mintCmd.Flags().StringVar(&mintOpt.supply, "supply", "0", "initial supply")
}
