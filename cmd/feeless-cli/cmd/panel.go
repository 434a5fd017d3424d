/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/spf13/cobra"
)

// pendingCmd plays the panel-ready handshake: it reports the action
// waiting for a decision, if any.
var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "show the wallet action waiting for approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		signal := map[string]string{"type": core.MessagePanelReady}

		var pending core.PanelRequest
		if err := callDaemon(cmd, http.MethodPost, "/bridge/panel/ready", signal, &pending); err != nil {
			return err
		}

		if pending.RequestID == "" {
			cmd.Println("no pending request")
			return nil
		}

		return printJson(cmd, pending)
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <request-id>",
	Short: "approve the presented wallet action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decide(cmd, args[0], true)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <request-id>",
	Short: "reject the presented wallet action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decide(cmd, args[0], false)
	},
}

func decide(cmd *cobra.Command, id string, approve bool) error {
	in := map[string]any{"requestId": id, "approve": approve}

	var out map[string]any
	if err := callDaemon(cmd, http.MethodPost, "/bridge/panel/decisions", in, &out); err != nil {
		return err
	}

	return printJson(cmd, out)
}

func init() {
	rootCmd.AddCommand(pendingCmd, approveCmd, rejectCmd)
}
