/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/spf13/cobra"
)

var loginOpt core.Credential

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "unlock the wallet, generating a key when none is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]string
		if err := callDaemon(cmd, http.MethodPost, "/wallet/login", &loginOpt, &out); err != nil {
			return err
		}

		return printJson(cmd, out)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "lock the wallet and clear the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		return callDaemon(cmd, http.MethodPost, "/wallet/logout", nil, nil)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show the unlock state and active nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]any
		if err := callDaemon(cmd, http.MethodGet, "/wallet/", nil, &out); err != nil {
			return err
		}

		return printJson(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)

	loginCmd.Flags().StringVar(&loginOpt.PrivateKey, "key", "", "private key seed (optional)")
	loginCmd.Flags().StringVar(&loginOpt.WSNode, "ws-node", "", "websocket node url")
	loginCmd.Flags().StringVar(&loginOpt.HTTPNode, "http-node", "", "http node url")
}
