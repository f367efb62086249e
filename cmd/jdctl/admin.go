package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jharjadi/jdgen/internal/service"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [key]",
	Short: "Print the bcrypt hash of an API key for API_KEY_HASH or READ_API_KEY_HASH",
	Long:  "Hashes the key given as an argument, or read from stdin when omitted, so the server never stores the plain key.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			k, err := readText("-", cmd.InOrStdin())
			if err != nil {
				return err
			}
			key = k
		}
		hash, err := service.HashKey(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		h, err := c.Health(cmd.Context())
		if err != nil {
			return err
		}
		renderHealth(cmd.OutOrStdout(), h)
		if h.Status != "ok" {
			return fmt.Errorf("server is %s", h.Status)
		}
		return nil
	},
}

var guidesCmd = &cobra.Command{
	Use:   "guides",
	Short: "List the leveling guides loaded on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		infos, err := c.Guides(cmd.Context())
		if err != nil {
			return err
		}
		renderGuides(cmd.OutOrStdout(), infos)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange the API key for a JWT",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		tok, err := c.Token(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashKeyCmd, healthCmd, guidesCmd, tokenCmd)
}
