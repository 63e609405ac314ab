package commands

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/deadline-harvester/internal/credential"
)

func newCredentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the source page token in the system keyring",
		Long: `The token is sent as a bearer token when source.credential_key names it.
A key that is not set means the page is fetched anonymously.`,
	}
	cmd.AddCommand(newCredentialSetCmd(), newCredentialDeleteCmd())
	return cmd
}

func newCredentialSetCmd() *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if value == "" {
				err := huh.NewInput().
					Title("Token for " + key).
					EchoMode(huh.EchoModePassword).
					Value(&value).
					Validate(func(s string) error {
						if s == "" {
							return errors.New("token is required")
						}
						return nil
					}).
					Run()
				if err != nil {
					return fmt.Errorf("token prompt: %w", err)
				}
			}
			if err := credential.Set(key, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored credential %q\n", key)
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "token value (prompted when omitted)")
	return cmd
}

func newCredentialDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Delete(args[0]); err != nil {
				if credential.IsNotFound(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "Credential %q was not set\n", args[0])
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted credential %q\n", args[0])
			return nil
		},
	}
}
