package main

import (
	"fmt"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/codec"
	"github.com/spf13/cobra"
)

func registerSessionCommands(rootCmd *cobra.Command, globalOptions *GlobalOptions) {
	var sessionID string
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Creates a session and stores its initial credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := globalOptions.store.Open(cmd.Context(), authstate.OpenOptions{SessionID: sessionID})
			if err != nil {
				return err
			}
			if !sess.Created() {
				return fmt.Errorf("session %s already exists", sess.ID())
			}
			if err := sess.SaveCredentials(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.ID())
			return nil
		},
	}
	newCmd.Flags().StringVar(&sessionID, "id", "", "session id to use instead of the namespace counter")
	rootCmd.AddCommand(newCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Prints the stored credentials of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := globalOptions.store.Open(cmd.Context(), authstate.OpenOptions{SessionID: args[0]})
			if err != nil {
				return err
			}
			if sess.Created() {
				return fmt.Errorf("session %s has no stored credentials", args[0])
			}
			encoded, err := codec.Encode(sess.Credentials())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	})
}
