package main

import (
	"fmt"
	"sort"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/codec"
	"github.com/MrEthical07/authstate/keyspace"
	"github.com/spf13/cobra"
)

func registerKeyCommands(rootCmd *cobra.Command, globalOptions *GlobalOptions) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "get <id> <category> <item>...",
		Short: "Prints key-material items, one per line",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := keyspace.ParseCategory(args[1])
			if err != nil {
				return err
			}
			sess, err := globalOptions.store.Open(cmd.Context(), authstate.OpenOptions{SessionID: args[0]})
			if err != nil {
				return err
			}
			items, err := sess.Get(cmd.Context(), category, args[2:]...)
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(items))
			for id := range items {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				encoded, err := codec.Encode(items[id])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, encoded)
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "clear <id>",
		Short: "Removes all key material of a session, keeping its credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return globalOptions.store.Clear(cmd.Context(), args[0])
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Removes a session and prints how many keys existed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := globalOptions.store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	})
}
