package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var clearCmd = &cobra.Command{
	Use: "clear",

	Short: "Drops and recreates every data table. Users are kept.",

	RunE: func(cmd *cobra.Command, args []string) error {
		if !viper.GetBool("clear.yes") {
			return fmt.Errorf("refusing to wipe the database without --yes")
		}
		s, err := openStack()
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.database.Wipe(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All tables deleted successfully!")
		return nil
	},
}

var userCmd = &cobra.Command{
	Use: "user <name>",

	Short: "Creates a user allowed to import and wipe through the API.",

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		password := viper.GetString("user.password")
		if password == "" {
			return fmt.Errorf("--password is required")
		}
		s, err := openStack()
		if err != nil {
			return err
		}
		defer s.close()

		created, err := s.auth.EnsureUser(context.Background(), args[0], password)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "User %s already exists\n", args[0])
		}
		return nil
	},
}

func init() {
	clearFlags := clearCmd.Flags()
	clearFlags.Bool("yes", false, "Confirm the wipe.")
	viper.BindPFlag("clear.yes", clearFlags.Lookup("yes"))

	userFlags := userCmd.Flags()
	userFlags.String("password", "", "Password for the new user.")
	viper.BindPFlag("user.password", userFlags.Lookup("password"))
}
