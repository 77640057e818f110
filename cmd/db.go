package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fbadash/model"
	authEntity "fbadash/model/entity/auth"
	authRepo "fbadash/model/repository/auth"
)

var tokenName string

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Create or update all tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		if err := model.AutoMigrate(db); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(model.Entities()))
		return nil
	},
}

var tokenCreateCmd = &cobra.Command{
	Use:   "tokens:create",
	Short: "Issue an API token for the tenant given by --user",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		t := &authEntity.APIToken{
			UserID: currentUser(),
			Name:   tokenName,
			Token:  strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		}
		if err := authRepo.NewAuthRepository(db).CreateToken(cmd.Context(), t); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Token)
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "tokens:revoke [token]",
	Short: "Revoke an API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		return authRepo.NewAuthRepository(db).RevokeToken(cmd.Context(), args[0])
	},
}

func init() {
	tokenCreateCmd.Flags().StringVar(&tokenName, "name", "cli", "Label stored with the token")
	rootCmd.AddCommand(migrateCmd, tokenCreateCmd, tokenRevokeCmd)
}
