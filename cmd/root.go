package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fbadash/config"
	"fbadash/model"
)

var userID string

var rootCmd = &cobra.Command{
	Use:           "fbadash",
	Short:         "FBA shipment packing and expense backup tools",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// openDB connects and migrates. Tests replace it with an in-memory database.
var openDB = func() (*gorm.DB, error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, err
	}
	if err := model.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func currentUser() string {
	if userID != "" {
		return userID
	}
	return config.LoadAppConfig().DefaultUserID
}

// Execute adds registered commands and runs the root command.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "Tenant to act for (default DEFAULT_USER_ID)")
}
