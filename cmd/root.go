package cmd

import (
	"context"
	"fmt"
	"os"

	"stockroom/internal/core/container"
	"stockroom/internal/core/logger"
	"stockroom/internal/core/routes"
	"stockroom/internal/database"
	"stockroom/internal/database/migration"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbURL := os.Getenv("DATABASE_URL")
		migrationDir, _ := cmd.Flags().GetString("dir")

		err := migration.Migrate(
			dbURL,
			fmt.Sprintf("file://%s", migrationDir),
			logger.NewLogger(),
		)
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		return nil
	},
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inventory HTTP server.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.NewLogger()
		defer log.Sync()

		dbURL := os.Getenv("DATABASE_URL")
		db, err := database.NewPostgresConnection(dbURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		appContainer := container.NewAppContainer(db, log)

		router := gin.New()
		routes.RegisterRoutes(router, appContainer, log)

		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}

		log.Info("starting server", zap.String("port", port))
		return router.Run(":" + port)
	},
}

func Execute(ctx context.Context) {
	// Missing .env is fine in environments configured through real env vars.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "stockroom",
		Short: "Multi-tenant inventory ledger service",
	}
	MigrateCmd.Flags().String("dir", "./migrations", "Directory containing the migration files")
	rootCmd.AddCommand(MigrateCmd)
	rootCmd.AddCommand(ServeCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
