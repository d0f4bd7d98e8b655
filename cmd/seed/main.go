package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/carbonova/carbonova-backend/internal/config"
	"github.com/carbonova/carbonova-backend/internal/importer"
	mongorepo "github.com/carbonova/carbonova-backend/internal/repositories/mongodb"
	"github.com/carbonova/carbonova-backend/internal/services"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	mongodb "github.com/carbonova/carbonova-backend/pkg/mongodb"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Load the activity-type and voucher catalogs into MongoDB",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")

	root.AddCommand(
		&cobra.Command{
			Use:   "indexes",
			Short: "Create the collection indexes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDatabase(cmd.Context(), configPath, func(ctx context.Context, db *mongo.Database) error {
					return mongorepo.EnsureIndexes(ctx, db)
				})
			},
		},
		importCmd("activity-types", "Import activity types from a CSV file", &configPath,
			func(ctx context.Context, imp *importer.CSVImporter, f *os.File) (*importer.Result, error) {
				return imp.ImportActivityTypes(ctx, f)
			}),
		importCmd("vouchers", "Import vouchers from a CSV file", &configPath,
			func(ctx context.Context, imp *importer.CSVImporter, f *os.File) (*importer.Result, error) {
				return imp.ImportVouchers(ctx, f)
			}),
	)
	return root
}

type importFunc func(ctx context.Context, imp *importer.CSVImporter, f *os.File) (*importer.Result, error)

func importCmd(use, short string, configPath *string, run importFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open CSV file: %w", err)
			}
			defer file.Close()

			return withDatabase(cmd.Context(), *configPath, func(ctx context.Context, db *mongo.Database) error {
				catalog := services.NewCatalogService(
					mongorepo.NewActivityTypeRepository(db),
					mongorepo.NewVoucherRepository(db),
				)
				result, err := run(ctx, importer.NewCSVImporter(catalog), file)
				if err != nil {
					return err
				}

				for _, msg := range result.Errors {
					logger.Warn(msg)
				}
				logger.WithFields(logrus.Fields{
					"file":    args[0],
					"rows":    result.TotalRows,
					"created": result.Created,
					"failed":  len(result.Errors),
				}).Info("Import finished")
				return nil
			})
		},
	}
}

// withDatabase loads config, connects and runs fn against the configured database
func withDatabase(ctx context.Context, configPath string, fn func(ctx context.Context, db *mongo.Database) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return err
	}

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	return fn(ctx, client.Database(cfg.MongoDB.Database))
}
