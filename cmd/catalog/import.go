package main

import (
	"fmt"
	"os"

	"github.com/DRSN-tech/beauty-backend/internal/cfg"
	"github.com/DRSN-tech/beauty-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/beauty-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/beauty-backend/internal/repository/xlsx"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/postgres"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	importFile       string
	importPrune      bool
	importMigrations string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a catalog workbook into PostgreSQL in one transaction",
	Long: "Reads the workbook, applies migrations and upserts every product by (category, brand, name). " +
		"Connection settings come from POSTGRES_* environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		products, err := xlsx.NewReader(log).Load(importFile)
		if err != nil {
			return err
		}

		dbCfg, err := cfg.LoadPGDBCfg(log)
		if err != nil {
			return err
		}
		db, err := postgres.Connect(ctx, dbCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.RunMigrations(log, importMigrations); err != nil {
			return err
		}

		bar := progressbar.NewOptions(len(products),
			progressbar.OptionSetDescription("Importing catalog"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		uc := usecase.NewCatalogImportUC(pgdb.NewProductRepo(db.Pool, converter.NewProductConverterImpl()), db.Pool, log)
		res, err := uc.Import(ctx, usecase.NewImportCatalogReq(products, importPrune, func(n int) { _ = bar.Add(n) }))
		_ = bar.Finish()
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d products: inserted=%d updated=%d unchanged=%d deleted=%d\n",
			len(products), res.Inserted, res.Updated, res.Unchanged, res.Deleted)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "data/Make-Up Recommendation.xlsx", "Catalog workbook path")
	importCmd.Flags().BoolVar(&importPrune, "prune", false, "Delete products that are not in the workbook")
	importCmd.Flags().StringVar(&importMigrations, "migrations", postgres.DefaultMigrationsURL, "Migrations source URL")
	rootCmd.AddCommand(importCmd)
}
