package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/yungbote/pdataviewer-backend/internal/data/db"
	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	"github.com/yungbote/pdataviewer-backend/internal/modules/importer"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
	"github.com/yungbote/pdataviewer-backend/internal/services"
)

var mainCmd = &cobra.Command{
	Use: "cdmctl",

	Short: "Imports cohort data and inspects the common data model without the HTTP API.",

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use: "version",

	Short: "Prints the version of the program.",

	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", services.Version)
	},
}

// stack is the store-backed part of the service graph the commands share.
type stack struct {
	log      *logger.Logger
	db       *gorm.DB
	importer *importer.Importer
	catalog  services.CatalogService
	viz      services.VisualizationService
	picker   services.StudyPickerService
	auth     services.AuthService
	database services.DatabaseService
}

func dbConfig() db.Config {
	return db.Config{
		Driver:           viper.GetString("db.driver"),
		PostgresHost:     viper.GetString("postgres.host"),
		PostgresPort:     viper.GetString("postgres.port"),
		PostgresUser:     viper.GetString("postgres.user"),
		PostgresPassword: viper.GetString("postgres.password"),
		PostgresName:     viper.GetString("postgres.name"),
		PostgresSSLMode:  viper.GetString("postgres.sslmode"),
		SQLitePath:       viper.GetString("sqlite.path"),
		MaxOpenConns:     4,
		MaxIdleConns:     2,
	}
}

func openStack() (*stack, error) {
	log, err := logger.New(viper.GetString("log.mode"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	theDB, err := db.Open(log, dbConfig())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return newStack(log, theDB), nil
}

func newStack(log *logger.Logger, theDB *gorm.DB) *stack {
	cohorts := repos.NewCohortRepo(theDB, log)
	concepts := repos.NewConceptRepo(theDB, log)
	mappings := repos.NewMappingRepo(theDB, log)
	longitudinal := repos.NewLongitudinalRepo(theDB, log)
	biomarkers := repos.NewBiomarkerRepo(theDB, log)
	return &stack{
		log: log,
		db:  theDB,
		importer: importer.New(importer.Deps{
			Log:          log,
			Tx:           repos.NewGormTxRunner(theDB),
			Cohorts:      cohorts,
			Concepts:     concepts,
			Mappings:     mappings,
			Longitudinal: longitudinal,
			Biomarkers:   biomarkers,
		}),
		catalog:  services.NewCatalogService(log, cohorts, concepts, mappings, longitudinal, biomarkers, nil),
		viz:      services.NewVisualizationService(log, cohorts, concepts, mappings, nil),
		picker:   services.NewStudyPickerService(log, cohorts, concepts, mappings),
		auth:     services.NewAuthService(log, repos.NewUserRepo(theDB, log)),
		database: services.NewDatabaseService(theDB, log, nil),
	}
}

func (s *stack) close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	s.log.Sync()
}

func init() {
	flags := mainCmd.PersistentFlags()

	flags.String("driver", "sqlite", "Database driver: sqlite or postgres.")
	flags.String("sqlite", "pdataviewer.db", "SQLite database file.")
	flags.String("pg-host", "localhost", "Postgres host.")
	flags.String("pg-port", "5432", "Postgres port.")
	flags.String("pg-user", "postgres", "Postgres user.")
	flags.String("pg-password", "", "Postgres password.")
	flags.String("pg-name", "pdataviewer", "Postgres database name.")
	flags.String("pg-sslmode", "disable", "Postgres sslmode.")
	flags.String("log-mode", "production", "Logger mode: development, production or test.")

	viper.BindPFlag("db.driver", flags.Lookup("driver"))
	viper.BindPFlag("sqlite.path", flags.Lookup("sqlite"))
	viper.BindPFlag("postgres.host", flags.Lookup("pg-host"))
	viper.BindPFlag("postgres.port", flags.Lookup("pg-port"))
	viper.BindPFlag("postgres.user", flags.Lookup("pg-user"))
	viper.BindPFlag("postgres.password", flags.Lookup("pg-password"))
	viper.BindPFlag("postgres.name", flags.Lookup("pg-name"))
	viper.BindPFlag("postgres.sslmode", flags.Lookup("pg-sslmode"))
	viper.BindPFlag("log.mode", flags.Lookup("log-mode"))

	// DB_DRIVER, SQLITE_PATH, POSTGRES_HOST, ... as for the server.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func main() {
	mainCmd.AddCommand(versionCmd)
	mainCmd.AddCommand(importCmd)
	mainCmd.AddCommand(cdmCmd)
	mainCmd.AddCommand(chordsCmd)
	mainCmd.AddCommand(rankCmd)
	mainCmd.AddCommand(clearCmd)
	mainCmd.AddCommand(userCmd)

	if err := mainCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
