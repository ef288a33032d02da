package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stemsi/ascent-backend/internal/config"
	"github.com/stemsi/ascent-backend/internal/database"
	"github.com/stemsi/ascent-backend/internal/logger"
	"github.com/stemsi/ascent-backend/internal/repository"
	"github.com/stemsi/ascent-backend/internal/seed"
	"github.com/stemsi/ascent-backend/internal/service"
)

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Load reference data into the Ascent database",
	SilenceUsage: true,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Upsert journeys and questions from a catalog file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		catalog, err := seed.DecodeCatalog(f)
		if err != nil {
			return err
		}

		return withDeps(cmd.Context(), func(ctx context.Context, d deps) error {
			journeys := repository.NewJourneyRepository(d.pool)
			questions := repository.NewQuestionRepository(d.pool)
			var cache seed.CacheInvalidator
			if d.catalog != nil {
				cache = d.catalog
			}
			return seed.Apply(ctx, catalog, journeys, questions, cache, d.log)
		})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Create or reset the demo student and admin accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentPw, _ := cmd.Flags().GetString("student-password")
		adminPw, _ := cmd.Flags().GetString("admin-password")

		return withDeps(cmd.Context(), func(ctx context.Context, d deps) error {
			auth := service.NewAuthService(d.cfg, nil, nil, d.log)
			users := service.NewUserService(repository.NewUserRepository(d.pool), auth, d.log)
			return seed.ApplyUsers(ctx, users, seed.DemoUsers(studentPw, adminPw), d.log)
		})
	},
}

type deps struct {
	cfg     *config.Config
	log     zerolog.Logger
	pool    *pgxpool.Pool
	catalog *service.CatalogService
}

// withDeps connects to PostgreSQL and, when reachable, Redis. A missing Redis
// only means the cached catalog is left to expire on its own.
func withDeps(parent context.Context, fn func(ctx context.Context, d deps) error) error {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(parent, 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	d := deps{cfg: cfg, log: log, pool: pool}

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, catalog cache will not be invalidated")
	} else {
		defer rdb.Close()
		d.catalog = service.NewCatalogService(
			repository.NewJourneyRepository(pool),
			repository.NewQuestionRepository(pool),
			rdb, cfg, log,
		)
	}

	return fn(ctx, d)
}

func init() {
	catalogCmd.Flags().String("file", "data/journeys.json", "Path to the catalog JSON file")
	usersCmd.Flags().String("student-password", "student123", "Password for student@example.com")
	usersCmd.Flags().String("admin-password", "admin123", "Password for admin@example.com")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(usersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
