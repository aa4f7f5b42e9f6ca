package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-admin/cache"
	"github.com/yeremiapane/restaurant-admin/config"
	"github.com/yeremiapane/restaurant-admin/controllers"
	"github.com/yeremiapane/restaurant-admin/events"
	"github.com/yeremiapane/restaurant-admin/hub"
	"github.com/yeremiapane/restaurant-admin/middlewares"
	"github.com/yeremiapane/restaurant-admin/models"
	"github.com/yeremiapane/restaurant-admin/router"
	"github.com/yeremiapane/restaurant-admin/services"
	"github.com/yeremiapane/restaurant-admin/store"
	"github.com/yeremiapane/restaurant-admin/utils"
)

func main() {
	utils.InitLogger()

	root := &cobra.Command{
		Use:           "restaurant-admin",
		Short:         "Restaurant admin dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var envFile string
	root.PersistentFlags().StringVar(&envFile, "env", "", "env file to load instead of .env")

	loadConfig := func() (config.Config, error) {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg, err := config.Load(files...)
		if err != nil {
			return cfg, err
		}
		utils.SetLevel(cfg.LogLevel)
		if cfg.JWTSecret == "" {
			utils.InfoLogger.Warnf("JWT_SECRET is not set, signing tokens with the development key (GIN_MODE=%s)", cfg.GinMode)
		}
		utils.SetJWTSecret(cfg.JWTSecret)
		return cfg, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, err = openDB(cfg)
			return err
		},
	})

	var seedPath string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a floor plan and admin user from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if seedPath == "" {
				seedPath = cfg.SeedFile
			}
			if seedPath == "" {
				return errors.New("no seed file: pass --file or set FLOORPLAN_SEED")
			}
			return seed(cmd.Context(), cfg, seedPath)
		},
	}
	seedCmd.Flags().StringVarP(&seedPath, "file", "f", "", "YAML seed file")
	root.AddCommand(seedCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		utils.ErrorLogger.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return db, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	var viewCache cache.ViewCache
	if client := config.NewRedisClient(cfg); client != nil {
		defer client.Close()
		viewCache = cache.NewRedisViewCache(client, "", cfg.CacheTTL)
		utils.InfoLogger.Printf("Floor plan view cache on redis %s", cfg.RedisAddr)
	}

	publisher, err := events.New(cfg.EventsDriver, cfg.AMQPURL, cfg.NATSURL)
	if err != nil {
		return err
	}
	defer publisher.Close()

	wsHub := hub.New(utils.InfoLogger)
	svc := services.NewFloorPlanService(services.FloorPlanDeps{
		Store:     store.NewFloorPlanStore(db),
		Hub:       wsHub,
		Publisher: publisher,
		Cache:     viewCache,
	})
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load floor plan: %w", err)
	}

	autosaver := services.NewAutosaver(svc, cfg.AutosaveInterval)
	autosaver.Start()
	defer autosaver.Stop()

	r := router.SetupRouter(router.Deps{
		DB:         db,
		FloorPlan:  svc,
		Hub:        wsHub,
		CORSOrigin: cfg.CORSOrigin,
		RateLimit:  middlewares.NewRateLimiter(50, 20*time.Millisecond).Exempt("/admin/floorplan/pointer"),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func seed(ctx context.Context, cfg config.Config, path string) error {
	file, err := config.LoadSeedFile(path)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	if len(file.Tables) > 0 {
		tables, err := file.FloorPlan(nil)
		if err != nil {
			return err
		}
		svc := services.NewFloorPlanService(services.FloorPlanDeps{Store: store.NewFloorPlanStore(db)})
		if err := svc.Seed(ctx, tables); err != nil {
			return fmt.Errorf("seed floor plan: %w", err)
		}
		utils.InfoLogger.Printf("Seeded %d tables", len(tables))
	}

	if file.Admin != nil {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", file.Admin.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("look up admin: %w", err)
		}
		if count > 0 {
			utils.InfoLogger.Printf("Admin %s already exists", file.Admin.Email)
			return nil
		}
		name := file.Admin.Name
		if name == "" {
			name = "Administrator"
		}
		if _, err := controllers.CreateUser(db, name, file.Admin.Email, file.Admin.Password, models.RoleAdmin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		utils.InfoLogger.Printf("Seeded admin %s", file.Admin.Email)
	}
	return nil
}
