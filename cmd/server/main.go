package main

import (
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chessai-backend/internal/config"
	"github.com/benbeisheim/chessai-backend/internal/controller"
	"github.com/benbeisheim/chessai-backend/internal/middleware"
	"github.com/benbeisheim/chessai-backend/internal/search"
	"github.com/benbeisheim/chessai-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := newLogger(cfg)

	// Initialize the application
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Output: log,
		Format: "${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(log))

	// Initialize services
	opts := []search.Option{search.WithTolerance(cfg.Tolerance)}
	if cfg.Seed != 0 {
		opts = append(opts, search.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}
	gameManager := service.NewGameManager(log, search.NewSearcher(opts...), cfg.MaxGames)
	gameService := service.NewGameService(gameManager, cfg.Difficulty, log)

	// Initialize controllers
	gameController := controller.NewGameController(gameService, log)
	wsController := controller.NewWebSocketController(gameService, log)
	controller.SetupRoutes(app, gameController, wsController, websocket.Config{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		Origins:         cfg.AllowedOrigins,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().
		Str("addr", cfg.Addr).
		Stringer("difficulty", cfg.Difficulty).
		Int("tolerance", cfg.Tolerance).
		Msg("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	gameManager.Wait()
}

func newLogger(cfg config.Config) zerolog.Logger {
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogPretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
