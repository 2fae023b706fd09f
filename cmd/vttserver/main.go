// Command vttserver is the process entrypoint: it loads config, connects
// to Postgres and runs migrations, loads the scene template store, starts
// the game registry, and accepts client connections over the TCP wire
// protocol, in the startup order the teacher's cmd/l1jgo/main.go follows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/owenfeik/vttserver/internal/config"
	"github.com/owenfeik/vttserver/internal/core/event"
	"github.com/owenfeik/vttserver/internal/game"
	"github.com/owenfeik/vttserver/internal/netsrv"
	"github.com/owenfeik/vttserver/internal/persist"
	"github.com/owenfeik/vttserver/internal/scenetemplate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              vttserver  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      realtime collaborative scene sync    \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("VTTSERVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	printSection("Database")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("connected to postgres")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	printSection("Scene templates")
	templates, err := scenetemplate.Load(cfg.Scenes.TemplateDir, uint32(cfg.Scenes.DefaultGridW), uint32(cfg.Scenes.DefaultGridH))
	if err != nil {
		return fmt.Errorf("scene templates: %w", err)
	}
	printOK(fmt.Sprintf("%d template(s) loaded from %s", templates.Count(), cfg.Scenes.TemplateDir))
	fmt.Println()

	printSection("Game registry")
	repo := persist.NewProjectRepo(db)
	registry := game.NewRegistry(repo, log)
	event.Subscribe(registry.Events(), func(e event.GameSaved) {
		log.Debug("game saved", zap.String("game", e.Key))
	})
	event.Subscribe(registry.Events(), func(e event.GameDied) {
		log.Info("game ended", zap.String("game", e.Key))
	})
	printOK("registry ready")
	fmt.Println()

	printSection("Listener")
	srv, err := netsrv.NewServer(cfg.Server.BindAddress, cfg.Server.InQueueSize, cfg.Server.OutQueueSize, log)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go srv.AcceptLoop()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	stopPump := make(chan struct{})

	go pumpSessions(srv, registry, log, stopPump)

	printSection("Ready")
	printReady(fmt.Sprintf("listening on %s", srv.Addr().String()))
	fmt.Println()

	sig := <-shutdownCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))
	close(stopPump)
	srv.Shutdown()
	registry.Shutdown()
	log.Info("server stopped")
	return nil
}

// pumpSessions demuxes accepted sessions to their named game and, for each,
// forwards InQueue traffic into GameServer.Submit until the session closes,
// the teacher's accept-loop-feeds-per-session-goroutine pattern retargeted
// from world packet handling to per-game message submission.
func pumpSessions(srv *netsrv.Server, registry *game.Registry, log *zap.Logger, stop <-chan struct{}) {
	for {
		select {
		case sess := <-srv.NewSessions():
			gs, ok := registry.Get(game.GameKey(sess.GameKey))
			if !ok || !gs.ConnectClient(game.ClientKey(sess.ClientKey), sess) {
				log.Warn("rejecting session for unknown game or client key", zap.String("game", sess.GameKey))
				sess.Close()
				continue
			}
			go pumpSession(gs, game.ClientKey(sess.ClientKey), sess, srv)
		case id := <-srv.DeadSessions():
			log.Debug("session disconnected", zap.Uint64("session", id))
		case <-stop:
			return
		}
	}
}

func pumpSession(gs *game.GameServer, key game.ClientKey, sess *netsrv.Session, srv *netsrv.Server) {
	defer func() {
		gs.DropClient(key)
		srv.NotifyDead(sess.ID)
	}()
	for {
		select {
		case msg := <-sess.InQueue:
			gs.Submit(key, msg)
		case <-sess.Done():
			return
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
