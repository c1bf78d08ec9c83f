package app

import (
	"context"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"github.com/AI-ML-Modelor/aa/internal/lock"
	"github.com/AI-ML-Modelor/aa/internal/logging"
	"github.com/AI-ML-Modelor/aa/internal/outbox"
	"github.com/AI-ML-Modelor/aa/internal/pairing"
	"github.com/AI-ML-Modelor/aa/internal/session"
	"github.com/AI-ML-Modelor/aa/internal/status"
	"github.com/AI-ML-Modelor/aa/internal/store"
	intsync "github.com/AI-ML-Modelor/aa/internal/sync"
	"github.com/AI-ML-Modelor/aa/internal/tui"
	"github.com/AI-ML-Modelor/aa/internal/tui/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
}

// Module returns the fx module for the client, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideRegistrar,
			provideSyncEngine,
			provideTransport,
			provideSender,
			provideViewModel,
			provideTUI,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	// The TUI owns the terminal; logs go to the session file only.
	return logging.NewFileOnly(session.LogPath(p.SessionName), p.SessionName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideRegistrar(db *store.DB, b *bus.Bus, logger *zap.Logger) *pairing.Registrar {
	return pairing.NewRegistrar(db, b, logger)
}

func provideSyncEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(db, b, logger)
}

func provideTransport(b *bus.Bus, logger *zap.Logger) outbox.PeerSender {
	return newLocalDelivery(b, logger)
}

func provideSender(db *store.DB, transport outbox.PeerSender, b *bus.Bus, logger *zap.Logger) *outbox.Sender {
	return outbox.NewSender(db, transport, b, logger)
}

func provideViewModel(db *store.DB, reg *pairing.Registrar, logger *zap.Logger) *model.ViewModel {
	return model.NewViewModel(db, reg, logger)
}

func provideTUI(p Params, vm *model.ViewModel, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(vm, machine, b, logger, p.SessionName)
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, app *tui.App, lk *lock.Lock, engine *intsync.Engine, sender *outbox.Sender, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Sync engine subscribes to peer.* bus events before anything
			// can publish them.
			engine.Start(context.Background())
			sender.Start(context.Background())

			go func() {
				if err := app.Run(); err != nil {
					logger.Error("tui error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			app.Stop()
			sender.Stop()
			engine.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
