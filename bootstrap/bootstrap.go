package bootstrap

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MiniBase/internal/application/service"
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/config"
	"MiniBase/internal/platform/logging"
	"MiniBase/internal/platform/messaging/zeromq/publisher"
	"MiniBase/internal/platform/repository"
	"MiniBase/internal/platform/server"
	"MiniBase/internal/platform/server/handler/health"
	"MiniBase/internal/platform/server/handler/index"
	"MiniBase/internal/platform/server/handler/table"
	"MiniBase/internal/platform/storage"
	"MiniBase/internal/platform/wal"

	"github.com/phuslu/log"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func Run() (bool, error) {
	container := dig.New()
	serviceConstructors := []interface{}{
		config.LoadConfig,
		logger,
		transactionLog,
		eventPublisher,
		transactionManager,
		env,
		repository.NewCatalog,
		service.NewCreateTableService,
		service.NewListTablesService,
		service.NewDropTableService,
		service.NewDropAllTablesService,
		service.NewGetFieldsService,
		service.NewGetRecordsService,
		service.NewInsertRecordService,
		service.NewUpdateRecordService,
		service.NewDeleteRecordService,
		service.NewTableTransactionService,
		service.NewCreateIndexService,
		service.NewSearchIndexService,
		health.NewHealthHandler,
		table.NewTableHandler,
		index.NewIndexHandler,
		server.NewServer,
	}
	for _, service := range serviceConstructors {
		if err := container.Provide(service); err != nil {
			return false, err
		}
	}
	err := container.Invoke(func(s *server.Server,
		catalog *repository.Catalog,
		txLog *wal.Log,
		events domain.TransactionEventPublisher,
		logger log.Logger) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(s.Run)
		g.Go(func() error {
			<-ctx.Done()
			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return s.Shutdown(shutdownCtx)
		})
		runErr := g.Wait()

		errs := []error{runErr, catalog.Close(), txLog.Close()}
		if c, ok := events.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func logger(cfg config.Config) log.Logger {
	return logging.NewLogger(cfg.LogLevel)
}

func transactionLog(cfg config.Config, logger log.Logger) (*wal.Log, error) {
	return wal.Open(cfg.WalDirectory, cfg.BlockSize, logger)
}

// eventPublisher broadcasts transaction events over ZeroMQ when an endpoint is configured.
func eventPublisher(cfg config.Config, logger log.Logger) (domain.TransactionEventPublisher, error) {
	if cfg.TxnEventsEndpoint == "" {
		return domain.NoopEventPublisher{}, nil
	}
	return publisher.NewZeroMQTransactionPublisher(cfg.TxnEventsEndpoint, cfg.InstanceId, logger)
}

func transactionManager(txLog *wal.Log, events domain.TransactionEventPublisher, logger log.Logger) (*domain.TransactionManager, error) {
	return domain.NewTransactionManager(txLog, events, logger)
}

func env(cfg config.Config, tm *domain.TransactionManager, logger log.Logger) *storage.Env {
	return &storage.Env{
		DataDirectory: cfg.DataDirectory,
		BlockSize:     cfg.BlockSize,
		Transactions:  tm,
		Logger:        logger,
	}
}
