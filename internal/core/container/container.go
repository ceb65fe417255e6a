package container

import (
	"database/sql"

	"stockroom/internal/batches"
	"stockroom/internal/ledger"
	"stockroom/internal/locations"
	"stockroom/internal/products"
	"stockroom/internal/repository"
	"stockroom/internal/serials"
	"stockroom/internal/stocktakes"
	"stockroom/internal/transfers"

	"go.uber.org/zap"
)

type Container struct {
	Repository       *repository.Repository
	LedgerService    *ledger.Service
	LedgerHandler    *ledger.Handler
	TransferHandler  *transfers.Handler
	BatchHandler     *batches.Handler
	SerialHandler    *serials.Handler
	StockTakeHandler *stocktakes.Handler
	ProductHandler   *products.Handler
	LocationHandler  *locations.Handler
}

func NewAppContainer(db *sql.DB, log *zap.Logger) *Container {
	repo := repository.NewRepository(db)

	levelRepo := ledger.NewStockLevelRepository(repo)
	eventRepo := ledger.NewEventRepository(repo)
	ledgerService := ledger.NewService(repo, levelRepo, eventRepo, log)
	ledgerHandler := ledger.NewHandler(ledgerService)

	transferRepo := transfers.NewRepository(repo)
	transferService := transfers.NewService(repo, transferRepo, ledgerService, log)
	transferHandler := transfers.NewHandler(transferService)

	batchRepo := batches.NewRepository(repo)
	batchService := batches.NewService(repo, batchRepo, ledgerService, log)
	batchHandler := batches.NewHandler(batchService)

	serialRepo := serials.NewRepository(repo)
	serialService := serials.NewService(repo, serialRepo, log)
	serialHandler := serials.NewHandler(serialService)

	stockTakeRepo := stocktakes.NewRepository(repo)
	stockTakeService := stocktakes.NewService(repo, stockTakeRepo, ledgerService, log)
	stockTakeHandler := stocktakes.NewHandler(stockTakeService)

	productRepo := products.NewRepository(repo)
	productHandler := products.NewHandler(productRepo)

	locationRepo := locations.NewLocationRepository(repo)
	locationHandler := locations.NewHandler(locationRepo)

	return &Container{
		Repository:       repo,
		LedgerService:    ledgerService,
		LedgerHandler:    ledgerHandler,
		TransferHandler:  transferHandler,
		BatchHandler:     batchHandler,
		SerialHandler:    serialHandler,
		StockTakeHandler: stockTakeHandler,
		ProductHandler:   productHandler,
		LocationHandler:  locationHandler,
	}
}
