package app

import (
	"fmt"

	"github.com/allisson/sealedrecords/internal/database"
	recordsHTTP "github.com/allisson/sealedrecords/internal/records/http"
	recordsRepository "github.com/allisson/sealedrecords/internal/records/repository"
	recordsUseCase "github.com/allisson/sealedrecords/internal/records/usecase"
)

type recordComponents struct {
	recordRepository lazy[recordsUseCase.RecordRepository]
	recordUseCase    lazy[recordsUseCase.RecordUseCase]
	recordHandler    lazy[*recordsHTTP.RecordHandler]
}

// RecordRepository returns the record repository for the configured database driver.
func (c *Container) RecordRepository() (recordsUseCase.RecordRepository, error) {
	return c.recordRepository.get(func() (recordsUseCase.RecordRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for record repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverPostgres:
			return recordsRepository.NewPostgreSQLRecordRepository(db), nil
		case database.DriverMySQL:
			return recordsRepository.NewMySQLRecordRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// RecordUseCase returns the record use case wrapped with business metrics.
func (c *Container) RecordUseCase() (recordsUseCase.RecordUseCase, error) {
	return c.recordUseCase.get(func() (recordsUseCase.RecordUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for record use case: %w", err)
		}

		recordRepo, err := c.RecordRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get record repository for record use case: %w", err)
		}

		envelope, err := c.Envelope()
		if err != nil {
			return nil, err
		}

		registry, err := c.MasterKeyRegistry()
		if err != nil {
			return nil, err
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := recordsUseCase.NewRecordUseCase(
			txManager,
			recordRepo,
			envelope,
			registry,
			c.config.RewrapConcurrency,
			c.Logger(),
		)
		return recordsUseCase.NewRecordUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// RecordHandler returns the record HTTP handler.
func (c *Container) RecordHandler() (*recordsHTTP.RecordHandler, error) {
	return c.recordHandler.get(func() (*recordsHTTP.RecordHandler, error) {
		useCase, err := c.RecordUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get record use case for record handler: %w", err)
		}
		return recordsHTTP.NewRecordHandler(useCase, c.Logger()), nil
	})
}
