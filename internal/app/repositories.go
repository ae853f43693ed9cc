package app

import (
	"context"
	"fmt"
	"os"

	"github.com/riskibarqy/ground-setup/internal/config"
	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
	"github.com/riskibarqy/ground-setup/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/ground-setup/internal/infrastructure/repository/sheetstore"
	"github.com/riskibarqy/ground-setup/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
)

const memoryRunHistory = 200

type repositories struct {
	fixtures fixture.Repository
	rosters  roster.Repository
	views    groundview.Repository
	runs     syncrun.Repository
	close    func() error
}

func openRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return repositories{
			fixtures: memory.NewFixtureRepository(nil),
			rosters:  memory.NewRosterRepository(nil),
			views:    memory.NewGroundViewRepository(),
			runs:     memory.NewSyncRunRepository(memoryRunHistory),
		}, nil
	case config.StorePostgres, config.StoreSQLite:
		db, err := openDatabase(cfg)
		if err != nil {
			return repositories{}, err
		}
		logger.Info("sql store opened", "driver", db.DriverName())
		return repositories{
			fixtures: sqlstore.NewFixtureRepository(db),
			rosters:  sqlstore.NewRosterRepository(db),
			views:    sqlstore.NewGroundViewRepository(db, cfg.Location),
			runs:     sqlstore.NewSyncRunRepository(db),
			close:    db.Close,
		}, nil
	case config.StoreSheets:
		return openSheetsRepositories(ctx, cfg, logger)
	default:
		return repositories{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store)
	}
}

// Sync runs are not kept in the spreadsheet; a sheets deployment keeps
// its run history in memory.
func openSheetsRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var credentials []byte
	if cfg.SheetsCredentialsFile != "" {
		raw, err := os.ReadFile(cfg.SheetsCredentialsFile)
		if err != nil {
			return repositories{}, fmt.Errorf("read SHEETS_CREDENTIALS_FILE: %w", err)
		}
		credentials = raw
	}

	svc, err := sheetstore.NewService(ctx, credentials)
	if err != nil {
		return repositories{}, err
	}
	store, err := sheetstore.New(svc, sheetstore.Config{
		SpreadsheetID:   cfg.SheetsSpreadsheetID,
		FixturesSheet:   cfg.FixturesSheet,
		TeamsSheet:      cfg.TeamsSheet,
		ContactFormulas: cfg.SheetsContactFormulas,
		Location:        cfg.Location,
	}, logger)
	if err != nil {
		return repositories{}, err
	}

	return repositories{
		fixtures: store.Fixtures(),
		rosters:  store.Roster(),
		views:    store.GroundViews(),
		runs:     memory.NewSyncRunRepository(memoryRunHistory),
	}, nil
}
