package core

// service.go is the transaction coordinator. Each create or delete unit of
// work runs inside exactly one pool transaction: either every row of the
// fact/detail pair commits, or none does. The run* functions hold the step
// sequencing and are pure over DBTX so they can be exercised without a
// pool.

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greendigit-eu/cnr-sql-adapter/internal/logging"
)

// Service provides the event-recording operations over a shared connection
// pool. All shared state lives in the backing store; the Service itself is
// safe for concurrent use.
type Service struct {
	pool *pgxpool.Pool
}

// NewService creates a Service backed by pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// inTx runs fn inside one transaction. The deferred rollback is a no-op
// after a successful commit, so every failure path leaves no visible
// partial state and the connection is released on every exit path.
func (s *Service) inTx(ctx context.Context, fn func(db DBTX) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Ingest records one submitted event: it resolves or creates the site,
// inserts the fact row and its matching detail row, all in one transaction.
// The envelope and detail block are validated before any write.
func (s *Service) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	siteType, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	def, ok := GetDefinition(siteType)
	if !ok {
		return nil, &UnsupportedSiteTypeError{Value: req.SiteType}
	}
	detail, err := def.Decode(req.Detail)
	if err != nil {
		return nil, err
	}

	ingestID := uuid.New().String()
	log := logging.WithFields(ctx, "ingest_id", ingestID, "site_type", siteType.String())

	var result IngestResult
	err = s.inTx(ctx, func(db DBTX) error {
		return runIngest(ctx, db, siteType, req, detail, &result)
	})
	if err != nil {
		log.Error("ingest failed", "error", err)
		return nil, err
	}

	log.Info("event recorded",
		"event_id", result.EventID,
		"site_id", result.SiteID,
		"detail_table", result.DetailTable,
	)
	return &result, nil
}

// runIngest executes the create path on db: ensure mapping, resolve site,
// insert fact, insert detail. Any step's failure aborts the whole unit.
func runIngest(ctx context.Context, db DBTX, siteType SiteType, req *IngestRequest, detail any, result *IngestResult) error {
	store := NewStore(db)

	detailTable, err := store.EnsureSiteTypeMapping(ctx, siteType)
	if err != nil {
		return err
	}

	siteID, err := store.UpsertSite(ctx, siteType, req.SiteDescription)
	if err != nil {
		return err
	}

	eventID, err := store.InsertFactEvent(ctx, siteID, &req.Fact)
	if err != nil {
		return err
	}

	if err := store.InsertDetail(ctx, siteType, siteID, eventID, req.Fact.ExecUnitID, detail); err != nil {
		return err
	}

	result.EventID = eventID
	result.SiteID = siteID
	result.DetailTable = detailTable
	return nil
}

// GetEvent returns the fact and detail rows for one event.
// Fails with ErrEventNotFound for an unknown id, and with ErrDetailMissing
// when the fact row exists but its detail row does not.
func (s *Service) GetEvent(ctx context.Context, eventID int64) (*EventRecord, error) {
	store := NewStore(s.pool)
	return runGet(ctx, store, eventID)
}

// runGet executes the read path: locate, fetch fact joined with site,
// fetch detail from the located table.
func runGet(ctx context.Context, store *Store, eventID int64) (*EventRecord, error) {
	siteType, detailTable, err := store.LocateEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	fact, err := store.FetchFactEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	detail, err := store.FetchDetail(ctx, siteType, eventID)
	if err != nil {
		return nil, err
	}

	return &EventRecord{
		EventID:     eventID,
		SiteType:    siteType.String(),
		DetailTable: detailTable,
		Fact:        fact,
		Detail:      detail,
	}, nil
}

// DeleteEvent removes one event's detail and fact rows in one transaction,
// detail row first. Fails with ErrEventNotFound before any delete is
// attempted when the event does not exist.
func (s *Service) DeleteEvent(ctx context.Context, eventID int64) (*DeleteResult, error) {
	var result DeleteResult
	err := s.inTx(ctx, func(db DBTX) error {
		return runDelete(ctx, db, eventID, &result)
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("event deleted",
		"event_id", result.EventID,
		"site_type", result.SiteType,
	)
	return &result, nil
}

// runDelete executes the delete path: locate, delete detail, delete fact.
// Order is mandatory; detail rows reference the fact row.
func runDelete(ctx context.Context, db DBTX, eventID int64, result *DeleteResult) error {
	store := NewStore(db)

	siteType, detailTable, err := store.LocateEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if _, err := store.DeleteDetail(ctx, detailTable, eventID); err != nil {
		return err
	}
	if err := store.DeleteFactEvent(ctx, eventID); err != nil {
		return err
	}

	result.EventID = eventID
	result.SiteType = siteType.String()
	return nil
}
