package core

// store.go holds the SQL for the monitoring schema. All methods take effect
// on the DBTX they were constructed with, so the same code runs inside a
// transaction (create/delete paths) or directly on the pool (read path).
//
// Column names and ordering match the deployed schema exactly; any existing
// stored data must remain readable.

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Store executes the monitoring-schema SQL on a single DBTX.
type Store struct {
	db DBTX
}

// NewStore creates a Store bound to db, which may be a pool or an open
// transaction.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSiteTypeMapping idempotently persists the site-type to detail-table
// mapping row for t and returns the detail table name. Fails with an
// *UnsupportedSiteTypeError for a type with no registered variant.
func (s *Store) EnsureSiteTypeMapping(ctx context.Context, t SiteType) (string, error) {
	def, ok := GetDefinition(t)
	if !ok {
		return "", &UnsupportedSiteTypeError{Value: string(t)}
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO monitoring.site_type_detail (site_type, detail_table_name)
		 VALUES ($1::monitoring.site_type, $2)
		 ON CONFLICT (site_type) DO NOTHING`,
		string(t), def.Table,
	)
	if err != nil {
		return "", fmt.Errorf("ensure site_type mapping for %s: %w", t, err)
	}
	return def.Table, nil
}

// UpsertSite resolves (site_type, description) to a site id, creating the
// site on first use. The insert-on-conflict form keeps concurrent identical
// submissions from producing two rows; the no-op update makes RETURNING
// yield the existing id on conflict.
func (s *Store) UpsertSite(ctx context.Context, t SiteType, description string) (int64, error) {
	var siteID int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO monitoring.sites (site_type, description)
		 VALUES ($1::monitoring.site_type, $2)
		 ON CONFLICT (site_type, description) DO UPDATE SET description = EXCLUDED.description
		 RETURNING site_id`,
		string(t), description,
	).Scan(&siteID)
	if err != nil {
		return 0, fmt.Errorf("upsert site (%s, %q): %w", t, description, err)
	}
	return siteID, nil
}

// InsertFactEvent inserts one fact row bound to siteID and returns the
// store-assigned event id. The fact must have been normalized.
func (s *Store) InsertFactEvent(ctx context.Context, siteID int64, f *FactEvent) (int64, error) {
	var eventID int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO monitoring.fact_site_event
		 (site_id, event_start_timestamp, event_end_timestamp, job_finished, ci_g, cfp_g, pue, site,
		  energy_wh, work, startexectime, stopexectime, status, owner, execunitid, execunitfinished)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING event_id`,
		siteID, f.eventStart, f.eventEnd, f.JobFinished, f.CIg, f.CFPg, f.PUE, f.Site,
		f.EnergyWh, f.Work, f.startExec, f.stopExec, f.Status, f.Owner, f.ExecUnitID, f.ExecUnitFinished,
	).Scan(&eventID)
	if err != nil {
		return 0, fmt.Errorf("insert fact event: %w", err)
	}
	return eventID, nil
}

// InsertDetail writes the detail row for eventID into the table of the
// variant registered for t.
func (s *Store) InsertDetail(ctx context.Context, t SiteType, siteID, eventID int64, execUnitID string, payload any) error {
	def, ok := GetDefinition(t)
	if !ok {
		return &UnsupportedSiteTypeError{Value: string(t)}
	}
	return def.Insert(ctx, s.db, siteID, eventID, execUnitID, payload)
}

// LocateEvent discovers which site type and detail table an event belongs
// to. It is the single source of truth for that mapping, shared by the read
// and delete paths. Fails with ErrEventNotFound if no fact row exists.
func (s *Store) LocateEvent(ctx context.Context, eventID int64) (SiteType, string, error) {
	var siteType, detailTable string
	err := s.db.QueryRow(ctx,
		`SELECT s.site_type::text, std.detail_table_name
		 FROM monitoring.fact_site_event f
		 JOIN monitoring.sites s ON s.site_id = f.site_id
		 JOIN monitoring.site_type_detail std ON std.site_type = s.site_type
		 WHERE f.event_id = $1`,
		eventID,
	).Scan(&siteType, &detailTable)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", fmt.Errorf("locate event %d: %w", eventID, ErrEventNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("locate event %d: %w", eventID, err)
	}
	return SiteType(siteType), detailTable, nil
}

// FetchFactEvent reads one fact row joined with its site's type and
// description. Fails with ErrEventNotFound if no fact row exists.
func (s *Store) FetchFactEvent(ctx context.Context, eventID int64) (*FactRecord, error) {
	var rec FactRecord
	err := s.db.QueryRow(ctx,
		`SELECT f.event_id, f.site_id, f.event_start_timestamp, f.event_end_timestamp,
		        f.job_finished, f.ci_g, f.cfp_g, f.pue, f.site, f.energy_wh, f.work,
		        f.startexectime, f.stopexectime, f.status, f.owner, f.execunitid, f.execunitfinished,
		        s.site_type::text, s.description
		 FROM monitoring.fact_site_event f
		 JOIN monitoring.sites s ON s.site_id = f.site_id
		 WHERE f.event_id = $1`,
		eventID,
	).Scan(
		&rec.EventID, &rec.SiteID, &rec.EventStartTimestamp, &rec.EventEndTimestamp,
		&rec.JobFinished, &rec.CIg, &rec.CFPg, &rec.PUE, &rec.Site, &rec.EnergyWh, &rec.Work,
		&rec.StartExecTime, &rec.StopExecTime, &rec.Status, &rec.Owner, &rec.ExecUnitID, &rec.ExecUnitFinished,
		&rec.SiteType, &rec.SiteDescription,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("fetch fact event %d: %w", eventID, ErrEventNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch fact event %d: %w", eventID, err)
	}
	return &rec, nil
}

// FetchDetail reads the detail row for eventID via the variant registered
// for t. Returns ErrDetailMissing (wrapped) if the row does not exist.
func (s *Store) FetchDetail(ctx context.Context, t SiteType, eventID int64) (any, error) {
	def, ok := GetDefinition(t)
	if !ok {
		return nil, &UnsupportedSiteTypeError{Value: string(t)}
	}
	return def.Fetch(ctx, s.db, eventID)
}

// DeleteDetail removes the detail row for eventID from table. The table
// name comes from the store's own mapping row, but is still checked against
// the registry before being interpolated into SQL.
func (s *Store) DeleteDetail(ctx context.Context, table string, eventID int64) (int64, error) {
	if !KnownTable(table) {
		return 0, fmt.Errorf("refusing delete from unknown detail table %q", table)
	}
	tag, err := s.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM monitoring.%s WHERE event_id = $1`, table),
		eventID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete detail %d from %s: %w", eventID, table, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteFactEvent removes the fact row for eventID. The detail row must be
// deleted first; detail rows reference the fact row.
func (s *Store) DeleteFactEvent(ctx context.Context, eventID int64) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM monitoring.fact_site_event WHERE event_id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("delete fact event %d: %w", eventID, err)
	}
	return nil
}
