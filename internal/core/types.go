package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// SiteType is the closed category of a monitored site. It determines which
// detail table an event's detail row is written to.
type SiteType string

const (
	SiteCloud   SiteType = "cloud"
	SiteNetwork SiteType = "network"
	SiteGrid    SiteType = "grid"
)

// ParseSiteType validates s against the closed enumeration.
// Returns an *UnsupportedSiteTypeError for anything else, including the
// empty string.
func ParseSiteType(s string) (SiteType, error) {
	switch SiteType(s) {
	case SiteCloud, SiteNetwork, SiteGrid:
		return SiteType(s), nil
	}
	return "", &UnsupportedSiteTypeError{Value: s}
}

func (t SiteType) String() string { return string(t) }

// IngestRequest is the submission envelope: which site the event belongs to,
// the type-agnostic fact block, and the raw type-specific detail block.
// The detail block is decoded by the variant registered for SiteType.
type IngestRequest struct {
	SiteType        string          `json:"site_type"`
	SiteDescription string          `json:"site_description"`
	Fact            FactEvent       `json:"fact"`
	Detail          json.RawMessage `json:"detail"`
}

// FactEvent is the type-agnostic core record of one observed event.
// Field names follow the submission contract; optional fields are pointers
// so absent values are stored as NULL rather than zero values.
type FactEvent struct {
	EventStartTimestamp string   `json:"event_start_timestamp"`
	EventEndTimestamp   string   `json:"event_end_timestamp"`
	JobFinished         *bool    `json:"job_finished"`
	CIg                 *int64   `json:"CI_g"`
	CFPg                *int64   `json:"CFP_g"`
	PUE                 *float64 `json:"PUE"`
	Site                *string  `json:"site"`
	EnergyWh            *float64 `json:"energy_wh"`
	Work                *float64 `json:"work"`
	StartExecTime       string   `json:"startexectime"`
	StopExecTime        string   `json:"stopexectime"`
	Status              *string  `json:"status"`
	Owner               *string  `json:"owner"`
	ExecUnitID          string   `json:"execunitid"`
	ExecUnitFinished    *bool    `json:"execunitfinished"`

	// Parsed timestamps, populated by Normalize.
	eventStart time.Time
	eventEnd   time.Time
	startExec  time.Time
	stopExec   time.Time
}

// FactRecord is a stored fact row joined with its site's type and
// description, as returned on the read path.
type FactRecord struct {
	EventID             int64     `json:"event_id"`
	SiteID              int64     `json:"site_id"`
	EventStartTimestamp time.Time `json:"event_start_timestamp"`
	EventEndTimestamp   time.Time `json:"event_end_timestamp"`
	JobFinished         bool      `json:"job_finished"`
	CIg                 *int64    `json:"CI_g"`
	CFPg                *int64    `json:"CFP_g"`
	PUE                 *float64  `json:"PUE"`
	Site                *string   `json:"site"`
	EnergyWh            *float64  `json:"energy_wh"`
	Work                *float64  `json:"work"`
	StartExecTime       time.Time `json:"startexectime"`
	StopExecTime        time.Time `json:"stopexectime"`
	Status              *string   `json:"status"`
	Owner               *string   `json:"owner"`
	ExecUnitID          string    `json:"execunitid"`
	ExecUnitFinished    bool      `json:"execunitfinished"`
	SiteType            string    `json:"site_type"`
	SiteDescription     string    `json:"site_description"`
}

// IngestResult identifies the rows created by one accepted submission.
type IngestResult struct {
	EventID     int64
	SiteID      int64
	DetailTable string
}

// EventRecord is the full read-path view of one event: the fact row plus
// the detail row from the table located for it.
type EventRecord struct {
	EventID     int64       `json:"event_id"`
	SiteType    string      `json:"site_type"`
	DetailTable string      `json:"detail_table"`
	Fact        *FactRecord `json:"fact"`
	Detail      any         `json:"detail"`
}

// DeleteResult reports a completed symmetric delete.
type DeleteResult struct {
	EventID  int64
	SiteType string
}
