package variants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/greendigit-eu/cnr-sql-adapter/internal/core"
)

func init() {
	core.Register(core.DetailDefinition{
		Type:   core.SiteGrid,
		Table:  "detail_grid",
		Decode: decodeGridDetail,
		Insert: insertGridDetail,
		Fetch:  fetchGridDetail,
	})
}

// GridDetail is the detail payload for grid sites.
// Default: cpunormalizationfactor 1.0; everything else is nullable.
type GridDetail struct {
	WallClockTimeS         *int64   `json:"wallclocktime_s"`
	CPUNormalizationFactor *float64 `json:"cpunormalizationfactor"`
	NCores                 *int64   `json:"ncores"`
	NormCPUTimeS           *int64   `json:"normcputime_s"`
	Efficiency             *float64 `json:"efficiency"`
	TDPW                   *int64   `json:"tdp_w"`
	TotalCPUTimeS          *int64   `json:"totalcputime_s"`
	ScaledCPUTimeS         *int64   `json:"scaledcputime_s"`
}

// GridDetailRow is a stored detail_grid row.
type GridDetailRow struct {
	EventID    int64  `json:"event_id"`
	SiteID     int64  `json:"site_id"`
	ExecUnitID string `json:"execunitid"`
	GridDetail
}

func decodeGridDetail(raw json.RawMessage) (any, error) {
	var d GridDetail
	if err := decodeDetail(raw, &d); err != nil {
		return nil, err
	}
	if d.CPUNormalizationFactor == nil {
		d.CPUNormalizationFactor = ptr(1.0)
	}
	return &d, nil
}

func insertGridDetail(ctx context.Context, db core.DBTX, siteID, eventID int64, execUnitID string, payload any) error {
	d, ok := payload.(*GridDetail)
	if !ok {
		return fmt.Errorf("grid detail: unexpected payload type %T", payload)
	}
	_, err := db.Exec(ctx,
		`INSERT INTO monitoring.detail_grid
		 (site_id, event_id, execunitid, wallclocktime_s, cpunormalizationfactor, ncores, normcputime_s,
		  efficiency, tdp_w, totalcputime_s, scaledcputime_s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		siteID, eventID, execUnitID,
		d.WallClockTimeS, d.CPUNormalizationFactor, d.NCores, d.NormCPUTimeS,
		d.Efficiency, d.TDPW, d.TotalCPUTimeS, d.ScaledCPUTimeS,
	)
	if err != nil {
		return fmt.Errorf("insert grid detail for event %d: %w", eventID, err)
	}
	return nil
}

func fetchGridDetail(ctx context.Context, db core.DBTX, eventID int64) (any, error) {
	var row GridDetailRow
	err := db.QueryRow(ctx,
		`SELECT event_id, site_id, execunitid, wallclocktime_s, cpunormalizationfactor, ncores, normcputime_s,
		        efficiency, tdp_w, totalcputime_s, scaledcputime_s
		 FROM monitoring.detail_grid
		 WHERE event_id = $1`,
		eventID,
	).Scan(
		&row.EventID, &row.SiteID, &row.ExecUnitID,
		&row.WallClockTimeS, &row.CPUNormalizationFactor, &row.NCores, &row.NormCPUTimeS,
		&row.Efficiency, &row.TDPW, &row.TotalCPUTimeS, &row.ScaledCPUTimeS,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("grid detail for event %d: %w", eventID, core.ErrDetailMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch grid detail for event %d: %w", eventID, err)
	}
	return &row, nil
}
