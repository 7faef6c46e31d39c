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
		Type:   core.SiteNetwork,
		Table:  "detail_network",
		Decode: decodeNetworkDetail,
		Insert: insertNetworkDetail,
		Fetch:  fetchNetworkDetail,
	})
}

// NetworkDetail is the detail payload for network sites. All fields are
// nullable with no defaults.
type NetworkDetail struct {
	AmountOfDataTransferred *int64  `json:"amountofdatatransferred"`
	NetworkType             *string `json:"networktype"`
	MeasurementType         *string `json:"measurementtype"`
	DestinationExecUnitID   *string `json:"destinationexecunitid"`
}

// NetworkDetailRow is a stored detail_network row.
type NetworkDetailRow struct {
	EventID    int64  `json:"event_id"`
	SiteID     int64  `json:"site_id"`
	ExecUnitID string `json:"execunitid"`
	NetworkDetail
}

func decodeNetworkDetail(raw json.RawMessage) (any, error) {
	var d NetworkDetail
	if err := decodeDetail(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func insertNetworkDetail(ctx context.Context, db core.DBTX, siteID, eventID int64, execUnitID string, payload any) error {
	d, ok := payload.(*NetworkDetail)
	if !ok {
		return fmt.Errorf("network detail: unexpected payload type %T", payload)
	}
	_, err := db.Exec(ctx,
		`INSERT INTO monitoring.detail_network
		 (site_id, event_id, execunitid, amountofdatatransferred, networktype, measurementtype, destinationexecunitid)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		siteID, eventID, execUnitID,
		d.AmountOfDataTransferred, d.NetworkType, d.MeasurementType, d.DestinationExecUnitID,
	)
	if err != nil {
		return fmt.Errorf("insert network detail for event %d: %w", eventID, err)
	}
	return nil
}

func fetchNetworkDetail(ctx context.Context, db core.DBTX, eventID int64) (any, error) {
	var row NetworkDetailRow
	err := db.QueryRow(ctx,
		`SELECT event_id, site_id, execunitid, amountofdatatransferred, networktype, measurementtype, destinationexecunitid
		 FROM monitoring.detail_network
		 WHERE event_id = $1`,
		eventID,
	).Scan(
		&row.EventID, &row.SiteID, &row.ExecUnitID,
		&row.AmountOfDataTransferred, &row.NetworkType, &row.MeasurementType, &row.DestinationExecUnitID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("network detail for event %d: %w", eventID, core.ErrDetailMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch network detail for event %d: %w", eventID, err)
	}
	return &row, nil
}
