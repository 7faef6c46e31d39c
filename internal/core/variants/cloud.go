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
		Type:   core.SiteCloud,
		Table:  "detail_cloud",
		Decode: decodeCloudDetail,
		Insert: insertCloudDetail,
		Fetch:  fetchCloudDetail,
	})
}

// CloudDetail is the detail payload for cloud sites.
// Defaults: suspendduration_s 0, cpunormalizationfactor 1.0,
// cloud_type "IaaS", compute_service "EC2".
type CloudDetail struct {
	WallClockTimeS         *int64   `json:"wallclocktime_s"`
	SuspendDurationS       *int64   `json:"suspendduration_s"`
	CPUDurationS           *int64   `json:"cpuduration_s"`
	CPUNormalizationFactor *float64 `json:"cpunormalizationfactor"`
	Efficiency             *float64 `json:"efficiency"`
	CloudType              *string  `json:"cloud_type"`
	ComputeService         *string  `json:"compute_service"`
}

// CloudDetailRow is a stored detail_cloud row.
type CloudDetailRow struct {
	EventID    int64  `json:"event_id"`
	SiteID     int64  `json:"site_id"`
	ExecUnitID string `json:"execunitid"`
	CloudDetail
}

func decodeCloudDetail(raw json.RawMessage) (any, error) {
	var d CloudDetail
	if err := decodeDetail(raw, &d); err != nil {
		return nil, err
	}
	if d.SuspendDurationS == nil {
		d.SuspendDurationS = ptr(int64(0))
	}
	if d.CPUNormalizationFactor == nil {
		d.CPUNormalizationFactor = ptr(1.0)
	}
	if d.CloudType == nil {
		d.CloudType = ptr("IaaS")
	}
	if d.ComputeService == nil {
		d.ComputeService = ptr("EC2")
	}
	return &d, nil
}

func insertCloudDetail(ctx context.Context, db core.DBTX, siteID, eventID int64, execUnitID string, payload any) error {
	d, ok := payload.(*CloudDetail)
	if !ok {
		return fmt.Errorf("cloud detail: unexpected payload type %T", payload)
	}
	_, err := db.Exec(ctx,
		`INSERT INTO monitoring.detail_cloud
		 (event_id, site_id, execunitid, wallclocktime_s, suspendduration_s, cpuduration_s,
		  cpunormalizationfactor, efficiency, cloud_type, compute_service)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		eventID, siteID, execUnitID,
		d.WallClockTimeS, d.SuspendDurationS, d.CPUDurationS,
		d.CPUNormalizationFactor, d.Efficiency, d.CloudType, d.ComputeService,
	)
	if err != nil {
		return fmt.Errorf("insert cloud detail for event %d: %w", eventID, err)
	}
	return nil
}

func fetchCloudDetail(ctx context.Context, db core.DBTX, eventID int64) (any, error) {
	var row CloudDetailRow
	err := db.QueryRow(ctx,
		`SELECT event_id, site_id, execunitid, wallclocktime_s, suspendduration_s, cpuduration_s,
		        cpunormalizationfactor, efficiency, cloud_type, compute_service
		 FROM monitoring.detail_cloud
		 WHERE event_id = $1`,
		eventID,
	).Scan(
		&row.EventID, &row.SiteID, &row.ExecUnitID,
		&row.WallClockTimeS, &row.SuspendDurationS, &row.CPUDurationS,
		&row.CPUNormalizationFactor, &row.Efficiency, &row.CloudType, &row.ComputeService,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cloud detail for event %d: %w", eventID, core.ErrDetailMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch cloud detail for event %d: %w", eventID, err)
	}
	return &row, nil
}
