package variants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/greendigit-eu/cnr-sql-adapter/internal/core"
)

// execRecorder is a DBTX that records Exec calls and scripts QueryRow.
type execRecorder struct {
	sql    string
	args   []any
	rowErr error
}

func (r *execRecorder) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	r.sql = sql
	r.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *execRecorder) Query(_ context.Context, sql string, _ ...interface{}) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected Query: %s", sql)
}

func (r *execRecorder) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	r.sql = sql
	r.args = args
	return scriptedRow{err: r.rowErr}
}

type scriptedRow struct {
	err error
}

func (r scriptedRow) Scan(dest ...any) error {
	return r.err
}

func TestRegistration(t *testing.T) {
	if got := core.Count(); got != 3 {
		t.Fatalf("registered variants = %d, want 3", got)
	}

	wantTables := map[core.SiteType]string{
		core.SiteCloud:   "detail_cloud",
		core.SiteNetwork: "detail_network",
		core.SiteGrid:    "detail_grid",
	}
	for siteType, table := range wantTables {
		def, ok := core.GetDefinition(siteType)
		if !ok {
			t.Errorf("GetDefinition(%s) not found", siteType)
			continue
		}
		if def.Table != table {
			t.Errorf("GetDefinition(%s).Table = %q, want %q", siteType, def.Table, table)
		}
		if !core.KnownTable(table) {
			t.Errorf("KnownTable(%q) = false, want true", table)
		}
	}
}

func TestDecodeCloudDetail_Defaults(t *testing.T) {
	got, err := decodeCloudDetail(json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("decodeCloudDetail() error = %v", err)
	}
	d := got.(*CloudDetail)

	if d.SuspendDurationS == nil || *d.SuspendDurationS != 0 {
		t.Errorf("SuspendDurationS = %v, want 0", d.SuspendDurationS)
	}
	if d.CPUNormalizationFactor == nil || *d.CPUNormalizationFactor != 1.0 {
		t.Errorf("CPUNormalizationFactor = %v, want 1.0", d.CPUNormalizationFactor)
	}
	if d.CloudType == nil || *d.CloudType != "IaaS" {
		t.Errorf("CloudType = %v, want IaaS", d.CloudType)
	}
	if d.ComputeService == nil || *d.ComputeService != "EC2" {
		t.Errorf("ComputeService = %v, want EC2", d.ComputeService)
	}
	// Fields without documented defaults stay null.
	if d.WallClockTimeS != nil || d.CPUDurationS != nil || d.Efficiency != nil {
		t.Error("fields without defaults should remain nil")
	}
}

func TestDecodeCloudDetail_ExplicitValues(t *testing.T) {
	raw := json.RawMessage(`{"wallclocktime_s": 3600, "efficiency": 0.9, "cloud_type": "PaaS"}`)
	got, err := decodeCloudDetail(raw)
	if err != nil {
		t.Fatalf("decodeCloudDetail() error = %v", err)
	}
	d := got.(*CloudDetail)

	if d.WallClockTimeS == nil || *d.WallClockTimeS != 3600 {
		t.Errorf("WallClockTimeS = %v, want 3600", d.WallClockTimeS)
	}
	if d.Efficiency == nil || *d.Efficiency != 0.9 {
		t.Errorf("Efficiency = %v, want 0.9", d.Efficiency)
	}
	if d.CloudType == nil || *d.CloudType != "PaaS" {
		t.Errorf("CloudType = %v, want PaaS (explicit value was overwritten)", d.CloudType)
	}
}

func TestDecodeGridDetail_Defaults(t *testing.T) {
	got, err := decodeGridDetail(json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("decodeGridDetail() error = %v", err)
	}
	d := got.(*GridDetail)

	if d.CPUNormalizationFactor == nil || *d.CPUNormalizationFactor != 1.0 {
		t.Errorf("CPUNormalizationFactor = %v, want 1.0", d.CPUNormalizationFactor)
	}
	if d.NCores != nil || d.TDPW != nil {
		t.Error("fields without defaults should remain nil")
	}
}

func TestDecodeNetworkDetail_NoDefaults(t *testing.T) {
	got, err := decodeNetworkDetail(json.RawMessage(`{"networktype": "LAN"}`))
	if err != nil {
		t.Fatalf("decodeNetworkDetail() error = %v", err)
	}
	d := got.(*NetworkDetail)

	if d.NetworkType == nil || *d.NetworkType != "LAN" {
		t.Errorf("NetworkType = %v, want LAN", d.NetworkType)
	}
	if d.AmountOfDataTransferred != nil || d.MeasurementType != nil || d.DestinationExecUnitID != nil {
		t.Error("absent fields should remain nil")
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  json.RawMessage
	}{
		{"missing block", nil},
		{"wrong field type", json.RawMessage(`{"wallclocktime_s": "lots"}`)},
		{"not an object", json.RawMessage(`[1,2,3]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCloudDetail(tt.raw)
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("decodeCloudDetail(%s) error = %v, want *ValidationError", tt.raw, err)
			}
		})
	}
}

func TestInsertCloudDetail_ColumnOrder(t *testing.T) {
	payload, err := decodeCloudDetail(json.RawMessage(`{"wallclocktime_s": 3600}`))
	if err != nil {
		t.Fatal(err)
	}

	db := &execRecorder{}
	if err := insertCloudDetail(context.Background(), db, 3, 9, "job-1", payload); err != nil {
		t.Fatalf("insertCloudDetail() error = %v", err)
	}

	if !strings.Contains(db.sql, "monitoring.detail_cloud") {
		t.Errorf("sql = %q, want detail_cloud insert", db.sql)
	}
	// Cloud rows lead with event_id; the first three args are the keys.
	if db.args[0] != int64(9) || db.args[1] != int64(3) || db.args[2] != "job-1" {
		t.Errorf("key args = %v, want [9 3 job-1]", db.args[:3])
	}
	if len(db.args) != 10 {
		t.Errorf("args = %d, want 10", len(db.args))
	}
}

func TestInsertNetworkDetail_ColumnOrder(t *testing.T) {
	payload, err := decodeNetworkDetail(json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	db := &execRecorder{}
	if err := insertNetworkDetail(context.Background(), db, 3, 9, "job-1", payload); err != nil {
		t.Fatalf("insertNetworkDetail() error = %v", err)
	}

	if !strings.Contains(db.sql, "monitoring.detail_network") {
		t.Errorf("sql = %q, want detail_network insert", db.sql)
	}
	// Network rows lead with site_id.
	if db.args[0] != int64(3) || db.args[1] != int64(9) || db.args[2] != "job-1" {
		t.Errorf("key args = %v, want [3 9 job-1]", db.args[:3])
	}
	if len(db.args) != 7 {
		t.Errorf("args = %d, want 7", len(db.args))
	}
}

func TestInsertGridDetail_ColumnOrder(t *testing.T) {
	payload, err := decodeGridDetail(json.RawMessage(`{"ncores": 16}`))
	if err != nil {
		t.Fatal(err)
	}

	db := &execRecorder{}
	if err := insertGridDetail(context.Background(), db, 3, 9, "job-1", payload); err != nil {
		t.Fatalf("insertGridDetail() error = %v", err)
	}

	if !strings.Contains(db.sql, "monitoring.detail_grid") {
		t.Errorf("sql = %q, want detail_grid insert", db.sql)
	}
	if db.args[0] != int64(3) || db.args[1] != int64(9) || db.args[2] != "job-1" {
		t.Errorf("key args = %v, want [3 9 job-1]", db.args[:3])
	}
	if len(db.args) != 11 {
		t.Errorf("args = %d, want 11", len(db.args))
	}
}

func TestInsert_WrongPayloadType(t *testing.T) {
	db := &execRecorder{}
	if err := insertCloudDetail(context.Background(), db, 3, 9, "job-1", &GridDetail{}); err == nil {
		t.Error("insertCloudDetail accepted a grid payload")
	}
}

func TestFetch_DetailMissing(t *testing.T) {
	db := &execRecorder{rowErr: pgx.ErrNoRows}

	for _, fetch := range []func(context.Context, core.DBTX, int64) (any, error){
		fetchCloudDetail, fetchNetworkDetail, fetchGridDetail,
	} {
		_, err := fetch(context.Background(), db, 9)
		if !errors.Is(err, core.ErrDetailMissing) {
			t.Errorf("fetch error = %v, want ErrDetailMissing", err)
		}
	}
}
