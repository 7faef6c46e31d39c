package core

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// stubDefinition returns a minimal valid definition for registry tests.
func stubDefinition(t SiteType, table string) DetailDefinition {
	return DetailDefinition{
		Type:   t,
		Table:  table,
		Decode: func(raw json.RawMessage) (any, error) { return struct{}{}, nil },
		Insert: func(ctx context.Context, db DBTX, siteID, eventID int64, execUnitID string, payload any) error {
			return nil
		},
		Fetch: func(ctx context.Context, db DBTX, eventID int64) (any, error) { return nil, nil },
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(stubDefinition(SiteCloud, "detail_cloud"))
	Register(stubDefinition(SiteGrid, "detail_grid"))

	def, ok := GetDefinition(SiteCloud)
	if !ok {
		t.Fatal("GetDefinition(SiteCloud) not found")
	}
	if def.Table != "detail_cloud" {
		t.Errorf("Table = %q, want %q", def.Table, "detail_cloud")
	}

	if _, ok := GetDefinition(SiteNetwork); ok {
		t.Error("GetDefinition(SiteNetwork) should not be found")
	}

	if Count() != 2 {
		t.Errorf("Count() = %d, want 2", Count())
	}
}

func TestRegistry_All_Sorted(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(stubDefinition(SiteNetwork, "detail_network"))
	Register(stubDefinition(SiteCloud, "detail_cloud"))
	Register(stubDefinition(SiteGrid, "detail_grid"))

	all := All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d definitions, want 3", len(all))
	}
	want := []SiteType{SiteCloud, SiteGrid, SiteNetwork}
	for i, def := range all {
		if def.Type != want[i] {
			t.Errorf("All()[%d].Type = %q, want %q", i, def.Type, want[i])
		}
	}
}

func TestRegistry_KnownTable(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(stubDefinition(SiteCloud, "detail_cloud"))

	if !KnownTable("detail_cloud") {
		t.Error("KnownTable(detail_cloud) = false, want true")
	}
	if KnownTable("detail_cloud; DROP TABLE monitoring.sites") {
		t.Error("KnownTable accepted an unregistered name")
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(stubDefinition(SiteCloud, "detail_cloud"))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("duplicate Register did not panic")
		}
		if !strings.Contains(r.(string), "already registered") {
			t.Errorf("panic = %v, want mention of already registered", r)
		}
	}()
	Register(stubDefinition(SiteCloud, "detail_cloud"))
}

func TestRegistry_IncompletePanics(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	defer func() {
		if recover() == nil {
			t.Fatal("incomplete Register did not panic")
		}
	}()
	Register(DetailDefinition{Type: SiteCloud, Table: "detail_cloud"})
}
