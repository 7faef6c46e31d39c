package core

import (
	"errors"
	"testing"
	"time"
)

func validFact() FactEvent {
	return FactEvent{
		EventStartTimestamp: "2024-01-01T00:00:00Z",
		EventEndTimestamp:   "2024-01-01T01:00:00Z",
		StartExecTime:       "2024-01-01T00:05:00Z",
		StopExecTime:        "2024-01-01T00:55:00Z",
		ExecUnitID:          "job-1",
	}
}

func TestFactEvent_Normalize_Defaults(t *testing.T) {
	f := validFact()
	if err := f.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if f.JobFinished == nil || !*f.JobFinished {
		t.Error("JobFinished default should be true")
	}
	if f.Status == nil || *f.Status != "success" {
		t.Errorf("Status default = %v, want %q", f.Status, "success")
	}
	if f.ExecUnitFinished == nil || !*f.ExecUnitFinished {
		t.Error("ExecUnitFinished default should be true")
	}

	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !f.eventStart.Equal(want) {
		t.Errorf("eventStart = %v, want %v", f.eventStart, want)
	}
}

func TestFactEvent_Normalize_KeepsExplicitValues(t *testing.T) {
	f := validFact()
	f.JobFinished = ptr(false)
	f.Status = ptr("failed")
	f.ExecUnitFinished = ptr(false)

	if err := f.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if *f.JobFinished {
		t.Error("explicit JobFinished=false was overwritten")
	}
	if *f.Status != "failed" {
		t.Errorf("Status = %q, want %q", *f.Status, "failed")
	}
	if *f.ExecUnitFinished {
		t.Error("explicit ExecUnitFinished=false was overwritten")
	}
}

func TestFactEvent_Normalize_RequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*FactEvent)
		wantField string
	}{
		{"missing event_start_timestamp", func(f *FactEvent) { f.EventStartTimestamp = "" }, "event_start_timestamp"},
		{"missing event_end_timestamp", func(f *FactEvent) { f.EventEndTimestamp = "" }, "event_end_timestamp"},
		{"missing startexectime", func(f *FactEvent) { f.StartExecTime = "" }, "startexectime"},
		{"missing stopexectime", func(f *FactEvent) { f.StopExecTime = "" }, "stopexectime"},
		{"missing execunitid", func(f *FactEvent) { f.ExecUnitID = "  " }, "execunitid"},
		{"garbage timestamp", func(f *FactEvent) { f.EventStartTimestamp = "yesterday" }, "event_start_timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFact()
			tt.mutate(&f)

			err := f.Normalize()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Normalize() error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestFactEvent_Normalize_TimestampLayouts(t *testing.T) {
	layouts := []string{
		"2024-01-01T00:00:00Z",
		"2024-01-01T00:00:00.123Z",
		"2024-01-01T00:00:00+02:00",
		"2024-01-01T00:00:00",
		"2024-01-01 00:00:00",
		"2024-01-01",
	}

	for _, ts := range layouts {
		t.Run(ts, func(t *testing.T) {
			f := validFact()
			f.EventStartTimestamp = ts
			if err := f.Normalize(); err != nil {
				t.Errorf("Normalize() error = %v for timestamp %q", err, ts)
			}
		})
	}
}

func TestParseSiteType(t *testing.T) {
	for _, valid := range []string{"cloud", "network", "grid"} {
		if _, err := ParseSiteType(valid); err != nil {
			t.Errorf("ParseSiteType(%q) error = %v", valid, err)
		}
	}

	for _, invalid := range []string{"storage", "jupyter", "CLOUD", ""} {
		_, err := ParseSiteType(invalid)
		var ue *UnsupportedSiteTypeError
		if !errors.As(err, &ue) {
			t.Errorf("ParseSiteType(%q) error = %v, want *UnsupportedSiteTypeError", invalid, err)
		}
	}
}

func TestIngestRequest_Normalize(t *testing.T) {
	req := IngestRequest{
		SiteType:        "cloud",
		SiteDescription: "Site A",
		Fact:            validFact(),
	}
	st, err := req.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if st != SiteCloud {
		t.Errorf("site type = %q, want %q", st, SiteCloud)
	}

	t.Run("unsupported site_type", func(t *testing.T) {
		bad := req
		bad.SiteType = "storage"
		_, err := bad.Normalize()
		var ue *UnsupportedSiteTypeError
		if !errors.As(err, &ue) {
			t.Fatalf("Normalize() error = %v, want *UnsupportedSiteTypeError", err)
		}
		if ue.Value != "storage" {
			t.Errorf("UnsupportedSiteTypeError.Value = %q, want %q", ue.Value, "storage")
		}
	})

	t.Run("missing site_description", func(t *testing.T) {
		bad := req
		bad.SiteDescription = ""
		_, err := bad.Normalize()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("Normalize() error = %v, want *ValidationError", err)
		}
		if ve.Field != "site_description" {
			t.Errorf("ValidationError.Field = %q, want %q", ve.Field, "site_description")
		}
	})
}
