package core

// validation.go validates the type-agnostic fact block at the boundary,
// before any domain logic runs. A fact that passes Normalize can be written
// without further checks, so a validation failure can never follow a
// partial write.

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the accepted submission timestamp formats,
// most common first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses a submission timestamp in one of the accepted
// layouts. Naive timestamps are interpreted as UTC.
func parseTimestamp(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &ValidationError{Field: field, Reason: "required"}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{Field: field, Reason: fmt.Sprintf("unrecognized timestamp %q", value)}
}

// Normalize validates the fact's required fields, parses its timestamps and
// applies the documented defaults (job_finished true, status "success",
// execunitfinished true). It must be called before the fact is inserted.
func (f *FactEvent) Normalize() error {
	var err error
	if f.eventStart, err = parseTimestamp("event_start_timestamp", f.EventStartTimestamp); err != nil {
		return err
	}
	if f.eventEnd, err = parseTimestamp("event_end_timestamp", f.EventEndTimestamp); err != nil {
		return err
	}
	if f.startExec, err = parseTimestamp("startexectime", f.StartExecTime); err != nil {
		return err
	}
	if f.stopExec, err = parseTimestamp("stopexectime", f.StopExecTime); err != nil {
		return err
	}

	if strings.TrimSpace(f.ExecUnitID) == "" {
		return &ValidationError{Field: "execunitid", Reason: "required"}
	}

	if f.JobFinished == nil {
		f.JobFinished = ptr(true)
	}
	if f.Status == nil {
		f.Status = ptr("success")
	}
	if f.ExecUnitFinished == nil {
		f.ExecUnitFinished = ptr(true)
	}

	return nil
}

// Normalize validates the envelope: site type, site description and the
// fact block. The detail block is decoded separately by the variant
// registered for the resolved site type.
func (r *IngestRequest) Normalize() (SiteType, error) {
	st, err := ParseSiteType(r.SiteType)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(r.SiteDescription) == "" {
		return "", &ValidationError{Field: "site_description", Reason: "required"}
	}
	if err := r.Fact.Normalize(); err != nil {
		return "", err
	}
	return st, nil
}

// ptr returns a pointer to v. Used when applying defaults to optional
// fields.
func ptr[T any](v T) *T { return &v }
