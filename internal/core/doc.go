// Package core implements the polymorphic event-recording subsystem.
//
// Every ingested telemetry event is persisted as one fact row in
// monitoring.fact_site_event plus exactly one detail row in the table
// dictated by the owning site's type (detail_cloud, detail_network or
// detail_grid). Both rows are written in a single transaction; deletion
// reverses the pair symmetrically, detail row first.
//
// The site type is a closed enumeration. Each type's detail schema is
// registered as a DetailDefinition (see registry.go and the variants
// subpackage), so dispatch is a registry lookup rather than string
// branching scattered through the write path.
package core
