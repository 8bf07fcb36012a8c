package engine

import (
	"sort"
)

// BaselineFile is the consolidated definition of every table.
const BaselineFile = "definition.sql"

// Migration is the payload recorded in the ledger under one stamp.
type Migration struct {
	// Stamp is the unique, lexically ordered identifier (e.g., "20240101120000").
	Stamp string

	// Path is the file the statements were loaded from.
	Path string

	// Statements are executed in order.
	Statements []string
}

// Baseline is the consolidated definition run on a cold start.
type Baseline struct {
	Path       string
	Statements []string
}

// PlanKind says what a ledger run has to do.
type PlanKind int

const (
	// PlanNothing means every known stamp is already recorded.
	PlanNothing PlanKind = iota
	// PlanColdStart means the ledger is empty: record every stamp, then run the baseline.
	PlanColdStart
	// PlanPending means some stamps are missing: run each one in order.
	PlanPending
)

// String returns the string representation of the plan kind.
func (k PlanKind) String() string {
	switch k {
	case PlanColdStart:
		return "cold-start"
	case PlanPending:
		return "pending"
	default:
		return "nothing"
	}
}

// Plan is what a ledger run will execute.
type Plan struct {
	Kind PlanKind

	// Stamps are recorded in one batch on a cold start.
	Stamps []string

	// Migrations run in ascending stamp order when pending.
	Migrations []Migration
}

// IsEmpty returns true if the plan does nothing.
func (p *Plan) IsEmpty() bool {
	return p.Kind == PlanNothing
}

// PlanMigrations decides what a ledger run does given every known
// migration, the stamps already recorded and whether the ledger exists.
//
// A ledger that does not exist yet is a cold start: the baseline already
// contains every migration, so all stamps are recorded without running
// them. Otherwise each unrecorded stamp runs in ascending order, even when
// the ledger is empty.
func PlanMigrations(all []Migration, applied []string, initialized bool) *Plan {
	sorted := make([]Migration, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Stamp < sorted[j].Stamp
	})

	if !initialized {
		plan := &Plan{Kind: PlanColdStart, Stamps: make([]string, 0, len(sorted))}
		for _, m := range sorted {
			plan.Stamps = append(plan.Stamps, m.Stamp)
		}
		return plan
	}

	appliedSet := ToSet(applied)
	plan := &Plan{Kind: PlanNothing}
	for _, m := range sorted {
		if appliedSet[m.Stamp] {
			continue
		}
		plan.Migrations = append(plan.Migrations, m)
	}
	if len(plan.Migrations) > 0 {
		plan.Kind = PlanPending
	}
	return plan
}

// PlanStatus represents the status of a migration.
type PlanStatus int

const (
	// StatusPending means the stamp has not been recorded.
	StatusPending PlanStatus = iota
	// StatusApplied means the stamp has been recorded.
	StatusApplied
	// StatusMissing means the stamp is recorded but its file is gone.
	StatusMissing
)

// String returns the string representation of the status.
func (s PlanStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApplied:
		return "applied"
	case StatusMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// MigrationStatus provides status information about one stamp.
type MigrationStatus struct {
	Stamp      string
	Path       string
	Status     PlanStatus
	Statements int
}

// GetStatus returns the status of every known or recorded stamp, sorted.
func GetStatus(all []Migration, applied []string) []MigrationStatus {
	migrationMap := ToMap(all, func(m Migration) string { return m.Stamp })
	appliedSet := ToSet(applied)

	stampSet := make(map[string]bool, len(all)+len(applied))
	for _, m := range all {
		stampSet[m.Stamp] = true
	}
	for _, a := range applied {
		stampSet[a] = true
	}

	statuses := make([]MigrationStatus, 0, len(stampSet))
	for _, stamp := range SortedKeys(stampSet) {
		status := MigrationStatus{Stamp: stamp}
		m, known := migrationMap[stamp]
		if known {
			status.Path = m.Path
			status.Statements = len(m.Statements)
		}

		switch {
		case appliedSet[stamp] && !known:
			status.Status = StatusMissing
		case appliedSet[stamp]:
			status.Status = StatusApplied
		default:
			status.Status = StatusPending
		}
		statuses = append(statuses, status)
	}
	return statuses
}
