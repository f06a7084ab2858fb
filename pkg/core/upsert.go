// Copyright © 2024 Kamiwaza
package core

import (
	"fmt"

	"github.com/kamiwaza-ai/garden-registry/pkg/core/status"
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
	"github.com/kamiwaza-ai/garden-registry/pkg/version"
)

// UpsertAction is the decision for one candidate entry
type UpsertAction int

const (
	// ActionInsert adds the candidate to the catalog
	ActionInsert UpsertAction = iota
	// ActionReplace adds the candidate and removes the entries it replaces
	ActionReplace
	// ActionFail rejects the candidate, failing the whole batch
	ActionFail
)

func (a UpsertAction) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionReplace:
		return "replace"
	default:
		return "fail"
	}
}

// UpsertResult is the decision for one candidate entry against the
// existing entries sharing its name
type UpsertResult struct {
	Name     string
	Action   UpsertAction
	Reason   string
	Entry    model.Entry
	Replaced []model.Entry
	Err      error
}

func failResult(e model.Entry, reason string) UpsertResult {
	return UpsertResult{
		Name:   e.Name,
		Action: ActionFail,
		Reason: reason,
		Entry:  e,
		Err:    status.ErrConflict.WrapMessage("%s: %s", e.Name, reason),
	}
}

// decideUpsert selects the applicable rule set and produces the
// decision. Pure: no state is retained between calls and the catalog
// is not touched.
func decideUpsert(candidate model.Entry, existing []model.Entry, format model.FormatVersion, forced bool) UpsertResult {
	if forced {
		return decideForced(candidate, existing)
	}
	if format == model.FormatV1 {
		return decideV1(candidate, existing)
	}
	return decideV2(candidate, existing)
}

// decideV1 implements the simple rule set: versions are immutable and
// only upgrades replace.
func decideV1(candidate model.Entry, existing []model.Entry) UpsertResult {
	if len(existing) == 0 {
		return UpsertResult{Name: candidate.Name, Action: ActionInsert, Reason: "new entry", Entry: candidate}
	}

	// v1 catalogs hold at most one entry per name
	current := existing[0]
	cmp, err := version.Compare(candidate.Version, current.Version)
	if err != nil {
		return failResult(candidate, err.Error())
	}

	switch cmp {
	case version.Newer:
		return UpsertResult{
			Name:     candidate.Name,
			Action:   ActionReplace,
			Reason:   fmt.Sprintf("version upgrade: %s -> %s", current.Version, candidate.Version),
			Entry:    candidate,
			Replaced: []model.Entry{current},
		}
	case version.Same:
		return failResult(candidate, fmt.Sprintf("version %s already exists (immutable)", candidate.Version))
	default:
		return failResult(candidate, fmt.Sprintf("cannot downgrade: %s -> %s", current.Version, candidate.Version))
	}
}

// decideV2 implements the constraint-aware rule set. The candidate is
// checked against every existing entry of the same name; disjoint
// constraints coexist, containment decides replacement, and anything
// ambiguous fails.
func decideV2(candidate model.Entry, existing []model.Entry) UpsertResult {
	if candidate.KamiwazaVersion == "" {
		return failResult(candidate, "missing kamiwaza_version")
	}
	if len(existing) == 0 {
		return UpsertResult{Name: candidate.Name, Action: ActionInsert, Reason: "new entry", Entry: candidate}
	}

	candidateConstraint, err := version.ParseConstraint(candidate.KamiwazaVersion)
	if err != nil {
		return failResult(candidate, err.Error())
	}

	var replaced []model.Entry
	for _, current := range existing {
		if current.KamiwazaVersion == "" {
			return failResult(candidate, fmt.Sprintf("existing entry for %s is malformed (no kamiwaza_version)", candidate.Name))
		}
		currentConstraint, err := version.ParseConstraint(current.KamiwazaVersion)
		if err != nil {
			return failResult(candidate, fmt.Sprintf("existing entry for %s: %v", candidate.Name, err))
		}

		switch candidateConstraint.Compare(currentConstraint) {
		case version.RelDisjoint:
			// no overlap, the entries can coexist
			continue

		case version.RelSame:
			cmp, err := version.Compare(candidate.Version, current.Version)
			if err != nil {
				return failResult(candidate, err.Error())
			}
			switch cmp {
			case version.Newer:
				replaced = append(replaced, current)
			case version.Same:
				return failResult(candidate, fmt.Sprintf("version %s with constraint %s already exists (immutable)",
					candidate.Version, candidate.KamiwazaVersion))
			default:
				return failResult(candidate, fmt.Sprintf("cannot downgrade: %s -> %s", current.Version, candidate.Version))
			}

		case version.RelSuperset:
			// the candidate covers everything the existing entry does
			replaced = append(replaced, current)

		case version.RelSubset:
			return failResult(candidate, fmt.Sprintf("would narrow supported range: %s -> %s",
				current.KamiwazaVersion, candidate.KamiwazaVersion))

		case version.RelPartial:
			return failResult(candidate, fmt.Sprintf("partial overlap between %s and %s requires manual resolution",
				current.KamiwazaVersion, candidate.KamiwazaVersion))
		}
	}

	if len(replaced) > 0 {
		return UpsertResult{
			Name:     candidate.Name,
			Action:   ActionReplace,
			Reason:   fmt.Sprintf("replacing %d entry(ies)", len(replaced)),
			Entry:    candidate,
			Replaced: replaced,
		}
	}
	return UpsertResult{
		Name:   candidate.Name,
		Action: ActionInsert,
		Reason: fmt.Sprintf("disjoint kamiwaza_version: %s", candidate.KamiwazaVersion),
		Entry:  candidate,
	}
}

// decideForced bypasses every version and constraint check. Never fails.
func decideForced(candidate model.Entry, existing []model.Entry) UpsertResult {
	if len(existing) == 0 {
		return UpsertResult{Name: candidate.Name, Action: ActionInsert, Reason: "new entry (forced)", Entry: candidate}
	}
	return UpsertResult{
		Name:     candidate.Name,
		Action:   ActionReplace,
		Reason:   fmt.Sprintf("forced replace of %d entry(ies)", len(existing)),
		Entry:    candidate,
		Replaced: append([]model.Entry(nil), existing...),
	}
}
