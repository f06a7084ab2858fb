// Copyright © 2024 Kamiwaza
package core

import (
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
)

// MergeResult is the outcome of applying one local batch against a
// remote catalog snapshot. Transient: built fresh per merge attempt,
// never persisted.
type MergeResult struct {
	Success bool
	Entries []model.Entry
	Actions []UpsertResult
	Errors  []string
}

// Merge applies every candidate of the local batch against the remote
// snapshot as one all-or-nothing transaction.
//
// Any single FAIL fails the whole merge: no merged entries are
// returned and every collected error is surfaced together, so an
// operator fixes all conflicts in one pass. On success the merged
// catalog is the remote snapshot minus all replaced entries, followed
// by every inserted or replacing candidate, in stable order.
func Merge(local, remote []model.Entry, format model.FormatVersion, force map[string]bool) MergeResult {
	actions := make([]UpsertResult, 0, len(local))
	var errs []string

	byName := make(map[string][]model.Entry, len(remote))
	for _, e := range remote {
		byName[e.Name] = append(byName[e.Name], e)
	}

	replaced := make(map[model.EntryKey]struct{})
	for _, candidate := range local {
		result := decideUpsert(candidate, byName[candidate.Name], format, force[candidate.Name])
		actions = append(actions, result)

		switch result.Action {
		case ActionFail:
			errs = append(errs, result.Err.Error())
		case ActionReplace:
			for _, r := range result.Replaced {
				replaced[r.Key()] = struct{}{}
			}
		}
	}

	if len(errs) > 0 {
		return MergeResult{Success: false, Actions: actions, Errors: errs}
	}

	merged := make([]model.Entry, 0, len(remote)+len(local))
	for _, e := range remote {
		if _, gone := replaced[e.Key()]; !gone {
			merged = append(merged, e)
		}
	}
	for _, a := range actions {
		merged = append(merged, a.Entry)
	}
	return MergeResult{Success: true, Entries: merged, Actions: actions}
}

// Counts tallies the actions by kind for reporting
func (m MergeResult) Counts() (inserts, replaces, fails int) {
	for _, a := range m.Actions {
		switch a.Action {
		case ActionInsert:
			inserts++
		case ActionReplace:
			replaces++
		default:
			fails++
		}
	}
	return
}
