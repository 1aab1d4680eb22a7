// Package codec converts the domain collections to and from their persisted
// JSON form. Decoding is tolerant: a collection that is not valid JSON decodes
// as empty, records that cannot be shaped are dropped and counted, and every
// record is upgraded through a versioned migration chain before use.
package codec

import (
	"encoding/json"
	"time"
)

// Report describes what a decode had to tolerate.
type Report struct {
	// Corrupt is set when the collection itself was not a JSON array.
	Corrupt bool
	// Skipped counts records that were dropped.
	Skipped int
	// Migrated counts records that ran through at least one migration step.
	Migrated int
	// Repaired counts records whose createdAt or updatedAt was unreadable and
	// was replaced with the decode time.
	Repaired int
}

// Clean reports whether the decode dropped nothing.
func (r Report) Clean() bool {
	return !r.Corrupt && r.Skipped == 0
}

// Upgraded reports whether the decoded collection differs from what is
// stored in a way a second decode would not reproduce. Callers write such a
// collection back so the filled-in values stick.
func (r Report) Upgraded() bool {
	return !r.Corrupt && (r.Migrated > 0 || r.Repaired > 0)
}

// decodeCollection runs the shared decode pipeline: split the array, migrate
// each record as a map, reshape into the wire struct W and convert to T.
// convert returns false to drop a record that is structurally valid JSON but
// unusable (for example, missing its id).
func decodeCollection[W any, T any](data []byte, now time.Time, chain Chain, convert func(W, time.Time) (T, bool)) ([]T, Report) {
	var report Report

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		report.Corrupt = true
		return []T{}, report
	}

	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
			report.Skipped++
			continue
		}

		if chain.Migrate(rec, now) {
			report.Migrated++
		}
		if repairTimes(rec, now) {
			report.Repaired++
		}

		shaped, err := json.Marshal(rec)
		if err != nil {
			report.Skipped++
			continue
		}

		var w W
		if err := json.Unmarshal(shaped, &w); err != nil {
			report.Skipped++
			continue
		}

		v, ok := convert(w, now)
		if !ok {
			report.Skipped++
			continue
		}
		out = append(out, v)
	}

	return out, report
}

func encodeCollection[T any, W any](items []T, toWire func(T) W) ([]byte, error) {
	wire := make([]W, 0, len(items))
	for _, item := range items {
		wire = append(wire, toWire(item))
	}
	return json.Marshal(wire)
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
