package codec

import (
	"time"
)

// Step upgrades a raw record from Version-1 to Version.
type Step struct {
	Version int
	Name    string
	Apply   func(rec map[string]any, now time.Time)
}

// Chain is an ordered list of migration steps for one collection.
type Chain []Step

// Latest is the schema version records are written with.
func (c Chain) Latest() int {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].Version
}

// Migrate applies every step newer than the record's schemaVersion and stamps
// the record with Latest. A record without schemaVersion is version 0. It
// reports whether any step ran.
func (c Chain) Migrate(rec map[string]any, now time.Time) bool {
	current := recordVersion(rec)
	migrated := false
	for _, step := range c {
		if step.Version <= current {
			continue
		}
		step.Apply(rec, now)
		migrated = true
	}
	if current < c.Latest() {
		rec[fieldSchemaVersion] = c.Latest()
	}
	return migrated
}

const fieldSchemaVersion = "schemaVersion"

func recordVersion(rec map[string]any) int {
	if v, ok := rec[fieldSchemaVersion].(float64); ok && v > 0 {
		return int(v)
	}
	if v, ok := rec[fieldSchemaVersion].(int); ok && v > 0 {
		return v
	}
	return 0
}

// defaultString sets rec[key] to def unless it already holds a string
// accepted by ok.
func defaultString(rec map[string]any, key, def string, ok func(string) bool) {
	if s, isStr := rec[key].(string); isStr && (ok == nil || ok(s)) {
		return
	}
	rec[key] = def
}

func defaultBool(rec map[string]any, key string) {
	if _, ok := rec[key].(bool); !ok {
		rec[key] = false
	}
}

// defaultTags keeps only the string entries of rec[key], or sets it to an
// empty list.
func defaultTags(rec map[string]any, key string) {
	raw, ok := rec[key].([]any)
	tags := make([]any, 0, len(raw))
	if ok {
		for _, v := range raw {
			if s, isStr := v.(string); isStr {
				tags = append(tags, s)
			}
		}
	}
	rec[key] = tags
}

// defaultTime sets rec[key] to now unless it holds a parseable timestamp.
func defaultTime(rec map[string]any, key string, now time.Time) {
	if _, ok := ParseTime(rec[key]); ok {
		return
	}
	rec[key] = FormatTime(now)
}

// repairTimes replaces an unreadable or zero createdAt/updatedAt with now.
// It runs on every record regardless of schema version and reports whether
// it changed anything.
func repairTimes(rec map[string]any, now time.Time) bool {
	repaired := false
	for _, key := range []string{"createdAt", "updatedAt"} {
		if t, ok := ParseTime(rec[key]); ok && !t.IsZero() {
			continue
		}
		rec[key] = FormatTime(now)
		repaired = true
	}
	if repaired {
		clampUpdatedAt(rec)
	}
	return repaired
}

// clampUpdatedAt raises updatedAt to createdAt when it is older.
func clampUpdatedAt(rec map[string]any) {
	created, okC := ParseTime(rec["createdAt"])
	updated, okU := ParseTime(rec["updatedAt"])
	if okC && okU && updated.Before(created) {
		rec["updatedAt"] = FormatTime(created)
	}
}

func nonEmpty(s string) bool { return s != "" }
