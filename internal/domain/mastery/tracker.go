package mastery

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/taxonomy"
)

// Tracker owns the mastery records of one candidate.
// It is not safe for concurrent use; the coordinating service serializes access.
type Tracker struct {
	taxonomy *taxonomy.Taxonomy
	records  map[string]model.MasteryRecord
}

// NewTracker creates an empty tracker over the given taxonomy.
func NewTracker(tx *taxonomy.Taxonomy) *Tracker {
	return &Tracker{
		taxonomy: tx,
		records:  make(map[string]model.MasteryRecord),
	}
}

// Load replaces the tracked state with records read from storage.
// Records for subjects outside the taxonomy are dropped and returned.
func (t *Tracker) Load(records []model.MasteryRecord) (dropped []string) {
	t.records = make(map[string]model.MasteryRecord, len(records))
	for _, rec := range records {
		if _, err := t.taxonomy.Lookup(rec.SubjectID); err != nil {
			dropped = append(dropped, rec.SubjectID)
			continue
		}
		t.records[rec.SubjectID] = sanitize(rec.Clone())
	}
	return dropped
}

// Record returns the stored record for a subject, or a zero record on first use.
func (t *Tracker) Record(subjectID string) (model.MasteryRecord, error) {
	if _, err := t.taxonomy.Lookup(subjectID); err != nil {
		return model.MasteryRecord{}, fmt.Errorf("%w: %s", ErrUnknownSubject, subjectID)
	}
	if rec, ok := t.records[subjectID]; ok {
		return rec.Clone(), nil
	}
	return model.NewMasteryRecord(subjectID), nil
}

// RecordSession merges a practice session into the subject's belief.
func (t *Tracker) RecordSession(subjectID string, items []model.SessionItem, at time.Time) (model.MasteryRecord, error) {
	def, err := t.taxonomy.Lookup(subjectID)
	if err != nil {
		return model.MasteryRecord{}, fmt.Errorf("%w: %s", ErrUnknownSubject, subjectID)
	}
	if len(items) == 0 {
		return model.MasteryRecord{}, ErrEmptySession
	}
	rec, _ := t.Record(subjectID)
	updated := RecordSession(rec, items, def, at)
	t.records[subjectID] = updated
	return updated.Clone(), nil
}

// Records returns copies of all stored records sorted by subject id.
func (t *Tracker) Records() []model.MasteryRecord {
	out := make([]model.MasteryRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out
}

// Snapshot returns decayed views of every subject, split into the primary
// paper and the gating group. Stored records are not modified.
func (t *Tracker) Snapshot(now time.Time) (primary, gating []model.SubjectSnapshot) {
	for _, def := range t.taxonomy.All() {
		rec, ok := t.records[def.ID]
		if !ok {
			rec = model.NewMasteryRecord(def.ID)
		}
		rec = ApplyDecay(rec, def, now)
		s := model.SubjectSnapshot{
			SubjectID:   def.ID,
			Proficiency: rec.Proficiency,
			Confidence:  rec.Confidence,
			ExamWeight:  def.ExamWeight,
		}
		if def.Gating {
			gating = append(gating, s)
		} else {
			primary = append(primary, s)
		}
	}
	return primary, gating
}

// HistoryDepth is the total number of practice items seen across subjects.
func (t *Tracker) HistoryDepth() int {
	n := 0
	for _, rec := range t.records {
		n += rec.TotalAttempts
	}
	return n
}

// BlindSpots lists material subjects with too little exposure.
func (t *Tracker) BlindSpots() []BlindSpot {
	return BlindSpots(t.taxonomy.All(), t.records)
}

// Reset forgets every record.
func (t *Tracker) Reset() {
	t.records = make(map[string]model.MasteryRecord)
}
