package content

// StageContentMap accumulates the repaired record of each generation stage.
// Stage order is the order of Put calls; Merged folds the records in that
// order with earlier stages winning key conflicts, so a late stage can never
// clobber content an earlier stage already produced.
type StageContentMap struct {
	order  []string
	stages map[string]Record
}

func NewStageContentMap() *StageContentMap {
	return &StageContentMap{stages: make(map[string]Record)}
}

// Put records the repaired content for a stage. Re-putting a stage replaces
// its record but keeps its original position in the precedence order.
func (m *StageContentMap) Put(stageID string, rec Record) {
	if rec == nil {
		rec = Record{}
	}
	if _, seen := m.stages[stageID]; !seen {
		m.order = append(m.order, stageID)
	}
	m.stages[stageID] = rec
}

// Stage returns the record for one stage, or an empty record.
func (m *StageContentMap) Stage(stageID string) Record {
	if rec, ok := m.stages[stageID]; ok {
		return rec
	}
	return Record{}
}

// StageIDs returns the stages in precedence order.
func (m *StageContentMap) StageIDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Merged folds all stage records into one. The result is a fresh map each
// call; the per-stage records are not mutated.
func (m *StageContentMap) Merged() Record {
	out := Record{}
	for _, id := range m.order {
		for k, v := range m.stages[id] {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}
	return out
}
