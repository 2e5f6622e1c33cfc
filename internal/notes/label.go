package notes

import "waiwaier/internal/schema"

// EffectiveLabel returns the id of the table's one label column: the lowest
// Order among columns flagged isLabel, the earliest listed on ties. It is ""
// when no column is flagged.
func EffectiveLabel(t *schema.Table) string {
	if i := labelIndex(t); i >= 0 {
		return t.Columns[i].ID
	}
	return ""
}

func labelIndex(t *schema.Table) int {
	best := -1
	for i := range t.Columns {
		c := &t.Columns[i]
		if !c.IsLabel {
			continue
		}
		if best < 0 || c.Order < t.Columns[best].Order {
			best = i
		}
	}
	return best
}
