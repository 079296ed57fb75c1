package spawners

import (
	"math/rand"
)

// PropTable defines a table of possible props and their spawn chances
type PropTable struct {
	Entries []PropTableEntry
}

// PropTableEntry represents a single entry in a prop table
type PropTableEntry struct {
	TemplateID string
	Weight     int
}

// NewPropTable creates a new prop table
func NewPropTable(entries []PropTableEntry) *PropTable {
	return &PropTable{
		Entries: entries,
	}
}

// Pick returns a template ID chosen by weight, or "" for an empty table
func (pt *PropTable) Pick(rng *rand.Rand) string {
	// Calculate total weight
	totalWeight := 0
	for _, entry := range pt.Entries {
		totalWeight += entry.Weight
	}
	if totalWeight <= 0 {
		return ""
	}

	roll := rng.Intn(totalWeight)
	for _, entry := range pt.Entries {
		if roll < entry.Weight {
			return entry.TemplateID
		}
		roll -= entry.Weight
	}
	return ""
}
