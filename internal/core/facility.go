package core

// FacilityRecord is a tagged point-of-interest record keyed by the vendor's
// external identifier. Overlapping searches along a route return the same
// facility many times; merging is by ExternalID with last-write-wins on
// field conflicts.
type FacilityRecord struct {
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address"`
	Phone      string  `json:"phone"`
	Website    string  `json:"website"`
	Rating     float64 `json:"rating"`
	Is24x7     bool    `json:"is_24x7"`
	Source     string  `json:"source"`
	OrderSeen  int     `json:"discovery_order"`
}

// SchedulePeriod is one open/close boundary pair from a raw operating-hours
// schedule. A missing close boundary on the only period means the facility
// never closes.
type SchedulePeriod struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// MergeFacilities folds overlapping search batches into one record set keyed
// by ExternalID. Later batches overwrite earlier non-empty fields (a phone
// number found by a more detailed lookup replaces a placeholder); the
// discovery order of the first sighting is retained so caps break ties by
// first-seen. Records without an external ID are dropped.
func MergeFacilities(batches ...[]FacilityRecord) []FacilityRecord {
	merged := make(map[string]FacilityRecord)
	order := make([]string, 0)

	seq := 0
	for _, batch := range batches {
		for _, rec := range batch {
			if rec.ExternalID == "" {
				continue
			}
			existing, seen := merged[rec.ExternalID]
			if !seen {
				rec.OrderSeen = seq
				seq++
				merged[rec.ExternalID] = rec
				order = append(order, rec.ExternalID)
				continue
			}
			merged[rec.ExternalID] = overwriteFields(existing, rec)
		}
	}

	out := make([]FacilityRecord, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out
}

// overwriteFields applies last-write-wins for every non-zero field of next
// while keeping the base identity (external ID, discovery order).
func overwriteFields(base, next FacilityRecord) FacilityRecord {
	if next.Name != "" {
		base.Name = next.Name
	}
	if next.Category != "" {
		base.Category = next.Category
	}
	if next.Latitude != 0 || next.Longitude != 0 {
		base.Latitude = next.Latitude
		base.Longitude = next.Longitude
	}
	if next.Address != "" {
		base.Address = next.Address
	}
	if next.Phone != "" {
		base.Phone = next.Phone
	}
	if next.Website != "" {
		base.Website = next.Website
	}
	if next.Rating != 0 {
		base.Rating = next.Rating
	}
	if next.Is24x7 {
		base.Is24x7 = true
	}
	if next.Source != "" {
		base.Source = next.Source
	}
	return base
}

// EnrichFacility adds detail fields discovered by a second, per-facility
// lookup without touching the base identity.
func EnrichFacility(base FacilityRecord, phone, website string, schedule []SchedulePeriod) FacilityRecord {
	if phone != "" {
		base.Phone = phone
	}
	if website != "" {
		base.Website = website
	}
	if TwentyFourSeven(schedule) {
		base.Is24x7 = true
	}
	return base
}

// TwentyFourSeven reports continuous availability: a single period with an
// open boundary and no corresponding close boundary. Malformed or missing
// schedules are simply not 24x7; this never fails.
func TwentyFourSeven(schedule []SchedulePeriod) bool {
	if len(schedule) != 1 {
		return false
	}
	return schedule[0].Open != "" && schedule[0].Close == ""
}

// CapPerCategory bounds output size: per category at most max records
// survive, kept in discovery order (first-seen-first-kept beyond the cap).
// max <= 0 means no cap.
func CapPerCategory(records []FacilityRecord, max int) []FacilityRecord {
	if max <= 0 {
		return records
	}
	kept := make([]FacilityRecord, 0, len(records))
	perCategory := make(map[string]int)
	for _, rec := range records {
		if perCategory[rec.Category] >= max {
			continue
		}
		perCategory[rec.Category]++
		kept = append(kept, rec)
	}
	return kept
}
