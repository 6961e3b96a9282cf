package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFacilitiesDedupsByExternalID(t *testing.T) {
	batchA := []FacilityRecord{
		{ExternalID: "h1", Name: "City Hospital", Category: "hospital"},
		{ExternalID: "p1", Name: "Central Police", Category: "police"},
	}
	batchB := []FacilityRecord{
		{ExternalID: "h1", Name: "City Hospital", Category: "hospital"},
	}

	merged := MergeFacilities(batchA, batchB)
	require.Len(t, merged, 2)
	assert.Equal(t, "h1", merged[0].ExternalID)
	assert.Equal(t, "p1", merged[1].ExternalID)
}

func TestMergeFacilitiesLastWriteWins(t *testing.T) {
	earlier := []FacilityRecord{
		{ExternalID: "h1", Name: "Hospitl", Phone: ""},
	}
	later := []FacilityRecord{
		{ExternalID: "h1", Name: "District Hospital", Phone: "+91-11-2345"},
	}

	merged := MergeFacilities(earlier, later)
	require.Len(t, merged, 1)
	assert.Equal(t, "District Hospital", merged[0].Name)
	assert.Equal(t, "+91-11-2345", merged[0].Phone)
	assert.Equal(t, 0, merged[0].OrderSeen, "first sighting fixes discovery order")
}

func TestMergeFacilitiesEmptyFieldsDoNotErase(t *testing.T) {
	detailed := []FacilityRecord{
		{ExternalID: "g1", Name: "Fuel Stop", Phone: "12345", Rating: 4.2},
	}
	sparse := []FacilityRecord{
		{ExternalID: "g1", Name: "Fuel Stop"},
	}

	merged := MergeFacilities(detailed, sparse)
	require.Len(t, merged, 1)
	assert.Equal(t, "12345", merged[0].Phone)
	assert.Equal(t, 4.2, merged[0].Rating)
}

func TestMergeFacilitiesGroupingCommutative(t *testing.T) {
	a := FacilityRecord{ExternalID: "a", Name: "A", Category: "hospital"}
	b := FacilityRecord{ExternalID: "b", Name: "B", Category: "police"}
	c := FacilityRecord{ExternalID: "c", Name: "C", Category: "hospital"}

	first := MergeFacilities([]FacilityRecord{a, b}, []FacilityRecord{c})
	second := MergeFacilities([]FacilityRecord{c, b}, []FacilityRecord{a})

	byID := func(records []FacilityRecord) map[string]string {
		m := make(map[string]string)
		for _, r := range records {
			m[r.ExternalID] = r.Name
		}
		return m
	}
	assert.Equal(t, byID(first), byID(second))
}

func TestMergeFacilitiesDropsRecordsWithoutID(t *testing.T) {
	merged := MergeFacilities([]FacilityRecord{
		{Name: "anonymous"},
		{ExternalID: "x", Name: "named"},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, "x", merged[0].ExternalID)
}

func TestTwentyFourSeven(t *testing.T) {
	assert.True(t, TwentyFourSeven([]SchedulePeriod{{Open: "0000"}}))

	assert.False(t, TwentyFourSeven(nil))
	assert.False(t, TwentyFourSeven([]SchedulePeriod{}))
	assert.False(t, TwentyFourSeven([]SchedulePeriod{{Open: "0800", Close: "2000"}}))
	assert.False(t, TwentyFourSeven([]SchedulePeriod{{Open: "0000"}, {Open: "0800", Close: "2000"}}))
	assert.False(t, TwentyFourSeven([]SchedulePeriod{{}}), "malformed period without open boundary")
}

func TestEnrichFacilityAddsDetailWithoutChangingIdentity(t *testing.T) {
	base := FacilityRecord{ExternalID: "h1", Name: "City Hospital", OrderSeen: 3}
	enriched := EnrichFacility(base, "+91-22-9999", "https://hospital.example", []SchedulePeriod{{Open: "0000"}})

	assert.Equal(t, "h1", enriched.ExternalID)
	assert.Equal(t, "City Hospital", enriched.Name)
	assert.Equal(t, 3, enriched.OrderSeen)
	assert.Equal(t, "+91-22-9999", enriched.Phone)
	assert.True(t, enriched.Is24x7)
}

func TestCapPerCategoryKeepsFirstSeen(t *testing.T) {
	records := []FacilityRecord{
		{ExternalID: "h1", Category: "hospital"},
		{ExternalID: "h2", Category: "hospital"},
		{ExternalID: "p1", Category: "police"},
		{ExternalID: "h3", Category: "hospital"},
		{ExternalID: "p2", Category: "police"},
	}

	capped := CapPerCategory(records, 2)
	require.Len(t, capped, 4)
	assert.Equal(t, "h1", capped[0].ExternalID)
	assert.Equal(t, "h2", capped[1].ExternalID)
	assert.Equal(t, "p1", capped[2].ExternalID)
	assert.Equal(t, "p2", capped[3].ExternalID)
}

func TestCapPerCategoryNoCap(t *testing.T) {
	records := []FacilityRecord{{ExternalID: "a"}, {ExternalID: "b"}}
	assert.Len(t, CapPerCategory(records, 0), 2)
}
