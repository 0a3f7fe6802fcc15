package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-spotter-backend/internal/model"
)

// fixedSource returns its values in order, repeating the last one.
type fixedSource struct {
	values []float64
	i      int
}

func (f *fixedSource) Float64() float64 {
	v := f.values[f.i]
	if f.i < len(f.values)-1 {
		f.i++
	}
	return v
}

func constant(v float64) *fixedSource {
	return &fixedSource{values: []float64{v}}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

// October 2026: the 20th is a Tuesday, the 24th a Saturday, the 25th a Sunday.
func TestMultiplier(t *testing.T) {
	testCases := []struct {
		name     string
		at       time.Time
		expected float64
	}{
		{name: "Tuesday afternoon peak", at: at(20, 15, 0), expected: 1.5},
		{name: "Saturday evening", at: at(24, 20, 0), expected: 1.08},
		{name: "Tuesday morning rush start", at: at(20, 9, 0), expected: 1.3},
		{name: "Tuesday morning rush end", at: at(20, 11, 59), expected: 1.3},
		{name: "Tuesday noon", at: at(20, 12, 0), expected: 1.0},
		{name: "Tuesday 13:00", at: at(20, 13, 0), expected: 1.0},
		{name: "Tuesday 18:00", at: at(20, 18, 0), expected: 1.0},
		{name: "Tuesday 08:00", at: at(20, 8, 0), expected: 1.0},
		{name: "Tuesday 07:00 late night band", at: at(20, 7, 0), expected: 0.3},
		{name: "Tuesday 22:30 evening", at: at(20, 22, 30), expected: 1.8},
		{name: "Tuesday 23:00 late night", at: at(20, 23, 0), expected: 0.3},
		{name: "Tuesday midnight", at: at(20, 0, 0), expected: 0.3},
		{name: "Sunday early morning", at: at(25, 3, 0), expected: 0.18},
		{name: "Saturday 12:00 weekend only", at: at(24, 12, 0), expected: 0.6},
		{name: "Sunday afternoon", at: at(25, 16, 0), expected: 0.9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Multiplier(tc.at), 1e-9)
		})
	}
}

func TestRandomFactor(t *testing.T) {
	assert.InDelta(t, 0.8, RandomFactor(constant(0)), 1e-12)
	assert.InDelta(t, 1.0, RandomFactor(constant(0.5)), 1e-12)
	assert.InDelta(t, 1.2, RandomFactor(constant(0.9999999)), 1e-6)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, model.LevelAvailable, Classify(0.05))
	assert.Equal(t, model.LevelAvailable, Classify(0.39999))
	assert.Equal(t, model.LevelBusy, Classify(0.4))
	assert.Equal(t, model.LevelBusy, Classify(0.74999))
	assert.Equal(t, model.LevelFull, Classify(0.75))
	assert.Equal(t, model.LevelFull, Classify(0.95))
}

func TestEstimate(t *testing.T) {
	floor2 := model.StudyLocation{ID: 2, Name: "Main Library - Floor 2", Capacity: 80, BaseOccupancy: 0.6}

	t.Run("Afternoon peak without weekend discount", func(t *testing.T) {
		snap := Estimate(floor2, at(20, 15, 0), constant(0.5))
		assert.InDelta(t, 0.9, snap.Occupancy, 1e-9)
		assert.Equal(t, 72, snap.Occupied)
		assert.Equal(t, 8, snap.Available)
		assert.Equal(t, model.LevelFull, snap.Level)
		assert.Equal(t, floor2, snap.StudyLocation)
	})

	t.Run("Clamped to upper bound", func(t *testing.T) {
		lab := model.StudyLocation{ID: 5, Capacity: 30, BaseOccupancy: 0.7}
		snap := Estimate(lab, at(20, 20, 0), constant(0.99))
		assert.Equal(t, MaxOccupancy, snap.Occupancy)
		assert.Equal(t, 29, snap.Occupied)
		assert.Equal(t, 1, snap.Available)
	})

	t.Run("Clamped to lower bound", func(t *testing.T) {
		commons := model.StudyLocation{ID: 6, Capacity: 25, BaseOccupancy: 0.2}
		snap := Estimate(commons, at(25, 3, 0), constant(0))
		assert.Equal(t, MinOccupancy, snap.Occupancy)
		assert.Equal(t, 1, snap.Occupied)
		assert.Equal(t, 24, snap.Available)
		assert.Equal(t, model.LevelAvailable, snap.Level)
	})
}

func TestEstimate_InvariantsHoldForAllTimes(t *testing.T) {
	catalog := []model.StudyLocation{
		{ID: 1, Capacity: 1, BaseOccupancy: 0},
		{ID: 2, Capacity: 7, BaseOccupancy: 0.33},
		{ID: 3, Capacity: 120, BaseOccupancy: 0.4},
		{ID: 4, Capacity: 45, BaseOccupancy: 1},
	}
	draws := []float64{0, 0.25, 0.5, 0.75, 0.999999}

	for day := 19; day <= 25; day++ {
		for hour := 0; hour < 24; hour++ {
			for _, draw := range draws {
				for _, loc := range catalog {
					snap := Estimate(loc, at(day, hour, 30), constant(draw))
					require.GreaterOrEqual(t, snap.Occupancy, MinOccupancy)
					require.LessOrEqual(t, snap.Occupancy, MaxOccupancy)
					require.GreaterOrEqual(t, snap.Occupied, 0)
					require.LessOrEqual(t, snap.Occupied, loc.Capacity)
					require.Equal(t, loc.Capacity-snap.Occupied, snap.Available)
					require.Equal(t, Classify(snap.Occupancy), snap.Level)
				}
			}
		}
	}
}

func TestSortByAvailable(t *testing.T) {
	snaps := []model.LocationSnapshot{
		{StudyLocation: model.StudyLocation{ID: 1}, Available: 3},
		{StudyLocation: model.StudyLocation{ID: 2}, Available: 10},
		{StudyLocation: model.StudyLocation{ID: 3}, Available: 1},
	}
	SortByAvailable(snaps)

	var available []int
	for _, s := range snaps {
		available = append(available, s.Available)
	}
	assert.Equal(t, []int{10, 3, 1}, available)
}

func TestSortByAvailable_TiesKeepCatalogOrder(t *testing.T) {
	snaps := []model.LocationSnapshot{
		{StudyLocation: model.StudyLocation{ID: 1}, Available: 5},
		{StudyLocation: model.StudyLocation{ID: 2}, Available: 9},
		{StudyLocation: model.StudyLocation{ID: 3}, Available: 5},
		{StudyLocation: model.StudyLocation{ID: 4}, Available: 5},
	}
	SortByAvailable(snaps)

	var ids []int64
	for _, s := range snaps {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int64{2, 1, 3, 4}, ids)
}

func TestCompute(t *testing.T) {
	catalog := []model.StudyLocation{
		{ID: 1, Capacity: 10, BaseOccupancy: 0.7},
		{ID: 2, Capacity: 20, BaseOccupancy: 0.5},
		{ID: 3, Capacity: 4, BaseOccupancy: 0.25},
	}
	// Tuesday 12:00 has no multiplier, so a 0.5 draw leaves base rates as-is.
	snaps := Compute(catalog, at(20, 12, 0), constant(0.5))
	require.Len(t, snaps, 3)

	assert.Equal(t, int64(2), snaps[0].ID)
	assert.Equal(t, 10, snaps[0].Available)
	assert.Equal(t, int64(1), snaps[1].ID)
	assert.Equal(t, 3, snaps[1].Available)
	assert.Equal(t, int64(3), snaps[2].ID)
	assert.Equal(t, 3, snaps[2].Available)
}

func TestCompute_DrawsOncePerLocation(t *testing.T) {
	catalog := []model.StudyLocation{
		{ID: 1, Capacity: 100, BaseOccupancy: 0.5},
		{ID: 2, Capacity: 100, BaseOccupancy: 0.5},
	}
	src := &fixedSource{values: []float64{0, 0.999999}}
	snaps := Compute(catalog, at(20, 12, 0), src)

	// The first location drew 0 (x0.8), the second ~1 (x1.2).
	assert.Equal(t, int64(1), snaps[0].ID)
	assert.Equal(t, 40, snaps[0].Occupied)
	assert.Equal(t, int64(2), snaps[1].ID)
	assert.Equal(t, 60, snaps[1].Occupied)
}

func TestNewSource_Deterministic(t *testing.T) {
	a, b := NewSource(7), NewSource(7)
	for i := 0; i < 10; i++ {
		v := a.Float64()
		assert.Equal(t, v, b.Float64())
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
