package catalog

import (
	"io"

	"github.com/gocarina/gocsv"

	"study-spotter-backend/internal/model"
)

type snapshotRow struct {
	ID        int64        `csv:"id"`
	Name      string       `csv:"name"`
	Type      string       `csv:"type"`
	Capacity  int          `csv:"capacity"`
	Occupied  int          `csv:"occupied"`
	Available int          `csv:"available"`
	Occupancy float64      `csv:"occupancy"`
	Level     model.Level  `csv:"level"`
	Tags      model.TagSet `csv:"tags"`
}

// WriteSnapshotsCSV writes snapshots in the given order, with a header row.
func WriteSnapshotsCSV(w io.Writer, snaps []model.LocationSnapshot) error {
	rows := make([]snapshotRow, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, snapshotRow{
			ID:        s.ID,
			Name:      s.Name,
			Type:      s.Type,
			Capacity:  s.Capacity,
			Occupied:  s.Occupied,
			Available: s.Available,
			Occupancy: s.Occupancy,
			Level:     s.Level,
			Tags:      s.Tags,
		})
	}
	return gocsv.Marshal(&rows, w)
}
