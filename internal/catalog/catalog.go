// Package catalog provides the static study locations and library rooms,
// either built in or loaded from CSV files.
package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"study-spotter-backend/config"
	"study-spotter-backend/internal/logging"
	"study-spotter-backend/internal/model"
)

// Catalog is the reference data the service runs on.
type Catalog struct {
	Locations []model.StudyLocation
	Rooms     []model.Room
}

// Default returns the built-in campus catalog.
func Default() Catalog {
	return Catalog{
		Locations: []model.StudyLocation{
			{ID: 1, Name: "Main Library - Floor 1", Type: "Library", Capacity: 120,
				Tags: model.TagSet{"Quiet Zone", "Computers", "Coffee Nearby"}, BaseOccupancy: 0.4},
			{ID: 2, Name: "Main Library - Floor 2", Type: "Library", Capacity: 80,
				Tags: model.TagSet{"Silent Study", "Individual Desks"}, BaseOccupancy: 0.6},
			{ID: 3, Name: "Science Library", Type: "Library", Capacity: 60,
				Tags: model.TagSet{"Group Tables", "Whiteboard Access", "Coffee Nearby"}, BaseOccupancy: 0.3},
			{ID: 4, Name: "Student Union - Study Lounge", Type: "Lounge", Capacity: 45,
				Tags: model.TagSet{"Casual Seating", "Group Study", "Coffee Nearby"}, BaseOccupancy: 0.5},
			{ID: 5, Name: "Engineering Computer Lab", Type: "Computer Lab", Capacity: 30,
				Tags: model.TagSet{"Computers", "Printing", "Group Tables"}, BaseOccupancy: 0.7},
			{ID: 6, Name: "Business Building - Commons", Type: "Study Space", Capacity: 25,
				Tags: model.TagSet{"Quiet Zone", "Individual Desks", "Natural Light"}, BaseOccupancy: 0.2},
		},
		Rooms: []model.Room{
			{ID: "A101", Name: "Group Study Room A101", Capacity: 6, Status: model.RoomAvailable},
			{ID: "A102", Name: "Group Study Room A102", Capacity: 8, Status: model.RoomBusy},
			{ID: "A103", Name: "Group Study Room A103", Capacity: 4, Status: model.RoomAvailable},
			{ID: "B201", Name: "Conference Room B201", Capacity: 12, Status: model.RoomBusy},
			{ID: "B202", Name: "Study Pod B202", Capacity: 2, Status: model.RoomAvailable},
			{ID: "C301", Name: "Collaboration Space C301", Capacity: 10, Status: model.RoomAvailable},
		},
	}
}

// Load builds the catalog from cfg. Each CSV path that is set replaces the
// corresponding built-in list.
func Load(cfg config.CatalogConfig) (Catalog, error) {
	log := logging.For("catalog")
	cat := Default()

	if cfg.LocationsCSV != "" {
		locations, err := loadFile(cfg.LocationsCSV, ReadLocations)
		if err != nil {
			return Catalog{}, fmt.Errorf("failed to load locations from %s: %w", cfg.LocationsCSV, err)
		}
		cat.Locations = locations
		log.Infof("loaded %d locations from %s", len(locations), cfg.LocationsCSV)
	}

	if cfg.RoomsCSV != "" {
		rooms, err := loadFile(cfg.RoomsCSV, ReadRooms)
		if err != nil {
			return Catalog{}, fmt.Errorf("failed to load rooms from %s: %w", cfg.RoomsCSV, err)
		}
		cat.Rooms = rooms
		log.Infof("loaded %d rooms from %s", len(rooms), cfg.RoomsCSV)
	}

	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func loadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f)
}

func decode[T any](r io.Reader) ([]T, error) {
	var rows []T
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

// ReadLocations decodes study locations from CSV.
func ReadLocations(r io.Reader) ([]model.StudyLocation, error) {
	return decode[model.StudyLocation](r)
}

// ReadRooms decodes rooms from CSV. An empty status column means available.
func ReadRooms(r io.Reader) ([]model.Room, error) {
	rooms, err := decode[model.Room](r)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].Status == "" {
			rooms[i].Status = model.RoomAvailable
		}
	}
	return rooms, nil
}

// Validate checks the catalog preconditions the simulator and the
// reservation flow rely on.
func (c Catalog) Validate() error {
	if len(c.Locations) == 0 {
		return fmt.Errorf("catalog has no study locations")
	}
	seenLoc := make(map[int64]bool, len(c.Locations))
	for _, l := range c.Locations {
		if seenLoc[l.ID] {
			return fmt.Errorf("duplicate location id %d", l.ID)
		}
		seenLoc[l.ID] = true
		if l.Capacity <= 0 {
			return fmt.Errorf("location %d: capacity must be positive, got %d", l.ID, l.Capacity)
		}
		if l.BaseOccupancy < 0 || l.BaseOccupancy > 1 {
			return fmt.Errorf("location %d: base occupancy %v outside [0,1]", l.ID, l.BaseOccupancy)
		}
	}

	seenRoom := make(map[string]bool, len(c.Rooms))
	for _, r := range c.Rooms {
		if r.ID == "" {
			return fmt.Errorf("room with empty id")
		}
		if seenRoom[r.ID] {
			return fmt.Errorf("duplicate room id %q", r.ID)
		}
		seenRoom[r.ID] = true
		if r.Capacity <= 0 {
			return fmt.Errorf("room %s: capacity must be positive, got %d", r.ID, r.Capacity)
		}
		if !r.Status.Valid() {
			return fmt.Errorf("room %s: unknown status %q", r.ID, r.Status)
		}
	}
	return nil
}
