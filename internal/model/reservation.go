package model

import "time"

// Purpose is the optional reason given on a reservation form.
type Purpose string

const (
	PurposeNone            Purpose = ""
	PurposeGroupStudy      Purpose = "group-study"
	PurposeIndividualStudy Purpose = "individual-study"
	PurposeProjectWork     Purpose = "project-work"
	PurposeMeeting         Purpose = "meeting"
	PurposePresentation    Purpose = "presentation"
)

// ReservationRequest carries the form fields of a reservation. Date is
// YYYY-MM-DD, StartTime and EndTime are HH:MM.
type ReservationRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	StudentID string  `json:"studentId"`
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Purpose   Purpose `json:"purpose"`
}

// Reservation is a completed reservation as handed to collaborators.
type Reservation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	RoomID    string    `gorm:"index;size:32;not null" json:"roomId"`
	RoomName  string    `gorm:"size:128;not null" json:"roomName"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:256;not null" json:"email"`
	StudentID string    `gorm:"index;size:64;not null" json:"studentId"`
	Date      string    `gorm:"size:10;not null" json:"date"`
	StartTime string    `gorm:"size:5;not null" json:"startTime"`
	EndTime   string    `gorm:"size:5;not null" json:"endTime"`
	Purpose   Purpose   `gorm:"size:32" json:"purpose"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
