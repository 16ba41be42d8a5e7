package models

import "time"

// Semester is one academic term offering slot.
type Semester struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Year        int       `db:"year" json:"year"`
	OrderInYear int       `db:"order_in_year" json:"order_in_year"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	IsActive    bool      `db:"is_active" json:"is_active"`
}

// Teacher is a member of faculty qualified by specialization.
type Teacher struct {
	ID               string `db:"id" json:"id"`
	FirstName        string `db:"first_name" json:"first_name"`
	LastName         string `db:"last_name" json:"last_name"`
	SpecializationID string `db:"specialization_id" json:"specialization_id"`
}

// FullName joins first and last name for display.
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// Classroom is a physical room tagged with the type of teaching it supports.
type Classroom struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	RoomTypeID string `db:"room_type_id" json:"room_type_id"`
	Capacity   int    `db:"capacity" json:"capacity"`
}
