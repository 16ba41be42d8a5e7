package models

// Course is immutable catalog data describing a unit of teaching.
type Course struct {
	ID               string  `db:"id" json:"id"`
	Code             string  `db:"code" json:"code"`
	Name             string  `db:"name" json:"name"`
	Credits          int     `db:"credits" json:"credits"`
	HoursPerWeek     int     `db:"hours_per_week" json:"hours_per_week"`
	SpecializationID string  `db:"specialization_id" json:"specialization_id"`
	PrerequisiteID   *string `db:"prerequisite_id" json:"prerequisite_id,omitempty"`
	SemesterOrder    int     `db:"semester_order" json:"semester_order"`
	GradeLevelMin    int     `db:"grade_level_min" json:"grade_level_min"`
	GradeLevelMax    int     `db:"grade_level_max" json:"grade_level_max"`
}

// Specialization maps a subject area to the room type it requires.
type Specialization struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	RoomTypeID  string `db:"room_type_id" json:"room_type_id"`
}
