package models

import "time"

// ClassSummary aggregates one class owned by a teacher.
type ClassSummary struct {
	ClassName    string `db:"class_name" json:"class_name"`
	StudentCount int    `db:"student_count" json:"student_count"`
}

// RosterStudent is the projection of a student returned by roster reads.
type RosterStudent struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	ClassName string    `db:"class_name" json:"class_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AssignStudentsRequest binds a list of students to a class.
type AssignStudentsRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// AssignStudentsResult reports how many rows the bulk assignment touched.
// Ids outside the teacher's institution are filtered out by the store and
// are not reported individually.
type AssignStudentsResult struct {
	ClassName string `json:"class_name"`
	Assigned  int64  `json:"assigned"`
}
