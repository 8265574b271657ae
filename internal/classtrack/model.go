package classtrack

import "time"

// Status is an attendance mark. Anything outside the three known values is
// rejected at the request boundary.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

// Class is a named teaching unit. Classes are never updated or deleted.
type Class struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Subject   string    `bson:"subject" json:"subject"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Student belongs to one class by reference. The class_id is not checked
// against the classes collection.
type Student struct {
	ID         string `bson:"id" json:"id"`
	Name       string `bson:"name" json:"name"`
	RollNumber string `bson:"roll_number" json:"roll_number"`
	ClassID    string `bson:"class_id" json:"class_id"`
}

// AttendanceRecord is one student's status on one calendar date for one class.
// Date is stored as an ISO-8601 string (YYYY-MM-DD) so range filters can
// compare lexicographically. At most one record exists per
// (student_id, class_id, date) triple.
type AttendanceRecord struct {
	ID        string    `bson:"id" json:"id"`
	StudentID string    `bson:"student_id" json:"student_id"`
	ClassID   string    `bson:"class_id" json:"class_id"`
	Date      string    `bson:"date" json:"date"`
	Status    Status    `bson:"status" json:"status"`
	MarkedAt  time.Time `bson:"marked_at" json:"marked_at"`
}

// BulkMark is one entry of a bulk attendance request. The request itself is
// never persisted; it expands into individual marks.
type BulkMark struct {
	StudentID string
	Status    Status
}

// StudentStats holds the per-student counters of a class report.
type StudentStats struct {
	StudentName          string  `json:"student_name"`
	RollNumber           string  `json:"roll_number"`
	TotalDays            int     `json:"total_days"`
	Present              int     `json:"present"`
	Absent               int     `json:"absent"`
	Late                 int     `json:"late"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// ReportPeriod echoes the requested date window. A nil bound was not
// requested and serializes as null.
type ReportPeriod struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// Report is the per-class attendance summary, keyed by student id.
type Report struct {
	ClassInfo         Class                   `json:"class_info"`
	ReportPeriod      ReportPeriod            `json:"report_period"`
	StudentStatistics map[string]StudentStats `json:"student_statistics"`
}
