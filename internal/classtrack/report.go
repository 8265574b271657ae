package classtrack

import (
	"context"
	"math"
)

// ClassReport builds the per-student attendance summary for one class over an
// optional inclusive [startDate, endDate] window. Either bound may be empty.
// Dates compare lexicographically, which is correct for the fixed-width
// ISO-8601 form the service stores.
func (s *Service) ClassReport(ctx context.Context, classID, startDate, endDate string) (Report, error) {
	class, err := s.Class(ctx, classID)
	if err != nil {
		return Report{}, err
	}

	students, err := s.store.ListStudents(ctx, classID)
	if err != nil {
		return Report{}, err
	}

	records, err := s.store.ListAttendanceRange(ctx, classID, startDate, endDate)
	if err != nil {
		return Report{}, err
	}

	byStudent := make(map[string][]AttendanceRecord)
	for _, rec := range records {
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}

	// Every enrolled student appears, including those with no records in the
	// window.
	stats := make(map[string]StudentStats, len(students))
	for _, student := range students {
		stats[student.ID] = studentStats(student, byStudent[student.ID])
	}

	return Report{
		ClassInfo:         class,
		ReportPeriod:      ReportPeriod{StartDate: optionalDate(startDate), EndDate: optionalDate(endDate)},
		StudentStatistics: stats,
	}, nil
}

func optionalDate(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func studentStats(student Student, records []AttendanceRecord) StudentStats {
	st := StudentStats{
		StudentName: student.Name,
		RollNumber:  student.RollNumber,
		TotalDays:   len(records),
	}
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			st.Present++
		case StatusAbsent:
			st.Absent++
		case StatusLate:
			st.Late++
		}
	}
	if st.TotalDays > 0 {
		st.AttendancePercentage = round2(float64(st.Present) / float64(st.TotalDays) * 100)
	}
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
