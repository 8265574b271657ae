package classtrack

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed Store for dev and testing. The attendance
// upsert holds the lock for the whole read-modify-write, giving it the same
// at-most-one-record-per-triple guarantee as the Mongo repository.
type MemoryStore struct {
	mu         sync.Mutex
	classes    []Class
	students   []Student
	attendance []AttendanceRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertClass(_ context.Context, class Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes = append(m.classes, class)
	return nil
}

func (m *MemoryStore) ListClasses(_ context.Context) ([]Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Class, len(m.classes))
	copy(out, m.classes)
	return out, nil
}

func (m *MemoryStore) GetClass(_ context.Context, id string) (*Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, class := range m.classes {
		if class.ID == id {
			c := class
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) InsertStudent(_ context.Context, student Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students = append(m.students, student)
	return nil
}

func (m *MemoryStore) ListStudents(_ context.Context, classID string) ([]Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Student
	for _, student := range m.students {
		if classID == "" || student.ClassID == classID {
			out = append(out, student)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetStudent(_ context.Context, id string) (*Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, student := range m.students {
		if student.ID == id {
			s := student
			return &s, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) UpsertAttendance(_ context.Context, rec AttendanceRecord) (AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.attendance {
		if existing.StudentID == rec.StudentID && existing.ClassID == rec.ClassID && existing.Date == rec.Date {
			m.attendance[i].Status = rec.Status
			m.attendance[i].MarkedAt = rec.MarkedAt
			return m.attendance[i], nil
		}
	}
	m.attendance = append(m.attendance, rec)
	return rec, nil
}

func (m *MemoryStore) ListAttendance(_ context.Context, classID, date string) ([]AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AttendanceRecord
	for _, rec := range m.attendance {
		if rec.ClassID != classID {
			continue
		}
		if date != "" && rec.Date != date {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemoryStore) ListAttendanceRange(_ context.Context, classID, startDate, endDate string) ([]AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AttendanceRecord
	for _, rec := range m.attendance {
		if rec.ClassID != classID {
			continue
		}
		if startDate != "" && rec.Date < startDate {
			continue
		}
		if endDate != "" && rec.Date > endDate {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
