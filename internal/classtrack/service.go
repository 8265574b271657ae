package classtrack

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrClassNotFound is returned when a class id does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrStudentNotFound is returned when a student id does not exist.
	ErrStudentNotFound = errors.New("student not found")
)

// Store is the persistence surface the service needs. Get lookups return
// (nil, nil) when no document matches.
type Store interface {
	InsertClass(ctx context.Context, class Class) error
	ListClasses(ctx context.Context) ([]Class, error)
	GetClass(ctx context.Context, id string) (*Class, error)

	InsertStudent(ctx context.Context, student Student) error
	ListStudents(ctx context.Context, classID string) ([]Student, error)
	GetStudent(ctx context.Context, id string) (*Student, error)

	// UpsertAttendance atomically inserts rec or, when a record for the same
	// (student_id, class_id, date) already exists, overwrites its status and
	// marked_at in place. It returns the record as persisted.
	UpsertAttendance(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)
	ListAttendance(ctx context.Context, classID, date string) ([]AttendanceRecord, error)
	ListAttendanceRange(ctx context.Context, classID, startDate, endDate string) ([]AttendanceRecord, error)
}

// Service owns classes, students and attendance marks.
type Service struct {
	store Store
	newID func() string
	now   func() time.Time
}

// NewService creates a service backed by a store. IDs are UUID strings and
// timestamps are UTC; both generators can be overridden in tests.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateClass persists a new class. Duplicate names are allowed.
func (s *Service) CreateClass(ctx context.Context, name, subject string) (Class, error) {
	class := Class{
		ID:        s.newID(),
		Name:      name,
		Subject:   subject,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertClass(ctx, class); err != nil {
		return Class{}, err
	}
	return class, nil
}

// Classes returns all classes.
func (s *Service) Classes(ctx context.Context) ([]Class, error) {
	return s.store.ListClasses(ctx)
}

// Class returns one class by id.
func (s *Service) Class(ctx context.Context, id string) (Class, error) {
	class, err := s.store.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if class == nil {
		return Class{}, ErrClassNotFound
	}
	return *class, nil
}

// CreateStudent persists a new student. The class_id is stored as given,
// without checking that the class exists.
func (s *Service) CreateStudent(ctx context.Context, name, rollNumber, classID string) (Student, error) {
	student := Student{
		ID:         s.newID(),
		Name:       name,
		RollNumber: rollNumber,
		ClassID:    classID,
	}
	if err := s.store.InsertStudent(ctx, student); err != nil {
		return Student{}, err
	}
	return student, nil
}

// Students returns all students, narrowed to one class when classID is set.
func (s *Service) Students(ctx context.Context, classID string) ([]Student, error) {
	return s.store.ListStudents(ctx, classID)
}

// Student returns one student by id.
func (s *Service) Student(ctx context.Context, id string) (Student, error) {
	student, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if student == nil {
		return Student{}, ErrStudentNotFound
	}
	return *student, nil
}

// MarkAttendance upserts the mark for one student on one date. Marking the
// same (student, class, date) again overwrites status and marked_at; the
// record id never changes.
func (s *Service) MarkAttendance(ctx context.Context, studentID, classID, date string, status Status) (AttendanceRecord, error) {
	rec := AttendanceRecord{
		ID:        s.newID(),
		StudentID: studentID,
		ClassID:   classID,
		Date:      date,
		Status:    status,
		MarkedAt:  s.now(),
	}
	return s.store.UpsertAttendance(ctx, rec)
}

// MarkBulk applies MarkAttendance once per entry, in list order. Entries are
// independent: a failure stops the batch but does not roll back prior marks.
func (s *Service) MarkBulk(ctx context.Context, classID, date string, marks []BulkMark) ([]AttendanceRecord, error) {
	records := make([]AttendanceRecord, 0, len(marks))
	for _, m := range marks {
		rec, err := s.MarkAttendance(ctx, m.StudentID, classID, date, m.Status)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Attendance lists raw records for a class, narrowed to one date when set.
func (s *Service) Attendance(ctx context.Context, classID, date string) ([]AttendanceRecord, error) {
	return s.store.ListAttendance(ctx, classID, date)
}
