package classtrack

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fetchCap bounds list reads. It is a safety limit, not a paging contract.
const fetchCap = 1000

// Repository persists classtrack data in MongoDB.
type Repository struct {
	classes    *mongo.Collection
	students   *mongo.Collection
	attendance *mongo.Collection
}

// NewRepository creates a repo over the three service collections.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		classes:    db.Collection("classes"),
		students:   db.Collection("students"),
		attendance: db.Collection("attendance"),
	}
}

// EnsureIndexes creates the unique index that backs the attendance upsert.
// Without it two concurrent upserts for the same triple can both miss the
// filter and both insert; with it the loser gets a duplicate-key error and
// UpsertAttendance retries against the winner's document.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.attendance.Indexes().CreateOne(ctx, attendanceTripleIndex())
	return err
}

func attendanceTripleIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{
			{Key: "student_id", Value: 1},
			{Key: "class_id", Value: 1},
			{Key: "date", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetName("uniq_student_class_date"),
	}
}

// InsertClass writes a new class document.
func (r *Repository) InsertClass(ctx context.Context, class Class) error {
	_, err := r.classes.InsertOne(ctx, class)
	return err
}

// ListClasses returns all classes up to the fetch cap.
func (r *Repository) ListClasses(ctx context.Context) ([]Class, error) {
	cursor, err := r.classes.Find(ctx, bson.M{}, options.Find().SetLimit(fetchCap))
	if err != nil {
		return nil, err
	}
	var classes []Class
	if err := cursor.All(ctx, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// GetClass returns one class by id, or (nil, nil) when absent.
func (r *Repository) GetClass(ctx context.Context, id string) (*Class, error) {
	var class Class
	err := r.classes.FindOne(ctx, bson.M{"id": id}).Decode(&class)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// InsertStudent writes a new student document.
func (r *Repository) InsertStudent(ctx context.Context, student Student) error {
	_, err := r.students.InsertOne(ctx, student)
	return err
}

// ListStudents returns students, filtered by class when classID is non-empty.
func (r *Repository) ListStudents(ctx context.Context, classID string) ([]Student, error) {
	filter := bson.M{}
	if classID != "" {
		filter["class_id"] = classID
	}
	cursor, err := r.students.Find(ctx, filter, options.Find().SetLimit(fetchCap))
	if err != nil {
		return nil, err
	}
	var students []Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// GetStudent returns one student by id, or (nil, nil) when absent.
func (r *Repository) GetStudent(ctx context.Context, id string) (*Student, error) {
	var student Student
	err := r.students.FindOne(ctx, bson.M{"id": id}).Decode(&student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// UpsertAttendance is an update-or-insert keyed on the
// (student_id, class_id, date) triple. The candidate id and triple only
// apply on insert; an existing record keeps its id and gets the new status
// and marked_at. At-most-one-record-per-triple is enforced by the unique
// index from EnsureIndexes: when two concurrent marks both take the insert
// path, the loser's duplicate-key error is retried and matches the winner's
// document.
func (r *Repository) UpsertAttendance(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error) {
	filter := bson.M{
		"student_id": rec.StudentID,
		"class_id":   rec.ClassID,
		"date":       rec.Date,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    rec.Status,
			"marked_at": rec.MarkedAt,
		},
		"$setOnInsert": bson.M{
			"id":         rec.ID,
			"student_id": rec.StudentID,
			"class_id":   rec.ClassID,
			"date":       rec.Date,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out AttendanceRecord
	err := r.attendance.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		err = r.attendance.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	}
	if err != nil {
		return AttendanceRecord{}, err
	}
	return out, nil
}

// ListAttendance returns records for a class, narrowed to one date when set.
func (r *Repository) ListAttendance(ctx context.Context, classID, date string) ([]AttendanceRecord, error) {
	filter := bson.M{"class_id": classID}
	if date != "" {
		filter["date"] = date
	}
	return r.findAttendance(ctx, filter)
}

// ListAttendanceRange returns records for a class within an inclusive date
// window. The bounds are independently optional and compare as strings, which
// matches the stored ISO-8601 form.
func (r *Repository) ListAttendanceRange(ctx context.Context, classID, startDate, endDate string) ([]AttendanceRecord, error) {
	filter := bson.M{"class_id": classID}
	dateFilter := bson.M{}
	if startDate != "" {
		dateFilter["$gte"] = startDate
	}
	if endDate != "" {
		dateFilter["$lte"] = endDate
	}
	if len(dateFilter) > 0 {
		filter["date"] = dateFilter
	}
	return r.findAttendance(ctx, filter)
}

func (r *Repository) findAttendance(ctx context.Context, filter bson.M) ([]AttendanceRecord, error) {
	cursor, err := r.attendance.Find(ctx, filter, options.Find().SetLimit(fetchCap))
	if err != nil {
		return nil, err
	}
	var records []AttendanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
