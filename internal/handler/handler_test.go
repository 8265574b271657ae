package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/classtrack"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(classtrack.NewService(classtrack.NewMemoryStore()))
	h.Register(r.Group("/api"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestRoot(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "ClassTrack API is running", body["message"])
}

func TestCreateAndGetClass(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/classes", gin.H{"name": "Grade 10A", "subject": "Mathematics"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created classtrack.Class
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Grade 10A", created.Name)
	assert.False(t, created.CreatedAt.IsZero())

	w = doJSON(t, r, http.MethodGet, "/api/classes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched classtrack.Class
	decode(t, w, &fetched)
	assert.Equal(t, created.ID, fetched.ID)

	w = doJSON(t, r, http.MethodGet, "/api/classes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var classes []classtrack.Class
	decode(t, w, &classes)
	assert.Len(t, classes, 1)
}

func TestGetClassNotFound(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/classes/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "class not found", body["error"])
}

func TestCreateClassValidation(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/classes", gin.H{"name": "Grade 10A"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string           `json:"error"`
		Fields []map[string]any `json:"fields"`
	}
	decode(t, w, &body)
	assert.Equal(t, "validation failed", body.Error)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "Subject", body.Fields[0]["field"])
	assert.Equal(t, "required", body.Fields[0]["rule"])
}

func TestStudentsFilteredByClass(t *testing.T) {
	r := newTestRouter()

	for i, classID := range []string{"class-a", "class-b", "class-a"} {
		w := doJSON(t, r, http.MethodPost, "/api/students", gin.H{
			"name":        fmt.Sprintf("Student %d", i),
			"roll_number": fmt.Sprintf("%d", i),
			"class_id":    classID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/students?class_id=class-a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var students []classtrack.Student
	decode(t, w, &students)
	require.Len(t, students, 2)
	for _, st := range students {
		assert.Equal(t, "class-a", st.ClassID)
	}

	w = doJSON(t, r, http.MethodGet, "/api/students/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAttendanceTwiceKeepsOneRecord(t *testing.T) {
	r := newTestRouter()

	mark := gin.H{"student_id": "stu-1", "class_id": "class-1", "date": "2024-03-01", "status": "present"}
	w := doJSON(t, r, http.MethodPost, "/api/attendance", mark)
	require.Equal(t, http.StatusOK, w.Code)
	var first classtrack.AttendanceRecord
	decode(t, w, &first)

	mark["status"] = "absent"
	w = doJSON(t, r, http.MethodPost, "/api/attendance", mark)
	require.Equal(t, http.StatusOK, w.Code)
	var second classtrack.AttendanceRecord
	decode(t, w, &second)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, classtrack.StatusAbsent, second.Status)

	w = doJSON(t, r, http.MethodGet, "/api/attendance?class_id=class-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []classtrack.AttendanceRecord
	decode(t, w, &records)
	require.Len(t, records, 1)
	assert.Equal(t, classtrack.StatusAbsent, records[0].Status)
}

func TestMarkAttendanceRejectsUnknownStatus(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/attendance", gin.H{
		"student_id": "stu-1", "class_id": "class-1", "date": "2024-03-01", "status": "sick",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkAttendanceRejectsBadDate(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/attendance", gin.H{
		"student_id": "stu-1", "class_id": "class-1", "date": "03/01/2024", "status": "present",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkAttendance(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/attendance/bulk", gin.H{
		"class_id": "class-1",
		"date":     "2024-03-01",
		"attendance_records": []gin.H{
			{"student_id": "stu-1", "status": "present"},
			{"student_id": "stu-2", "status": "late"},
			{"student_id": "stu-3", "status": "absent"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message string                        `json:"message"`
		Records []classtrack.AttendanceRecord `json:"records"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Marked attendance for 3 students", body.Message)
	require.Len(t, body.Records, 3)
	assert.Equal(t, "stu-1", body.Records[0].StudentID)

	w = doJSON(t, r, http.MethodGet, "/api/attendance?class_id=class-1&date=2024-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []classtrack.AttendanceRecord
	decode(t, w, &records)
	assert.Len(t, records, 3)
}

func TestListAttendanceRequiresClassID(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/attendance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassReportEndToEnd(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/classes", gin.H{"name": "Grade 10A", "subject": "Mathematics"})
	require.Equal(t, http.StatusCreated, w.Code)
	var class classtrack.Class
	decode(t, w, &class)

	w = doJSON(t, r, http.MethodPost, "/api/students", gin.H{"name": "Asha", "roll_number": "17", "class_id": class.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var student classtrack.Student
	decode(t, w, &student)

	days := []gin.H{
		{"date": "2024-03-01", "status": "present"},
		{"date": "2024-03-02", "status": "present"},
		{"date": "2024-03-03", "status": "present"},
		{"date": "2024-03-04", "status": "absent"},
		{"date": "2024-03-05", "status": "late"},
	}
	for _, d := range days {
		d["student_id"] = student.ID
		d["class_id"] = class.ID
		w = doJSON(t, r, http.MethodPost, "/api/attendance", d)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/reports/"+class.ID+"?start_date=2024-03-01&end_date=2024-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report classtrack.Report
	decode(t, w, &report)
	assert.Equal(t, class.ID, report.ClassInfo.ID)
	require.NotNil(t, report.ReportPeriod.StartDate)
	assert.Equal(t, "2024-03-01", *report.ReportPeriod.StartDate)

	stats, ok := report.StudentStatistics[student.ID]
	require.True(t, ok)
	assert.Equal(t, 5, stats.TotalDays)
	assert.Equal(t, 60.0, stats.AttendancePercentage)

	// An unbounded report echoes null bounds, not empty strings.
	w = doJSON(t, r, http.MethodGet, "/api/reports/"+class.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var raw map[string]any
	decode(t, w, &raw)
	period, ok := raw["report_period"].(map[string]any)
	require.True(t, ok)
	start, ok := period["start_date"]
	require.True(t, ok)
	assert.Nil(t, start)
	end, ok := period["end_date"]
	require.True(t, ok)
	assert.Nil(t, end)
}

func TestClassReportNotFound(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/reports/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
