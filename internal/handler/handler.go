package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"classtrack/internal/classtrack"
	"classtrack/internal/metrics"
)

// Handler exposes the attendance service over HTTP.
type Handler struct {
	svc *classtrack.Service
}

func New(svc *classtrack.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts all service routes on the given group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/", h.Root)

	api.POST("/classes", h.CreateClass)
	api.GET("/classes", h.ListClasses)
	api.GET("/classes/:id", h.GetClass)

	api.POST("/students", h.CreateStudent)
	api.GET("/students", h.ListStudents)
	api.GET("/students/:id", h.GetStudent)

	api.POST("/attendance", h.MarkAttendance)
	api.POST("/attendance/bulk", h.MarkBulkAttendance)
	api.GET("/attendance", h.ListAttendance)

	api.GET("/reports/:class_id", h.ClassReport)
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ClassTrack API is running"})
}

// ---------- Classes ----------

type classCreateRequest struct {
	Name    string `json:"name" binding:"required"`
	Subject string `json:"subject" binding:"required"`
}

func (h *Handler) CreateClass(c *gin.Context) {
	var req classCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	class, err := h.svc.CreateClass(c.Request.Context(), req.Name, req.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *Handler) ListClasses(c *gin.Context) {
	classes, err := h.svc.Classes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if classes == nil {
		classes = []classtrack.Class{}
	}
	c.JSON(http.StatusOK, classes)
}

func (h *Handler) GetClass(c *gin.Context) {
	class, err := h.svc.Class(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// ---------- Students ----------

type studentCreateRequest struct {
	Name       string `json:"name" binding:"required"`
	RollNumber string `json:"roll_number" binding:"required"`
	ClassID    string `json:"class_id" binding:"required"`
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var req studentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	// class_id is stored as given; enrollment against a class that does not
	// exist is allowed.
	student, err := h.svc.CreateStudent(c.Request.Context(), req.Name, req.RollNumber, req.ClassID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.svc.Students(c.Request.Context(), c.Query("class_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if students == nil {
		students = []classtrack.Student{}
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) GetStudent(c *gin.Context) {
	student, err := h.svc.Student(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// ---------- Attendance ----------

type attendanceCreateRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	ClassID   string `json:"class_id" binding:"required"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Status    string `json:"status" binding:"required,oneof=present absent late"`
}

func (h *Handler) MarkAttendance(c *gin.Context) {
	var req attendanceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	rec, err := h.svc.MarkAttendance(c.Request.Context(), req.StudentID, req.ClassID, req.Date, classtrack.Status(req.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.MarksTotal.WithLabelValues(string(rec.Status)).Inc()
	c.JSON(http.StatusOK, rec)
}

type bulkAttendanceEntry struct {
	StudentID string `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=present absent late"`
}

type bulkAttendanceRequest struct {
	ClassID           string                `json:"class_id" binding:"required"`
	Date              string                `json:"date" binding:"required,datetime=2006-01-02"`
	AttendanceRecords []bulkAttendanceEntry `json:"attendance_records" binding:"required,dive"`
}

func (h *Handler) MarkBulkAttendance(c *gin.Context) {
	var req bulkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	marks := make([]classtrack.BulkMark, 0, len(req.AttendanceRecords))
	for _, entry := range req.AttendanceRecords {
		marks = append(marks, classtrack.BulkMark{
			StudentID: entry.StudentID,
			Status:    classtrack.Status(entry.Status),
		})
	}

	records, err := h.svc.MarkBulk(c.Request.Context(), req.ClassID, req.Date, marks)
	if err != nil {
		h.fail(c, err)
		return
	}
	for _, rec := range records {
		metrics.MarksTotal.WithLabelValues(string(rec.Status)).Inc()
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Marked attendance for %d students", len(records)),
		"records": records,
	})
}

func (h *Handler) ListAttendance(c *gin.Context) {
	classID := c.Query("class_id")
	if classID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "class_id query parameter is required"})
		return
	}

	records, err := h.svc.Attendance(c.Request.Context(), classID, c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []classtrack.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// ---------- Reports ----------

func (h *Handler) ClassReport(c *gin.Context) {
	report, err := h.svc.ClassReport(
		c.Request.Context(),
		c.Param("class_id"),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ---------- Errors ----------

// fail maps service errors onto HTTP statuses. Anything that is not a
// NotFound is treated as a store fault and kept off the wire.
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, classtrack.ErrClassNotFound) || errors.Is(err, classtrack.ErrStudentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// bindingErrors turns validator failures into a field-level payload instead
// of the library's single opaque message.
func bindingErrors(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, gin.H{"field": fe.Field(), "rule": fe.Tag()})
		}
		return gin.H{"error": "validation failed", "fields": fields}
	}
	return gin.H{"error": err.Error()}
}
