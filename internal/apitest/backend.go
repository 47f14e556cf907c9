// Package apitest provides an in-memory stand-in for the grouping backend, for use in tests.
//
// It serves the same endpoint catalog under /api with the same status codes and detail
// messages as the real service. Grouping simply chunks the complete students into groups
// of GroupSize in roster order.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/information-sharing-networks/talimbot/internal/apperrors"
)

const (
	// DefaultPassword is the teacher password of a new Backend
	DefaultPassword = "teacher123"

	// GroupSize is the maximum number of students per fake group
	GroupSize = 4
)

// Student is the backend's student record
type Student struct {
	StudentNumber     string   `json:"studentNumber"`
	Name              string   `json:"name"`
	NationalCode      string   `json:"nationalCode"`
	MBTI              *string  `json:"mbti"`
	LearningStyle     *string  `json:"learningStyle"`
	AMS               *string  `json:"ams"`
	Cooperative       *string  `json:"cooperative"`
	Grade             float64  `json:"grade"`
	PreferredStudents []string `json:"preferredStudents"`
	Group             *int     `json:"group"`
}

type Group struct {
	GroupNumber int      `json:"groupNumber"`
	Students    []string `json:"students"`
	Reasoning   string   `json:"reasoning"`
}

// RecordedRequest is a request received by the backend
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	detail string
}

// Backend is safe for concurrent use
type Backend struct {
	mu               sync.Mutex
	students         []Student
	courseName       string
	groupingComplete bool
	resultsVisible   bool
	groups           []Group
	password         string
	errorCodes       bool
	failures         map[string]failure
	requests         []RecordedRequest
}

// New creates a backend holding a copy of students
func New(students ...Student) *Backend {
	b := &Backend{
		password: DefaultPassword,
		failures: map[string]failure{},
	}
	b.students = append(b.students, students...)
	return b
}

// Ptr is a helper for the nullable student fields
func Ptr[T any](v T) *T {
	return &v
}

// Start serves the backend until the test ends and returns the client base url (server url + "/api")
func (b *Backend) Start(tb testing.TB) string {
	tb.Helper()
	server := httptest.NewServer(b.Handler())
	tb.Cleanup(server.Close)
	return server.URL + "/api"
}

// UseErrorCodes makes error responses carry a structured error_code next to the detail
func (b *Backend) UseErrorCodes(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errorCodes = enabled
}

// SetResultsVisible sets the results visibility flag
func (b *Backend) SetResultsVisible(visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resultsVisible = visible
}

// Fail makes every request to method + path (e.g. "POST", "/api/grouping/perform") fail with status and detail.
// 5xx failures carry the internal_error code when error codes are enabled.
func (b *Backend) Fail(method, path string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, detail: detail}
}

// Requests returns the requests received so far
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// Student returns a copy of the stored student record
func (b *Backend) Student(studentNumber string) (Student, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s := b.find(studentNumber); s != nil {
		return *s, true
	}
	return Student{}, false
}

// GroupingState returns course name, grouping complete and results visible
func (b *Backend) GroupingState() (string, bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.courseName, b.groupingComplete, b.resultsVisible
}

func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(b.record)
	r.Use(b.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Get("/students", b.handleListStudents)
		r.Get("/student/{studentNumber}", b.handleGetStudent)
		r.Put("/student/{studentNumber}", b.handleUpdateStudent)
		r.Get("/student/{studentNumber}/group", b.handleStudentGroup)

		r.Get("/grouping/status", b.handleGroupingStatus)
		r.Post("/grouping/perform", b.handlePerformGrouping)
		r.Post("/grouping/toggle-visibility", b.handleToggleVisibility)
		r.Post("/grouping/reset", b.handleResetGrouping)
		r.Post("/data/reset-all", b.handleResetAll)
		r.Get("/data/backup", b.handleBackup)

		r.Post("/auth/teacher", b.handleTeacherAuth)
		r.Post("/auth/student", b.handleStudentAuth)
		r.Post("/auth/student-by-nationalcode", b.handleNationalCodeAuth)
	})

	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		f, ok := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if ok {
			var code apperrors.ErrorCode
			if f.status >= http.StatusInternalServerError {
				code = apperrors.ErrCodeInternalError
			}
			b.writeError(w, f.status, code, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) writeError(w http.ResponseWriter, status int, code apperrors.ErrorCode, detail string) {
	b.mu.Lock()
	withCode := b.errorCodes
	b.mu.Unlock()

	res := apperrors.ErrorResponse{Detail: detail}
	if withCode {
		res.ErrorCode = code
	}
	writeJSON(w, status, res)
}

// find must be called with mu held
func (b *Backend) find(studentNumber string) *Student {
	for i := range b.students {
		if b.students[i].StudentNumber == studentNumber {
			return &b.students[i]
		}
	}
	return nil
}

func isComplete(s Student) bool {
	return s.MBTI != nil && *s.MBTI != "" && s.LearningStyle != nil && *s.LearningStyle != ""
}
