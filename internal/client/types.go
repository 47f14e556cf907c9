package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Score is a numeric questionnaire result (AMS motivation scale, cooperative learning scale).
//
// The backend stores scores as strings so they are sent as strings; numbers are accepted when decoding.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(s), 'f', -1, 64))
}

func (s *Score) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
		if raw == "" {
			*s = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid score %s: %w", data, err)
	}
	*s = Score(f)
	return nil
}

// Student is a transient copy of a backend student record
type Student struct {
	StudentNumber     string   `json:"studentNumber"`
	Name              string   `json:"name"`
	NationalCode      string   `json:"nationalCode,omitempty"`
	Grade             float64  `json:"grade"`
	MBTI              *string  `json:"mbti"`
	LearningStyle     *string  `json:"learningStyle"`
	AMS               *Score   `json:"ams"`
	Cooperative       *Score   `json:"cooperative"`
	PreferredStudents []string `json:"preferredStudents,omitempty"`
	Group             *int     `json:"group,omitempty"`
}

// profileFields is the number of optional profile attributes
const profileFields = 4

func present(s *string) bool {
	return s != nil && *s != ""
}

// IsComplete reports whether the fields required for grouping (mbti, learning style) are filled
func (s *Student) IsComplete() bool {
	return present(s.MBTI) && present(s.LearningStyle)
}

// HasFullProfile reports whether all four optional profile fields are filled
func (s *Student) HasFullProfile() bool {
	return s.IsComplete() && s.AMS != nil && s.Cooperative != nil
}

// CompletionPercent is the share of filled profile fields: 0, 25, 50, 75 or 100
func (s *Student) CompletionPercent() int {
	filled := 0
	if present(s.MBTI) {
		filled++
	}
	if present(s.LearningStyle) {
		filled++
	}
	if s.AMS != nil {
		filled++
	}
	if s.Cooperative != nil {
		filled++
	}
	return int(math.Round(float64(filled) / profileFields * 100))
}

// StudentUpdate is a partial update, nil fields are left unchanged by the backend
type StudentUpdate struct {
	MBTI              *string   `json:"mbti,omitempty"`
	LearningStyle     *string   `json:"learningStyle,omitempty"`
	AMS               *Score    `json:"ams,omitempty"`
	Cooperative       *Score    `json:"cooperative,omitempty"`
	PreferredStudents *[]string `json:"preferredStudents,omitempty"`
}

type updateStudentResponse struct {
	Success bool     `json:"success"`
	Student *Student `json:"student,omitempty"`
}

type studentsResponse struct {
	Students []Student `json:"students"`
}

// Group is one group produced by the backend grouping run
type Group struct {
	GroupNumber int      `json:"groupNumber"`
	Students    []string `json:"students"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// GroupingResults is the outcome of a grouping run
type GroupingResults struct {
	Groups []Group `json:"groups"`
}

type performGroupingRequest struct {
	CourseName string `json:"courseName"`
}

type performGroupingResponse struct {
	Success bool             `json:"success"`
	Results *GroupingResults `json:"results"`
}

// GroupingStats reflects the backend-global grouping state
type GroupingStats struct {
	CourseName               string  `json:"courseName"`
	GroupingComplete         bool    `json:"groupingComplete"`
	ResultsVisible           bool    `json:"resultsVisible"`
	TotalStudents            int     `json:"totalStudents"`
	StudentsWithCompleteInfo int     `json:"studentsWithCompleteInfo"`
	StudentsGrouped          int     `json:"studentsGrouped"`
	Groups                   []Group `json:"groups"`
}

// GroupAssignment is a student's group as seen by that student
type GroupAssignment struct {
	GroupNumber int       `json:"groupNumber"`
	Members     []Student `json:"members"`
	Reasoning   string    `json:"reasoning"`
	CourseName  string    `json:"courseName"`
}

// GroupStatus tags the outcome of a group lookup
type GroupStatus string

const (
	GroupAssigned          GroupStatus = "assigned"
	GroupResultsNotVisible GroupStatus = "results_not_visible"
	GroupNotAssigned       GroupStatus = "not_assigned"
)

// StudentGroup is the result of GetStudentGroup. Assignment is only set when Status is GroupAssigned,
// otherwise Message holds a localized explanation for the student.
type StudentGroup struct {
	Status     GroupStatus      `json:"status"`
	Message    string           `json:"message,omitempty"`
	Assignment *GroupAssignment `json:"assignment,omitempty"`
}

// VisibilityStatus is returned after toggling result visibility
type VisibilityStatus struct {
	Success        bool `json:"success"`
	ResultsVisible bool `json:"resultsVisible"`
}

// Confirmation is returned by the reset operations
type Confirmation struct {
	Success bool `json:"success"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type teacherAuthResponse struct {
	Valid bool `json:"valid"`
}

type studentAuthRequest struct {
	StudentNumber string `json:"studentNumber,omitempty"`
	NationalCode  string `json:"nationalCode"`
}

type studentAuthResponse struct {
	Valid   bool     `json:"valid"`
	Student *Student `json:"student"`
}

// Snapshot is the roster together with the grouping state
type Snapshot struct {
	Students         []Student `json:"students"`
	CourseName       string    `json:"courseName"`
	GroupingComplete bool      `json:"groupingComplete"`
	ResultsVisible   bool      `json:"resultsVisible"`
}
