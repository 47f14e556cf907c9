package apitest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/information-sharing-networks/talimbot/internal/apperrors"
)

func (b *Backend) handleListStudents(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	students := append([]Student{}, b.students...)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"students": students})
}

func (b *Backend) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := b.Student(chi.URLParam(r, "studentNumber"))
	if !ok {
		b.writeError(w, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, "Student not found")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

type studentUpdate struct {
	MBTI              *string   `json:"mbti"`
	LearningStyle     *string   `json:"learningStyle"`
	AMS               *string   `json:"ams"`
	Cooperative       *string   `json:"cooperative"`
	PreferredStudents *[]string `json:"preferredStudents"`
}

func (b *Backend) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeMalformedBody, "Invalid request body")
		return
	}

	b.mu.Lock()
	student := b.find(chi.URLParam(r, "studentNumber"))
	if student == nil {
		b.mu.Unlock()
		b.writeError(w, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, "Student not found")
		return
	}
	if req.MBTI != nil {
		student.MBTI = req.MBTI
	}
	if req.LearningStyle != nil {
		student.LearningStyle = req.LearningStyle
	}
	if req.AMS != nil {
		student.AMS = req.AMS
	}
	if req.Cooperative != nil {
		student.Cooperative = req.Cooperative
	}
	if req.PreferredStudents != nil {
		student.PreferredStudents = *req.PreferredStudents
	}
	updated := *student
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "student": updated})
}

func (b *Backend) handleStudentGroup(w http.ResponseWriter, r *http.Request) {
	studentNumber := chi.URLParam(r, "studentNumber")

	b.mu.Lock()
	visible := b.resultsVisible
	student := b.find(studentNumber)
	var (
		members   []Student
		reasoning string
		group     *int
	)
	if student != nil && student.Group != nil {
		group = Ptr(*student.Group)
		for _, s := range b.students {
			if s.Group != nil && *s.Group == *group {
				members = append(members, s)
			}
		}
		for _, g := range b.groups {
			if g.GroupNumber == *group {
				reasoning = g.Reasoning
			}
		}
	}
	courseName := b.courseName
	b.mu.Unlock()

	switch {
	case !visible:
		b.writeError(w, http.StatusForbidden, apperrors.ErrCodeResultsNotVisible, "Results are not yet visible")
	case student == nil:
		b.writeError(w, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, "Student not found")
	case group == nil:
		b.writeError(w, http.StatusNotFound, apperrors.ErrCodeNotAssigned, "Student not assigned to a group yet")
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"groupNumber": *group,
			"members":     members,
			"reasoning":   reasoning,
			"courseName":  courseName,
		})
	}
}

func (b *Backend) handleGroupingStatus(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	complete, grouped := 0, 0
	for _, s := range b.students {
		if isComplete(s) {
			complete++
		}
		if s.Group != nil {
			grouped++
		}
	}
	res := map[string]any{
		"totalStudents":            len(b.students),
		"studentsWithCompleteInfo": complete,
		"studentsGrouped":          grouped,
		"groupingComplete":         b.groupingComplete,
		"resultsVisible":           b.resultsVisible,
		"courseName":               b.courseName,
		"groups":                   append([]Group{}, b.groups...),
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

func (b *Backend) handlePerformGrouping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseName string `json:"courseName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeMalformedBody, "Invalid request body")
		return
	}

	b.mu.Lock()
	complete := 0
	for _, s := range b.students {
		if isComplete(s) {
			complete++
		}
	}
	if complete == 0 {
		b.mu.Unlock()
		b.writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest, "No students have completed their profiles yet")
		return
	}

	var groups []Group
	for i := range b.students {
		b.students[i].Group = nil
		if !isComplete(b.students[i]) {
			continue
		}
		if len(groups) == 0 || len(groups[len(groups)-1].Students) == GroupSize {
			groups = append(groups, Group{GroupNumber: len(groups) + 1, Reasoning: "grouped in roster order"})
		}
		g := &groups[len(groups)-1]
		g.Students = append(g.Students, b.students[i].StudentNumber)
		b.students[i].Group = Ptr(g.GroupNumber)
	}
	b.groups = groups
	b.courseName = req.CourseName
	b.groupingComplete = true
	b.resultsVisible = false
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": map[string]any{"groups": groups},
	})
}

// checkPassword writes the 403 response when the password is wrong
func (b *Backend) checkPassword(w http.ResponseWriter, r *http.Request) bool {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeMalformedBody, "Invalid request body")
		return false
	}

	b.mu.Lock()
	ok := req.Password == b.password
	b.mu.Unlock()

	if !ok {
		b.writeError(w, http.StatusForbidden, apperrors.ErrCodeInvalidPassword, "Invalid password")
	}
	return ok
}

func (b *Backend) handleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	if !b.checkPassword(w, r) {
		return
	}

	b.mu.Lock()
	b.resultsVisible = !b.resultsVisible
	visible := b.resultsVisible
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "resultsVisible": visible})
}

// resetGrouping must be called with mu held
func (b *Backend) resetGrouping() {
	for i := range b.students {
		b.students[i].Group = nil
	}
	b.groups = nil
	b.groupingComplete = false
	b.resultsVisible = false
	b.courseName = ""
}

func (b *Backend) handleResetGrouping(w http.ResponseWriter, r *http.Request) {
	if !b.checkPassword(w, r) {
		return
	}

	b.mu.Lock()
	b.resetGrouping()
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *Backend) handleResetAll(w http.ResponseWriter, r *http.Request) {
	if !b.checkPassword(w, r) {
		return
	}

	b.mu.Lock()
	b.resetGrouping()
	for i := range b.students {
		s := &b.students[i]
		s.MBTI, s.LearningStyle, s.AMS, s.Cooperative = nil, nil, nil, nil
		s.PreferredStudents = []string{}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *Backend) handleBackup(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	doc := map[string]any{
		"students":         append([]Student{}, b.students...),
		"courseName":       b.courseName,
		"groupingComplete": b.groupingComplete,
		"groupingResults":  map[string]any{"groups": b.groups},
		"resultsVisible":   b.resultsVisible,
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, doc)
}

func (b *Backend) handleTeacherAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeMalformedBody, "Invalid request body")
		return
	}

	b.mu.Lock()
	valid := req.Password == b.password
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"valid": valid})
}

type studentAuthRequest struct {
	StudentNumber string `json:"studentNumber"`
	NationalCode  string `json:"nationalCode"`
}

func (b *Backend) handleStudentAuth(w http.ResponseWriter, r *http.Request) {
	var req studentAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeMalformedBody, "Invalid request body")
		return
	}

	student, ok := b.Student(req.StudentNumber)
	switch {
	case !ok:
		b.writeError(w, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, "Student not found")
	case student.NationalCode != req.NationalCode:
		b.writeError(w, http.StatusUnauthorized, apperrors.ErrCodeInvalidRequest, "Invalid national code")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"valid": true, "student": student})
	}
}

func (b *Backend) handleNationalCodeAuth(w http.ResponseWriter, r *http.Request) {
	var req studentAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeMalformedBody, "Invalid request body")
		return
	}

	b.mu.Lock()
	var found *Student
	for _, s := range b.students {
		if s.NationalCode == req.NationalCode {
			s := s
			found = &s
			break
		}
	}
	b.mu.Unlock()

	if found == nil {
		b.writeError(w, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, "National code not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "student": found})
}
