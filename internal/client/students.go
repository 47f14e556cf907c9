package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

func studentPath(studentNumber string) string {
	return "/student/" + url.PathEscape(studentNumber)
}

// GetStudent fetches one student. An unknown student number is not an error: it returns nil, nil.
// Other failures are returned as an *APIError.
func (c *Client) GetStudent(ctx context.Context, studentNumber string) (*Student, error) {
	var student Student
	err := c.Request(ctx, studentPath(studentNumber), RequestOptions{}, &student)
	if StatusCode(err) == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// lookupStudent is GetStudent for the check helpers: any failure counts as "no student"
func (c *Client) lookupStudent(ctx context.Context, studentNumber string) *Student {
	student, err := c.GetStudent(ctx, studentNumber)
	if err != nil {
		c.logger.Warn("student lookup failed",
			slog.String("student_number", studentNumber),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return student
}

// UpdateStudent applies a partial update and reports whether the backend accepted it.
// Failures are logged and reported as false.
func (c *Client) UpdateStudent(ctx context.Context, studentNumber string, updates StudentUpdate) bool {
	var res updateStudentResponse
	err := c.Request(ctx, studentPath(studentNumber), RequestOptions{
		Method: http.MethodPut,
		Body:   updates,
	}, &res)
	if err != nil {
		c.logger.Warn("student update failed",
			slog.String("student_number", studentNumber),
			slog.String("error", err.Error()),
		)
		return false
	}
	return res.Success
}

// ListStudents returns the full roster
func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	var res studentsResponse
	if err := c.Request(ctx, "/students", RequestOptions{}, &res); err != nil {
		return nil, err
	}
	return res.Students, nil
}

// StudentExists reports whether the backend knows the student number, failures count as unknown
func (c *Client) StudentExists(ctx context.Context, studentNumber string) bool {
	return c.lookupStudent(ctx, studentNumber) != nil
}

// ListCompleteStudents returns the students with both required profile fields set, in roster order
func (c *Client) ListCompleteStudents(ctx context.Context) ([]Student, error) {
	students, err := c.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	complete := make([]Student, 0, len(students))
	for _, s := range students {
		if s.IsComplete() {
			complete = append(complete, s)
		}
	}
	return complete, nil
}

// HasFullProfile reports whether all four optional fields are set, false for unknown students
func (c *Client) HasFullProfile(ctx context.Context, studentNumber string) bool {
	student := c.lookupStudent(ctx, studentNumber)
	if student == nil {
		return false
	}
	return student.HasFullProfile()
}

// ProfileCompletionPercent returns 0, 25, 50, 75 or 100; unknown students give 0
func (c *Client) ProfileCompletionPercent(ctx context.Context, studentNumber string) int {
	student := c.lookupStudent(ctx, studentNumber)
	if student == nil {
		return 0
	}
	return student.CompletionPercent()
}
