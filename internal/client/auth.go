package client

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/information-sharing-networks/talimbot/internal/normalize"
)

// CheckTeacherPassword reports whether the backend accepts the teacher password.
// Any failure, including network errors, is treated as an invalid password.
func (c *Client) CheckTeacherPassword(ctx context.Context, password string) bool {
	var res teacherAuthResponse
	if err := c.Request(ctx, "/auth/teacher", RequestOptions{
		Method: http.MethodPost,
		Body:   passwordRequest{Password: password},
	}, &res); err != nil {
		c.logger.Warn("teacher password check failed", slog.String("error", err.Error()))
		return false
	}
	return res.Valid
}

// AuthenticateStudent logs a student in with their student number and national code.
// The code is normalised the same way as in AuthenticateStudentByNationalCode.
// Rejected credentials return nil, nil; other failures are returned as an *APIError.
func (c *Client) AuthenticateStudent(ctx context.Context, studentNumber, nationalCode string) (*Student, error) {
	return c.authenticateStudent(ctx, "/auth/student", studentAuthRequest{
		StudentNumber: studentNumber,
		NationalCode:  normalize.NationalCode(nationalCode),
	})
}

// AuthenticateStudentByNationalCode logs a student in with their national code only.
// The code is normalised first (ASCII digits, no leading zeros) to match how the backend stores it.
func (c *Client) AuthenticateStudentByNationalCode(ctx context.Context, nationalCode string) (*Student, error) {
	return c.authenticateStudent(ctx, "/auth/student-by-nationalcode", studentAuthRequest{
		NationalCode: normalize.NationalCode(nationalCode),
	})
}

func (c *Client) authenticateStudent(ctx context.Context, endpoint string, req studentAuthRequest) (*Student, error) {
	var res studentAuthResponse
	err := c.Request(ctx, endpoint, RequestOptions{
		Method:   http.MethodPost,
		Body:     req,
		Fallback: "Login failed",
	}, &res)

	switch StatusCode(err) {
	case http.StatusUnauthorized, http.StatusNotFound:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !res.Valid {
		return nil, nil
	}
	return res.Student, nil
}
