package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/information-sharing-networks/talimbot/internal/apitest"
	"github.com/information-sharing-networks/talimbot/internal/apperrors"
	"github.com/information-sharing-networks/talimbot/internal/logger"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, backend *apitest.Backend, opts ...Option) *Client {
	t.Helper()
	baseURL := backend.Start(t)
	return NewClient(baseURL, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestRequestHeaders(t *testing.T) {
	backend := apitest.New()
	c := newTestClient(t, backend)

	err := c.Request(context.Background(), "/students", RequestOptions{
		Headers: http.Header{
			"X-Trace":      []string{"abc"},
			"Content-Type": []string{"application/json; charset=utf-8"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}
	got := reqs[0]

	if got.Method != http.MethodGet {
		t.Errorf("got method %s, want GET", got.Method)
	}
	if ct := got.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("caller content type not applied, got %q", ct)
	}
	if got.Header.Get("X-Trace") != "abc" {
		t.Error("caller header not sent")
	}
	if got.Header.Get(logger.RequestIDHeader) == "" {
		t.Error("request id header not sent")
	}
}

func TestRequestDefaultContentType(t *testing.T) {
	backend := apitest.New()
	c := newTestClient(t, backend)

	if _, err := c.ResetGrouping(context.Background(), apitest.DefaultPassword); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := backend.Requests()[0]
	if ct := got.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("got content type %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(got.Body, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["password"] != apitest.DefaultPassword {
		t.Errorf("got body %v", body)
	}
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		fallback   string
		wantStatus int
		wantMsg    string
	}{
		{
			name: "detail is the message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"detail":"No students"}`))
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "No students",
		},
		{
			name: "missing detail uses fallback",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{}`))
			},
			fallback:   "Grouping failed",
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Grouping failed",
		},
		{
			name: "non JSON body uses default fallback",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`<html>bad gateway</html>`))
			},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "API request failed",
		},
		{
			name: "validation detail list uses fallback",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(`{"detail":[{"loc":["body","password"],"msg":"field required"}]}`))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "API request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(server.URL, WithLogger(quietLogger()))
			err := c.Request(context.Background(), "/anything", RequestOptions{Fallback: tt.fallback}, nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T (%v)", err, err)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("got status %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("got message %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRequestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	c := NewClient(baseURL, WithLogger(quietLogger()))
	err := c.Request(context.Background(), "/students", RequestOptions{}, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("got status %d, want 0", apiErr.StatusCode)
	}
	if apiErr.Unwrap() == nil {
		t.Error("transport error not wrapped")
	}
	if apiErr.Message == "" {
		t.Error("network error has no message")
	}
}

func TestRequestContextCancelled(t *testing.T) {
	backend := apitest.New()
	c := newTestClient(t, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Request(ctx, "/students", RequestOptions{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestAPIErrorUserMessage(t *testing.T) {
	c := NewClient("http://backend.test", WithLanguage("en"), WithLogger(quietLogger()))

	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"forbidden", http.StatusForbidden, `{"detail":"Invalid password"}`, "You don't have permission to perform this action."},
		{"bad request keeps detail", http.StatusBadRequest, `{"detail":"No students"}`, "No students"},
		{"unavailable", http.StatusServiceUnavailable, `{}`, "The service is temporarily unavailable. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
			err := NewResponseError(res, defaultFallback)
			if got := err.UserMessage(c.Printer()); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPerformGroupingPropagatesDetail(t *testing.T) {
	backend := apitest.New()
	backend.Fail(http.MethodPost, "/api/grouping/perform", http.StatusBadRequest, "No students")
	c := newTestClient(t, backend)

	results, err := c.PerformGrouping(context.Background(), "CS101")
	if err == nil {
		t.Fatal("expected an error")
	}
	if results != nil {
		t.Errorf("expected no results, got %+v", results)
	}
	if err.Error() != "No students" {
		t.Errorf("got message %q, want %q", err.Error(), "No students")
	}
	if StatusCode(err) != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", StatusCode(err))
	}

	var body map[string]string
	if err := json.Unmarshal(backend.Requests()[0].Body, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["courseName"] != "CS101" {
		t.Errorf("got body %v", body)
	}
}

func TestPerformGrouping(t *testing.T) {
	backend := apitest.New(
		apitest.Student{StudentNumber: "S1", MBTI: apitest.Ptr("INTJ"), LearningStyle: apitest.Ptr("Visual")},
		apitest.Student{StudentNumber: "S2"},
		apitest.Student{StudentNumber: "S3", MBTI: apitest.Ptr("ENFP"), LearningStyle: apitest.Ptr("Aural")},
	)
	c := newTestClient(t, backend)
	ctx := context.Background()

	results, err := c.PerformGrouping(ctx, "CS101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results.Groups) != 1 || len(results.Groups[0].Students) != 2 {
		t.Fatalf("unexpected groups %+v", results.Groups)
	}

	complete, err := c.IsGroupingComplete(ctx)
	if err != nil || !complete {
		t.Errorf("IsGroupingComplete() = %v, %v; want true", complete, err)
	}
	name, err := c.GetCourseName(ctx)
	if err != nil || name != "CS101" {
		t.Errorf("GetCourseName() = %q, %v; want CS101", name, err)
	}
}

func TestAdminActions(t *testing.T) {
	backend := apitest.New(
		apitest.Student{StudentNumber: "S1", MBTI: apitest.Ptr("INTJ"), LearningStyle: apitest.Ptr("Visual")},
	)
	c := newTestClient(t, backend)
	ctx := context.Background()

	t.Run("wrong password is the backend's call", func(t *testing.T) {
		_, err := c.ToggleResultsVisibility(ctx, "guess")
		if err == nil || err.Error() != "Invalid password" {
			t.Errorf("got %v, want Invalid password", err)
		}
		_, err = c.ResetGrouping(ctx, "guess")
		if err == nil || err.Error() != "Invalid password" {
			t.Errorf("got %v, want Invalid password", err)
		}
		_, err = c.ResetAllData(ctx, "")
		if err == nil || err.Error() != "Invalid password" {
			t.Errorf("got %v, want Invalid password", err)
		}
	})

	t.Run("toggle visibility", func(t *testing.T) {
		status, err := c.ToggleResultsVisibility(ctx, apitest.DefaultPassword)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.Success || !status.ResultsVisible {
			t.Errorf("got %+v, want visible", status)
		}
	})

	t.Run("reset all clears profiles", func(t *testing.T) {
		conf, err := c.ResetAllData(ctx, apitest.DefaultPassword)
		if err != nil || !conf.Success {
			t.Fatalf("ResetAllData() = %+v, %v", conf, err)
		}
		if c.ProfileCompletionPercent(ctx, "S1") != 0 {
			t.Error("profile not cleared")
		}
	})

	t.Run("reset grouping", func(t *testing.T) {
		conf, err := c.ResetGrouping(ctx, apitest.DefaultPassword)
		if err != nil || !conf.Success {
			t.Fatalf("ResetGrouping() = %+v, %v", conf, err)
		}
		_, complete, visible := backend.GroupingState()
		if complete || visible {
			t.Error("grouping state not reset")
		}
	})
}

func TestBackupAndSnapshot(t *testing.T) {
	backend := apitest.New(apitest.Student{StudentNumber: "S1", Name: "Sara"})
	c := newTestClient(t, backend)
	ctx := context.Background()

	doc, err := c.Backup(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(doc, []byte(`"S1"`)) {
		t.Errorf("backup does not contain the roster: %s", doc)
	}

	snap, err := c.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Students) != 1 || snap.GroupingComplete {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	c := NewClient("http://localhost:8000/api/")
	if got := c.BaseURL(); got != "http://localhost:8000/api" {
		t.Errorf("BaseURL() = %q, want http://localhost:8000/api", got)
	}
}

func TestServerErrorCode(t *testing.T) {
	backend := apitest.New()
	backend.UseErrorCodes(true)
	backend.Fail(http.MethodGet, "/api/students", http.StatusInternalServerError, "database unavailable")
	c := newTestClient(t, backend)

	_, err := c.ListStudents(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.ErrorCode != apperrors.ErrCodeInternalError {
		t.Errorf("got error code %q, want %q", apiErr.ErrorCode, apperrors.ErrCodeInternalError)
	}
	if apiErr.Message != "database unavailable" {
		t.Errorf("got message %q", apiErr.Message)
	}
}
