package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/information-sharing-networks/talimbot/internal/apperrors"
	"github.com/information-sharing-networks/talimbot/internal/locale"
	"golang.org/x/time/rate"
)

// GetGroupingStats returns the current grouping state
func (c *Client) GetGroupingStats(ctx context.Context) (*GroupingStats, error) {
	var stats GroupingStats
	if err := c.Request(ctx, "/grouping/status", RequestOptions{
		Fallback: "Failed to get grouping status",
	}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) IsGroupingComplete(ctx context.Context) (bool, error) {
	stats, err := c.GetGroupingStats(ctx)
	if err != nil {
		return false, err
	}
	return stats.GroupingComplete, nil
}

func (c *Client) GetCourseName(ctx context.Context) (string, error) {
	stats, err := c.GetGroupingStats(ctx)
	if err != nil {
		return "", err
	}
	return stats.CourseName, nil
}

// GetSnapshot returns the roster together with the grouping state
func (c *Client) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	students, err := c.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := c.GetGroupingStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Students:         students,
		CourseName:       stats.CourseName,
		GroupingComplete: stats.GroupingComplete,
		ResultsVisible:   stats.ResultsVisible,
	}, nil
}

// PerformGrouping asks the backend to group the students for courseName.
// Backend failures are returned as an *APIError whose message is the backend detail.
func (c *Client) PerformGrouping(ctx context.Context, courseName string) (*GroupingResults, error) {
	c.logger.Info("requesting grouping", slog.String("course_name", courseName))

	var res performGroupingResponse
	if err := c.Request(ctx, "/grouping/perform", RequestOptions{
		Method:   http.MethodPost,
		Body:     performGroupingRequest{CourseName: courseName},
		Fallback: "Grouping failed",
	}, &res); err != nil {
		return nil, err
	}

	if res.Results == nil {
		return &GroupingResults{}, nil
	}

	c.logger.Info("grouping complete",
		slog.String("course_name", courseName),
		slog.Int("groups", len(res.Results.Groups)),
	)
	return res.Results, nil
}

// GetStudentGroup returns the group of a student.
//
// When results are hidden or the student has no group yet the lookup still succeeds, with
// Status set to GroupResultsNotVisible or GroupNotAssigned and a localized Message.
// Any other failure is returned as an error.
func (c *Client) GetStudentGroup(ctx context.Context, studentNumber string) (*StudentGroup, error) {
	var assignment GroupAssignment
	err := c.Request(ctx, studentPath(studentNumber)+"/group", RequestOptions{}, &assignment)
	if err == nil {
		return &StudentGroup{Status: GroupAssigned, Assignment: &assignment}, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil, err
	}

	switch groupStatusFromError(apiErr) {
	case GroupResultsNotVisible:
		return &StudentGroup{
			Status:  GroupResultsNotVisible,
			Message: c.printer.Sprintf(locale.MsgResultsNotVisible),
		}, nil
	case GroupNotAssigned:
		return &StudentGroup{
			Status:  GroupNotAssigned,
			Message: c.printer.Sprintf(locale.MsgNotAssigned),
		}, nil
	}

	return nil, err
}

// groupStatusFromError maps a failed group lookup to a soft outcome.
// The structured error code is preferred; backends that only send a detail message are matched on its text.
func groupStatusFromError(e *APIError) GroupStatus {
	switch e.ErrorCode {
	case apperrors.ErrCodeResultsNotVisible:
		return GroupResultsNotVisible
	case apperrors.ErrCodeNotAssigned:
		return GroupNotAssigned
	case "":
	default:
		return ""
	}

	// network failures have no backend detail to match
	if e.StatusCode == 0 {
		return ""
	}

	switch {
	case strings.Contains(e.Message, "not yet visible"):
		return GroupResultsNotVisible
	case strings.Contains(e.Message, "not assigned"):
		return GroupNotAssigned
	}
	return ""
}

// ToggleResultsVisibility shows or hides the grouping results to students
func (c *Client) ToggleResultsVisibility(ctx context.Context, password string) (*VisibilityStatus, error) {
	var res VisibilityStatus
	if err := c.Request(ctx, "/grouping/toggle-visibility", RequestOptions{
		Method:   http.MethodPost,
		Body:     passwordRequest{Password: password},
		Fallback: "Failed to toggle visibility",
	}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ResetGrouping clears group assignments and the grouping state, student profiles are kept
func (c *Client) ResetGrouping(ctx context.Context, password string) (*Confirmation, error) {
	var res Confirmation
	if err := c.Request(ctx, "/grouping/reset", RequestOptions{
		Method:   http.MethodPost,
		Body:     passwordRequest{Password: password},
		Fallback: "Failed to reset grouping",
	}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ResetAllData clears every student profile as well as the grouping
func (c *Client) ResetAllData(ctx context.Context, password string) (*Confirmation, error) {
	var res Confirmation
	if err := c.Request(ctx, "/data/reset-all", RequestOptions{
		Method:   http.MethodPost,
		Body:     passwordRequest{Password: password},
		Fallback: "Failed to reset data",
	}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Backup downloads the complete backend data document
func (c *Client) Backup(ctx context.Context) (json.RawMessage, error) {
	var doc json.RawMessage
	if err := c.Request(ctx, "/data/backup", RequestOptions{
		Fallback: "Failed to download backup",
	}, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// WatchGroupingStats polls the grouping status at most once per interval and passes each result to fn.
// It returns nil when fn returns false, the context error when ctx ends, or the first failed poll.
func (c *Client) WatchGroupingStats(ctx context.Context, interval time.Duration, fn func(*GroupingStats) bool) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %v", interval)
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		stats, err := c.GetGroupingStats(ctx)
		if err != nil {
			return err
		}
		if !fn(stats) {
			return nil
		}
	}
}
