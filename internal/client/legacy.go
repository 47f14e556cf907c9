package client

import "log/slog"

// The functions below are kept so that older call sites still compile. Student data now
// lives in the backend: none of them touch the network.

// LegacyResult is the fixed answer of AddNewStudent
type LegacyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) deprecated(name, hint string) {
	c.logger.Warn(name+" is deprecated", slog.String("hint", hint))
}

// SaveData does nothing.
//
// Deprecated: the backend saves data on every update.
func (c *Client) SaveData(any) {
	c.deprecated("SaveData", "data is automatically saved to backend")
}

// InitializeData does nothing and reports success.
//
// Deprecated: the backend manages its own data.
func (c *Client) InitializeData() bool {
	c.logger.Info("data is managed by backend")
	return true
}

// AddNewStudent does nothing and reports failure.
//
// Deprecated: students are added through the admin panel.
func (c *Client) AddNewStudent(studentNumber, name string, grade float64) LegacyResult {
	c.deprecated("AddNewStudent", "should be done through admin panel")
	return LegacyResult{Success: false, Message: "Use backend API for adding students"}
}

// SaveStudents does nothing.
//
// Deprecated: use UpdateStudent.
func (c *Client) SaveStudents([]Student) {
	c.deprecated("SaveStudents", "use backend API")
}

// DeleteStudent does nothing and reports failure.
//
// Deprecated: students are deleted through the admin panel.
func (c *Client) DeleteStudent(studentNumber string) bool {
	c.deprecated("DeleteStudent", "should be done through admin panel")
	return false
}

// SetGroupingComplete does nothing.
//
// Deprecated: the grouping state is set by PerformGrouping and ResetGrouping.
func (c *Client) SetGroupingComplete(bool) {
	c.deprecated("SetGroupingComplete", "handled by backend")
}

// SetCourseName does nothing.
//
// Deprecated: the course name is set by PerformGrouping.
func (c *Client) SetCourseName(string) {
	c.deprecated("SetCourseName", "handled by backend")
}

// ResetData does nothing.
//
// Deprecated: use ResetGrouping or ResetAllData.
func (c *Client) ResetData() {
	c.deprecated("ResetData", "should be done through teacher dashboard")
}

// ApplyGrouping does nothing.
//
// Deprecated: PerformGrouping applies the groups in the backend.
func (c *Client) ApplyGrouping(*GroupingResults, string) {
	c.deprecated("ApplyGrouping", "handled automatically by the backend")
}
