package apitest

import (
	"net/http"
	"strings"
	"testing"
)

func send(t *testing.T, method, url, body string) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("could not create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	return res.StatusCode
}

func TestFailedGroupingKeepsPreviousRun(t *testing.T) {
	backend := New(Student{StudentNumber: "S001", MBTI: Ptr("INTJ"), LearningStyle: Ptr("Visual")})
	baseURL := backend.Start(t)

	if status := send(t, http.MethodPost, baseURL+"/grouping/perform", `{"courseName":"CS101"}`); status != http.StatusOK {
		t.Fatalf("first grouping: got status %d", status)
	}

	// clearing mbti leaves nobody with a complete profile
	if status := send(t, http.MethodPut, baseURL+"/student/S001", `{"mbti":""}`); status != http.StatusOK {
		t.Fatalf("update: got status %d", status)
	}

	if status := send(t, http.MethodPost, baseURL+"/grouping/perform", `{"courseName":"CS102"}`); status != http.StatusBadRequest {
		t.Fatalf("second grouping: got status %d, want 400", status)
	}

	s, _ := backend.Student("S001")
	if s.Group == nil || *s.Group != 1 {
		t.Errorf("group assignment lost after failed grouping: %v", s.Group)
	}
	course, complete, _ := backend.GroupingState()
	if course != "CS101" || !complete {
		t.Errorf("grouping state changed: course %q, complete %v", course, complete)
	}
}
