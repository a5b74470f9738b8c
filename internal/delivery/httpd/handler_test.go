package httpd_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/appgenerator/waitlist-service/internal/delivery/httpd"
	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/internal/service"
	"github.com/appgenerator/waitlist-service/internal/service/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminToken = "s3cret"

var fixedNow = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	router    chi.Router
	waitlist  *mocks.WaitlistService
	documents *mocks.DocumentService
}

func newTestServer(t *testing.T, db httpd.Pinger) *testServer {
	t.Helper()
	ws := new(mocks.WaitlistService)
	ds := new(mocks.DocumentService)
	t.Cleanup(func() {
		ws.AssertExpectations(t)
		ds.AssertExpectations(t)
	})

	router := chi.NewRouter()
	httpd.NewHandler(ws, ds, db, adminToken, zerolog.Nop()).
		WithClock(func() time.Time { return fixedNow }).
		RegisterRoutes(router)

	return &testServer{router: router, waitlist: ws, documents: ds}
}

func (s *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func admin() map[string]string {
	return map[string]string{"X-Admin-Token": adminToken}
}

func intPtr(v int) *int { return &v }

func TestHealthCheck(t *testing.T) {
	w := newTestServer(t, fakePinger{}).do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = newTestServer(t, fakePinger{err: errors.New("down")}).do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decode(t, w)["status"])
}

func TestSubmit_Accepted(t *testing.T) {
	s := newTestServer(t, nil)
	s.waitlist.On("Submit", mock.Anything, &models.SubmitRequest{
		Name: "Ada", Email: "ada@example.com", AppIdea: "Planner", Platform: "ios", Documents: []string{"brief.pdf"},
	}, fixedNow).Return(&models.SubmitResult{
		Accepted:          true,
		SubmissionID:      "sub-1",
		Position:          1,
		WeeklyCap:         10,
		WeekKey:           "2024-W10",
		RemainingThisWeek: intPtr(9),
		Total:             intPtr(1),
	}, nil)

	w := s.do(http.MethodPost, "/api/v1/waitlist/submissions",
		`{"name":"Ada","email":"ada@example.com","appIdea":"Planner","platform":"ios","documents":["brief.pdf"]}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["accepted"])
	assert.Equal(t, "sub-1", body["submissionId"])
	assert.Equal(t, float64(1), body["position"])
	assert.Equal(t, float64(9), body["remainingThisWeek"])
	assert.NotContains(t, body, "reason")
}

func TestSubmit_RejectionIsOK(t *testing.T) {
	s := newTestServer(t, nil)
	s.waitlist.On("Submit", mock.Anything, mock.Anything, fixedNow).Return(&models.SubmitResult{
		Accepted:          false,
		Reason:            models.ReasonWeeklyCapReached,
		WeeklyCap:         10,
		WeekKey:           "2024-W10",
		CurrentWeekCount:  intPtr(10),
		RemainingThisWeek: intPtr(0),
		Total:             intPtr(10),
	}, nil)

	w := s.do(http.MethodPost, "/api/v1/waitlist/submissions", `{"name":"Ada","email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["accepted"])
	assert.Equal(t, "weekly_cap_reached", body["reason"])
	assert.Equal(t, float64(0), body["remainingThisWeek"])
	assert.Equal(t, float64(10), body["currentWeekCount"])
}

func TestSubmit_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/api/v1/waitlist/submissions", `{"name":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/waitlist/submissions", `{"name":"Ada"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit_StoreFailureIs500(t *testing.T) {
	s := newTestServer(t, nil)
	s.waitlist.On("Submit", mock.Anything, mock.Anything, fixedNow).Return(nil, errors.New("failed to load weekly counter: boom"))

	w := s.do(http.MethodPost, "/api/v1/waitlist/submissions", `{"name":"Ada","email":"ada@example.com"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["message"])
}

func TestGetStatus(t *testing.T) {
	s := newTestServer(t, nil)
	s.waitlist.On("GetStatus", mock.Anything, fixedNow).Return(&models.StatusResponse{
		Total: 3, WeeklyCap: 10, WeekKey: "2024-W10", CurrentWeekCount: 3, RemainingThisWeek: 7,
		NextOpenISO: "2024-03-11T09:00:00Z", NextOpenHuman: "Mon, Mar 11 09:00 AM",
	}, nil)

	w := s.do(http.MethodGet, "/api/v1/waitlist/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(7), body["remainingThisWeek"])
	assert.Equal(t, "2024-W10", body["weekKey"])
	assert.Equal(t, "2024-03-11T09:00:00Z", body["nextOpenIso"])
}

func TestGetSubmissionByEmail(t *testing.T) {
	s := newTestServer(t, nil)
	s.waitlist.On("GetByEmail", mock.Anything, "ada@example.com").
		Return(&models.Submission{ID: "sub-1", Email: "ada@example.com", Status: "pending", Position: 2}, nil)
	s.waitlist.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, service.ErrSubmissionNotFound)

	w := s.do(http.MethodGet, "/api/v1/waitlist/submissions?email=ada@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sub-1", decode(t, w)["id"])

	w = s.do(http.MethodGet, "/api/v1/waitlist/submissions?email=nobody@example.com", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/waitlist/submissions", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.waitlist.On("GetByEmail", mock.Anything, " ada@example.com").Return(nil, service.ErrSubmissionNotFound)
	w = s.do(http.MethodGet, "/api/v1/waitlist/submissions?email=%20ada@example.com", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetETA(t *testing.T) {
	s := newTestServer(t, nil)
	s.waitlist.On("ETA", 3, fixedNow).Return(&models.ETAResponse{Position: 3, ETA: "by Mar 25", ETADuration: "21 days"}, nil)

	w := s.do(http.MethodGet, "/api/v1/waitlist/eta?position=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "by Mar 25", decode(t, w)["eta"])

	w = s.do(http.MethodGet, "/api/v1/waitlist/eta?position=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.waitlist.On("ETA", 16000, fixedNow).Return(nil, fmt.Errorf("%w: position too large", service.ErrInvalidInput))
	w = s.do(http.MethodGet, "/api/v1/waitlist/eta?position=16000", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDocuments(t *testing.T) {
	s := newTestServer(t, nil)
	s.documents.On("ListDocuments", mock.Anything).Return(nil, service.ErrStorageUnavailable).Once()
	s.documents.On("ListDocuments", mock.Anything).Return(&models.DocumentsResponse{
		Documents: []models.Document{{Name: "brief.pdf", Size: 10}},
	}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/waitlist/documents", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodGet, "/api/v1/waitlist/documents", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	docs := decode(t, w)["documents"].([]interface{})
	assert.Len(t, docs, 1)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPut, "/api/v1/admin/cap", `{"cap":5}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/submissions", "", map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateCap(t *testing.T) {
	s := newTestServer(t, nil)
	s.waitlist.On("UpdateCap", mock.Anything, 5, fixedNow).Return(&models.UpdateCapResponse{OK: true, Cap: 5, WeekKey: "2024-W10"}, nil)
	s.waitlist.On("UpdateCap", mock.Anything, 0, fixedNow).Return(nil, service.ErrInvalidCap)

	w := s.do(http.MethodPut, "/api/v1/admin/cap", `{"cap":5}`, admin())
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(5), body["data"].(map[string]interface{})["cap"])

	w = s.do(http.MethodPut, "/api/v1/admin/cap", `{"cap":0}`, admin())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_cap", decode(t, w)["message"])
}

func TestUpdateSubmissionStatus(t *testing.T) {
	s := newTestServer(t, nil)
	s.waitlist.On("UpdateStatus", mock.Anything, "sub-1", "completed", "https://ada.app", fixedNow).
		Return(&models.Submission{ID: "sub-1", Status: "completed"}, nil)
	s.waitlist.On("UpdateStatus", mock.Anything, "sub-1", "shipped", "", fixedNow).Return(nil, service.ErrInvalidStatus)
	s.waitlist.On("UpdateStatus", mock.Anything, "missing", "pending", "", fixedNow).Return(nil, service.ErrSubmissionNotFound)

	w := s.do(http.MethodPut, "/api/v1/admin/submissions/sub-1/status", `{"status":"completed","app_url":"https://ada.app"}`, admin())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["data"].(map[string]interface{})["status"])

	w = s.do(http.MethodPut, "/api/v1/admin/submissions/sub-1/status", `{"status":"shipped"}`, admin())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/v1/admin/submissions/missing/status", `{"status":"pending"}`, admin())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSubmissions(t *testing.T) {
	s := newTestServer(t, nil)
	filter := models.ListSubmissionsFilter{WeekKey: "2024-W10", Status: "pending"}
	s.waitlist.On("ListSubmissions", mock.Anything, filter, 2, 5).Return(&models.SubmissionsResponse{
		Submissions: []models.Submission{{ID: "sub-1"}}, Total: 6, Page: 2, Limit: 5,
	}, nil)

	w := s.do(http.MethodGet, "/api/v1/admin/submissions?week=2024-W10&status=pending&page=2&limit=5", "", admin())
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(6), data["total"])
	assert.Len(t, data["submissions"], 1)
}
