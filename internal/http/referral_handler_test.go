package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/repository"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/service"
)

func newTestRouter() *Router {
	logger := zap.NewNop()
	svc := service.NewReferralService(repository.NewMemoryReferralsRepo(), logger)
	h := NewReferralHandler(svc, logger)
	router := NewRouter(logger)
	router.RegisterReferralRoutes(h)
	return router
}

const validBody = `{
	"referrerName":"John Smith",
	"referrerEmail":"john@x.com",
	"leadName":"Jane Doe",
	"leadAddress":"123 Main St",
	"leadPhone":"555-1234"
}`

func doJSON(t *testing.T, router *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmit_Returns201WithDefaults(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/referrals", validBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var rec domain.Referral
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("response is not a record: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated id")
	}
	if rec.Status != domain.StatusSubmitted {
		t.Fatalf("expected status submitted, got %q", rec.Status)
	}
	if rec.IncentiveAmount != 500 {
		t.Fatalf("expected incentiveAmount 500, got %d", rec.IncentiveAmount)
	}
	if rec.IncentiveStatus != domain.IncentivePending {
		t.Fatalf("expected incentiveStatus pending, got %q", rec.IncentiveStatus)
	}
}

func TestSubmit_MissingFieldReturns400NamingIt(t *testing.T) {
	router := newTestRouter()

	body := `{"referrerName":"","referrerEmail":"john@x.com","leadName":"Jane Doe","leadAddress":"123 Main St","leadPhone":"555-1234"}`
	w := doJSON(t, router, http.MethodPost, "/referrals", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"kind":"validation_error"`) {
		t.Fatalf("expected validation_error kind, got: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"referrerName"`) {
		t.Fatalf("expected offending field named, got: %s", w.Body.String())
	}
}

func TestFetchAll_ReturnsRecordsInCreationOrder(t *testing.T) {
	router := newTestRouter()

	var ids []string
	for i := 0; i < 3; i++ {
		w := doJSON(t, router, http.MethodPost, "/referrals", validBody)
		if w.Code != http.StatusCreated {
			t.Fatalf("submit %d failed: %d", i, w.Code)
		}
		var rec domain.Referral
		_ = json.Unmarshal(w.Body.Bytes(), &rec)
		ids = append(ids, rec.ID)
	}

	w := doJSON(t, router, http.MethodGet, "/referrals", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var records []domain.Referral
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("response is not a record array: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, rec := range records {
		if rec.ID != ids[i] {
			t.Fatalf("position %d: expected %s, got %s", i, ids[i], rec.ID)
		}
	}
}

func TestFetchAll_EmptyCollectionIsEmptyArray(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/referrals", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty JSON array, got: %s", w.Body.String())
	}
}

func TestApplyUpdate_MergesAndReturns200(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/referrals", validBody)
	var created domain.Referral
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodPatch, "/referrals",
		`{"id":"`+created.ID+`","status":"closed","assignedSetter":"Alex"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated domain.Referral
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("response is not a record: %v", err)
	}
	if updated.Status != domain.StatusClosed || updated.AssignedSetter != "Alex" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.UpdatedAt == nil {
		t.Fatal("expected updatedAt to be set")
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("id/createdAt must not change on update")
	}
	if updated.ReferrerName != created.ReferrerName {
		t.Fatal("untouched fields must survive the merge")
	}
}

func TestApplyUpdate_UnknownIDReturns404(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPatch, "/referrals", `{"id":"nonexistent-id","status":"closed"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"kind":"not_found"`) {
		t.Fatalf("expected not_found kind, got: %s", w.Body.String())
	}
}

func TestApplyUpdate_MissingIDReturns400(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPatch, "/referrals", `{"status":"closed"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"kind":"validation_error"`) {
		t.Fatalf("expected validation_error kind, got: %s", w.Body.String())
	}
}

func TestApplyUpdate_BadPatchTypeReturns400(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/referrals", validBody)
	var created domain.Referral
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodPatch, "/referrals",
		`{"id":"`+created.ID+`","incentiveAmount":"lots"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"kind":"invalid_patch"`) {
		t.Fatalf("expected invalid_patch kind, got: %s", w.Body.String())
	}
}

func TestReferrals_MethodNotAllowed(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodDelete, "/referrals", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestStats_CountsAndPendingIncentives(t *testing.T) {
	router := newTestRouter()

	var ids []string
	for i := 0; i < 3; i++ {
		w := doJSON(t, router, http.MethodPost, "/referrals", validBody)
		var rec domain.Referral
		_ = json.Unmarshal(w.Body.Bytes(), &rec)
		ids = append(ids, rec.ID)
	}
	doJSON(t, router, http.MethodPatch, "/referrals", `{"id":"`+ids[0]+`","status":"closed"}`)

	w := doJSON(t, router, http.MethodGet, "/referrals/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats service.PipelineStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("response is not stats: %v", err)
	}
	if stats.Total != 3 || stats.Submitted != 2 || stats.Closed != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.PendingIncentives != 500 {
		t.Fatalf("expected pendingIncentives 500, got %d", stats.PendingIncentives)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
