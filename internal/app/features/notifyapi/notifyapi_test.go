package notifyapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nibrashq/nibras/internal/app/features/notifyapi"
	notificationstore "github.com/nibrashq/nibras/internal/app/store/notifications"
	requeststore "github.com/nibrashq/nibras/internal/app/store/requests"
	userstore "github.com/nibrashq/nibras/internal/app/store/users"
	"github.com/nibrashq/nibras/internal/app/system/audience"
	"github.com/nibrashq/nibras/internal/app/system/notify"
	"github.com/nibrashq/nibras/internal/app/system/workflow"
	"github.com/nibrashq/nibras/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test-notify-secret"

func newTestServer(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	resolver := audience.NewResolver(userstore.New(db), "staff")
	dispatcher := notify.NewDispatcher(resolver, notificationstore.New(db), logger)
	h := notifyapi.NewHandler(testSecret, requeststore.New(db, workflow.Policy{}), dispatcher, logger)
	return notifyapi.Routes(h), testutil.NewFixtures(t, db)
}

func postNotify(t *testing.T, srv http.Handler, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/internal-requests/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestNotifyRequiresBearer(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postNotify(t, srv, "", `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: status = %d, want 401", rec.Code)
	}
}

func TestNotifyRejectsWrongSecret(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := notifyapi.MintToken("some-other-secret", time.Now())
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	rec := postNotify(t, srv, token, `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret: status = %d, want 401", rec.Code)
	}
}

func TestNotifyRejectsExpiredToken(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := notifyapi.MintToken(testSecret, time.Now().Add(-notifyapi.TokenTTL-time.Minute))
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	rec := postNotify(t, srv, token, `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expired token: status = %d, want 401", rec.Code)
	}
}

func TestNotifyRejectsBadPayload(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := notifyapi.MintToken(testSecret, time.Now())
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	rec := postNotify(t, srv, token, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}

	rec = postNotify(t, srv, token, `{"requestId":"not-a-hex-id","actionType":"approved"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad requestId: status = %d, want 400", rec.Code)
	}
}

func TestNotifyUnknownRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := notifyapi.MintToken(testSecret, time.Now())
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	body := `{"requestId":"` + primitive.NewObjectID().Hex() + `","actionType":"approved","actorUid":"hr1"}`
	rec := postNotify(t, srv, token, body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown request: status = %d, want 404", rec.Code)
	}
}

func TestNotifyAcceptsReport(t *testing.T) {
	srv, fix := newTestServer(t)
	ctx := testutil.TestContext(t)

	req := fix.CreateRequest(ctx, "PDF pipeline request", "emp1", "hr")

	token, err := notifyapi.MintToken(testSecret, time.Now())
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	body := `{"requestId":"` + req.ID.Hex() + `","actionType":"approved","actorUid":"hr1","actorRole":"hr"}`
	rec := postNotify(t, srv, token, body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["ok"] {
		t.Errorf("response = %v, want ok:true", resp)
	}
}
