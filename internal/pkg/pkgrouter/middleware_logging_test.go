package pkgrouter

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
)

type recordingObserver struct {
	method string
	path   string
	status int
	calls  int
}

func (o *recordingObserver) ObserveRequest(method, path string, status int, _ time.Duration) {
	o.method = method
	o.path = path
	o.status = status
	o.calls++
}

func TestMiddlewareLoggingEmitsRequestAndResponse(t *testing.T) {
	dir := t.TempDir()
	reg, err := pkglog.NewRegistry(pkglog.Config{Dir: dir, MinLevel: pkglog.LevelDebug}, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	obs := &recordingObserver{}
	mw := middlewareLogging(reg.HTTP(), obs)

	wrapped := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"tx-1"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "http://example.com/transactions", strings.NewReader(`{"password":"secret","amount":100}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if err := reg.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "application.json.log"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var records []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad json line: %v", err)
		}
		records = append(records, m)
	}

	if len(records) != 2 {
		t.Fatalf("expected request and response records, got %d", len(records))
	}
	if records[0]["message"] != "request received" || records[1]["message"] != "response sent" {
		t.Fatalf("unexpected messages: %v / %v", records[0]["message"], records[1]["message"])
	}

	reqExtra := records[0]["extra_fields"].(map[string]any)
	body := reqExtra["body"].(map[string]any)
	if body["password"] != "***" {
		t.Fatalf("expected masked password in logged body, got %v", body["password"])
	}
	if body["amount"] != float64(100) {
		t.Fatalf("expected amount to remain, got %v", body["amount"])
	}

	respExtra := records[1]["extra_fields"].(map[string]any)
	if respExtra["status"] != float64(http.StatusCreated) {
		t.Fatalf("expected status 201, got %v", respExtra["status"])
	}

	if obs.calls != 1 || obs.method != http.MethodPost || obs.status != http.StatusCreated {
		t.Fatalf("unexpected observer state: %+v", obs)
	}
}

func TestMiddlewareLoggingNilCollaborators(t *testing.T) {
	mw := middlewareLogging(nil, nil)

	wrapped := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
