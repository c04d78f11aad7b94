package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		ok      bool
	}{
		{"create order", http.MethodPost, "/api/orders", true},
		{"create review trailing slash", http.MethodPost, "/api/reviews/", true},
		{"order details", http.MethodGet, "/api/orders/details", false},
		{"reaction", http.MethodPost, "/api/reviews/{id}/reactions", false},
		{"login", http.MethodPost, "/api/users/login", false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != defaultIdempotencyTTL {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, defaultIdempotencyTTL, ttl)
		}
	}
}

func TestIdempotencyHeaderIsOptional(t *testing.T) {
	store, _ := newRedis(t)
	var calls int
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/orders", "/api/orders", strings.NewReader(`{"address":"x"}`))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", resp.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected both requests to run, got %d", calls)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store, _ := newRedis(t)
	var calls int
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	send := func() *httptest.ResponseRecorder {
		req := requestWithPattern(http.MethodPost, "/api/orders", "/api/orders", strings.NewReader(`{"address":"x"}`))
		req = req.WithContext(WithUserID(req.Context(), "buyer-1"))
		req.Header.Set(IdempotencyHeader, "abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if first := send(); first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}
	rec := send()
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" || rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("unexpected replay headers %v", rec.Header())
	}
	if strings.TrimSpace(rec.Body.String()) != `{"success":true}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store, _ := newRedis(t)
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := requestWithPattern(http.MethodPost, "/api/reviews", "/api/reviews", strings.NewReader(`{"content":"a"}`))
	req.Header.Set(IdempotencyHeader, "xyz")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	replay := requestWithPattern(http.MethodPost, "/api/reviews", "/api/reviews", strings.NewReader(`{"content":"b"}`))
	replay.Header.Set(IdempotencyHeader, "xyz")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, code)
	}
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	store, mr := newRedis(t)
	status := http.StatusServiceUnavailable
	var calls int
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
	}))

	send := func() int {
		req := requestWithPattern(http.MethodPost, "/api/orders", "/api/orders", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "retry-me")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", code)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no stored keys, got %v", keys)
	}
	status = http.StatusCreated
	if code := send(); code != http.StatusCreated {
		t.Fatalf("expected retry to run, got %d", code)
	}
	if calls != 2 {
		t.Fatalf("expected two executions, got %d", calls)
	}
	key := store.IdempotencyKey("|POST|/api/orders", "retry-me")
	if ttl := mr.TTL(key); ttl != defaultIdempotencyTTL {
		t.Fatalf("expected ttl %v got %v", defaultIdempotencyTTL, ttl)
	}
}

func TestIdempotencyInFlightKeyConflicts(t *testing.T) {
	store, _ := newRedis(t)
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner := requestWithPattern(http.MethodPost, "/api/orders", "/api/orders", strings.NewReader(`{}`))
		inner.Header.Set(IdempotencyHeader, "busy")
		rec := httptest.NewRecorder()
		Idempotency(store, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("duplicate must not run")
		})).ServeHTTP(rec, inner)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected in-flight conflict, got %d", rec.Code)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	req := requestWithPattern(http.MethodPost, "/api/orders", "/api/orders", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyHeader, "busy")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
}
