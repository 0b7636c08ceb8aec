package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func subscriberJSON(expires string) string {
	if expires == "" {
		return `{"subscriber":{"entitlements":{}}}`
	}
	return `{"subscriber":{"entitlements":{"Delusional Leap Pro":{"expires_date":` + expires + `,"product_identifier":"delusional_leap_monthly"}}}}`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *RevenueCatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewRevenueCatClient(RevenueCatConfig{APIKey: "rc_key", AppUserID: "device 1", BaseURL: srv.URL}, srv.Client(), zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestCheckEntitlement(t *testing.T) {
	cases := []struct {
		name string
		body string
		want bool
	}{
		{name: "lifetime", body: subscriberJSON("null"), want: true},
		{name: "future expiry", body: subscriberJSON(`"2026-04-10T00:00:00Z"`), want: true},
		{name: "expired", body: subscriberJSON(`"2026-03-01T00:00:00Z"`), want: false},
		{name: "missing", body: subscriberJSON(""), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.EscapedPath() != "/v1/subscribers/device%201" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.EscapedPath())
				}
				if r.Header.Get("Authorization") != "Bearer rc_key" {
					t.Errorf("missing bearer token")
				}
				_, _ = w.Write([]byte(tc.body))
			})
			got, err := c.CheckEntitlement(context.Background())
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestPurchasePostsReceipt(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/receipts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Platform") != DefaultPlatform {
			t.Errorf("missing platform header")
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(subscriberJSON("null")))
	})

	premium, err := c.Purchase(context.Background(), PlanYearly, "tok_123")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !premium {
		t.Fatalf("expected premium after purchase")
	}
	if body["product_id"] != "delusional_leap_yearly" || body["fetch_token"] != "tok_123" || body["app_user_id"] != "device 1" {
		t.Fatalf("unexpected receipt body %v", body)
	}

	if _, err := c.Purchase(context.Background(), PlanMonthly, " "); !errors.Is(err, ErrReceiptRequired) {
		t.Fatalf("expected ErrReceiptRequired, got %v", err)
	}
}

func TestRequestFailures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})
	if _, err := c.CheckEntitlement(context.Background()); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if _, err := NewRevenueCatClient(RevenueCatConfig{}, nil, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestParsePlan(t *testing.T) {
	for raw, want := range map[string]Plan{"monthly": PlanMonthly, "Yearly": PlanYearly, "annual": PlanYearly, "month": PlanMonthly} {
		got, err := ParsePlan(raw)
		if err != nil || got != want {
			t.Fatalf("ParsePlan(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParsePlan("lifetime"); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}

type fakeProvider struct {
	mu       sync.Mutex
	premium  bool
	checkErr error
	buyErr   error
	checks   int
}

func (f *fakeProvider) Purchase(context.Context, Plan, string) (bool, error) {
	return true, f.buyErr
}

func (f *fakeProvider) Restore(ctx context.Context) (bool, error) { return f.CheckEntitlement(ctx) }

func (f *fakeProvider) CheckEntitlement(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.premium, f.checkErr
}

func (f *fakeProvider) PurchaseStreakFreeze(context.Context, string) error { return f.buyErr }

type fakePremiumStore struct {
	mu      sync.Mutex
	premium []bool
	freezes int
}

func (f *fakePremiumStore) SetPremium(_ context.Context, premium bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.premium = append(f.premium, premium)
	return nil
}

func (f *fakePremiumStore) AddFreeze(_ context.Context, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.freezes += n
	return nil
}

func TestWatcherNotifiesOnChangeOnly(t *testing.T) {
	p := &fakeProvider{}
	w := NewWatcher(p, time.Hour, zap.NewNop())
	var got []bool
	w.OnEntitlementChange(func(b bool) { got = append(got, b) })

	w.Poll(context.Background())
	w.Poll(context.Background())
	p.premium = true
	w.Poll(context.Background())
	p.checkErr = errors.New("offline")
	w.Poll(context.Background())

	if len(got) != 2 || got[0] || !got[1] {
		t.Fatalf("unexpected notifications %v", got)
	}
	if premium, known := w.Premium(); !premium || !known {
		t.Fatalf("failed poll should keep last value")
	}
}

func TestWatcherStartPollsImmediately(t *testing.T) {
	p := &fakeProvider{premium: true}
	w := NewWatcher(p, time.Hour, zap.NewNop())
	seen := make(chan bool, 1)
	w.OnEntitlementChange(func(b bool) { seen <- b })

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		if err := w.Stop(); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}()

	select {
	case b := <-seen:
		if !b {
			t.Fatalf("expected premium")
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("watcher never polled")
	}
}

func TestServiceWritesStore(t *testing.T) {
	st := &fakePremiumStore{}
	p := &fakeProvider{}
	s := NewService(p, nil, st, zap.NewNop())

	premium, err := s.Upgrade(context.Background(), PlanMonthly, "tok")
	if err != nil || !premium {
		t.Fatalf("upgrade: %v %v", premium, err)
	}
	if len(st.premium) != 1 || !st.premium[0] {
		t.Fatalf("premium not cached: %v", st.premium)
	}

	if err := s.BuyStreakFreeze(context.Background(), "tok"); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	p.buyErr = errors.New("declined")
	if err := s.BuyStreakFreeze(context.Background(), "tok"); err == nil {
		t.Fatalf("expected purchase error")
	}
	if st.freezes != 1 {
		t.Fatalf("expected exactly one freeze, got %d", st.freezes)
	}

	if _, err := NewService(nil, nil, st, nil).Restore(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
