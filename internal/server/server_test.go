package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/camsort/internal/shared"
	"golang.org/x/oauth2"
)

type mockExchanger struct {
	token *oauth2.Token
	err   error
	codes []string
}

func (m *mockExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.codes = append(m.codes, code)
	if m.err != nil {
		return nil, m.err
	}
	return m.token, nil
}

func callback(t *testing.T, h http.Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/callback?"+query, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestOAuthHandler(t *testing.T) {
	t.Run("exchanges code", func(t *testing.T) {
		ex := &mockExchanger{token: &oauth2.Token{AccessToken: "access"}}
		h := NewOAuthHandler(ex, "", "state-123")

		rec := callback(t, h, "state=state-123&code=abc")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}

		result := <-h.Result()
		if err := result.Error(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Token.AccessToken != "access" {
			t.Errorf("expected access token, got %q", result.Token.AccessToken)
		}
		if len(ex.codes) != 1 || ex.codes[0] != "abc" {
			t.Errorf("expected code abc to be exchanged, got %v", ex.codes)
		}
	})

	t.Run("rejects bad state", func(t *testing.T) {
		ex := &mockExchanger{}
		h := NewOAuthHandler(ex, "/callback", "expected")

		rec := callback(t, h, "state=forged&code=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
		if len(ex.codes) != 0 {
			t.Error("expected no exchange for a forged state")
		}
	})

	t.Run("reports provider error", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "/callback", "s")

		rec := callback(t, h, "state=s&error=access_denied&error_description=user+declined")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied in error, got %v", result.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{err: shared.ErrAuthFailed}, "/callback", "s")

		rec := callback(t, h, "state=s&code=abc")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("handles only one callback", func(t *testing.T) {
		ex := &mockExchanger{token: &oauth2.Token{AccessToken: "access"}}
		h := NewOAuthHandler(ex, "/callback", "s")

		callback(t, h, "state=s&code=first")
		rec := callback(t, h, "state=s&code=second")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
		if len(ex.codes) != 1 {
			t.Errorf("expected a single exchange, got %d", len(ex.codes))
		}
	})

	t.Run("routes", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "/auth/done", "s")
		if got := h.Routes(); len(got) != 1 || got[0] != "/auth/done" {
			t.Errorf("unexpected routes: %v", got)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order: %v", order)
		}
	})

	t.Run("method filtering", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestCallbackAddr(t *testing.T) {
	tests := []struct {
		uri      string
		wantAddr string
		wantPath string
		wantErr  bool
	}{
		{"http://127.0.0.1:3000/callback", "127.0.0.1:3000", "/callback", false},
		{"http://localhost:8888", "localhost:8888", "/", false},
		{"not a url", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			addr, path, err := CallbackAddr(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if addr != tt.wantAddr || path != tt.wantPath {
				t.Errorf("expected %s %s, got %s %s", tt.wantAddr, tt.wantPath, addr, path)
			}
		})
	}
}

func TestCallbackServer(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("returns token from callback", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{token: &oauth2.Token{AccessToken: "live"}}, "/callback", "s")
		srv, err := NewCallbackServer("127.0.0.1:0", h, logger)
		if err != nil {
			t.Fatalf("NewCallbackServer failed: %v", err)
		}

		go func() {
			resp, err := http.Get("http://" + srv.Addr() + "/callback?state=s&code=abc")
			if err == nil {
				resp.Body.Close()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		token, err := srv.Wait(ctx)
		if err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		if token.AccessToken != "live" {
			t.Errorf("expected token live, got %q", token.AccessToken)
		}
	})

	t.Run("times out", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "/callback", "s")
		srv, err := NewCallbackServer("127.0.0.1:0", h, logger)
		if err != nil {
			t.Fatalf("NewCallbackServer failed: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := srv.Wait(ctx); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("address in use", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "/callback", "s")
		first, err := NewCallbackServer("127.0.0.1:0", h, logger)
		if err != nil {
			t.Fatalf("NewCallbackServer failed: %v", err)
		}
		defer first.ln.Close()

		if _, err := NewCallbackServer(first.Addr(), h, logger); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
