package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/camsort/internal/shared"
	tu "github.com/desertthunder/camsort/internal/testing"
	"golang.org/x/time/rate"
)

func newTestLookup(t *testing.T, url string) *GetSongBPMService {
	t.Helper()
	srv, err := NewGetSongBPMService(GetSongBPMOpts{
		APIKey:      "key",
		BaseURL:     url,
		Timeout:     time.Second,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv
}

func TestGetSongBPMService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Requires API Key", func(t *testing.T) {
			if _, err := NewGetSongBPMService(GetSongBPMOpts{}); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			srv, err := NewGetSongBPMService(GetSongBPMOpts{APIKey: "k"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.baseURL != defaultGetSongBPMURL || srv.httpClient != http.DefaultClient || srv.timeout != defaultLookupTimeout {
				t.Errorf("unexpected defaults: %+v", srv)
			}
		})
	})

	t.Run("Search URL", func(t *testing.T) {
		srv := newTestLookup(t, "https://api.getsong.co/")
		got := srv.searchURL("Song", "Artist")
		for _, want := range []string{"https://api.getsong.co/search/?", "api_key=key", "type=both", "limit=1", "lookup=song%3ASong+artist%3AArtist"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in %s", want, got)
			}
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search/" {
					t.Errorf("expected path /search/, got %s", r.URL.Path)
				}
				if r.URL.Query().Get("lookup") != "song:Song artist:Artist" {
					t.Errorf("unexpected lookup %q", r.URL.Query().Get("lookup"))
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"search":[{"title":"Song","artist":{"name":"Artist"},"tempo":"124","key_of":"F♯m"}]}`)
			}))
			defer server.Close()

			res, err := newTestLookup(t, server.URL).Lookup(context.Background(), "Song", "Artist")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if res.Tempo != 124 || res.KeyText != "F♯m" || res.Artist != "Artist" {
				t.Errorf("unexpected result: %+v", res)
			}
		})

		t.Run("Non-2xx Is Unavailable", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			_, err := newTestLookup(t, server.URL).Lookup(context.Background(), "Song", "Artist")
			if !errors.Is(err, shared.ErrLookupUnavailable) {
				t.Errorf("expected ErrLookupUnavailable, got %v", err)
			}
		})

		t.Run("Retries Server Errors", func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if attempts.Add(1) == 1 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				_, _ = io.WriteString(w, `{"search":[{"tempo":100,"key_of":"8A"}]}`)
			}))
			defer server.Close()

			res, err := newTestLookup(t, server.URL).Lookup(context.Background(), "Song", "Artist")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if res.Tempo != 100 || attempts.Load() != 2 {
				t.Errorf("expected success on second attempt, got %+v after %d", res, attempts.Load())
			}
		})

		t.Run("Retries Exhausted", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			_, err := newTestLookup(t, server.URL).Lookup(context.Background(), "Song", "Artist")
			if !errors.Is(err, shared.ErrLookupUnavailable) {
				t.Errorf("expected ErrLookupUnavailable, got %v", err)
			}
		})

		t.Run("Timeout Is Unavailable", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			}))
			defer server.Close()

			srv := newTestLookup(t, server.URL)
			srv.timeout = 20 * time.Millisecond

			_, err := srv.Lookup(context.Background(), "Song", "Artist")
			if !errors.Is(err, shared.ErrLookupUnavailable) {
				t.Errorf("expected ErrLookupUnavailable, got %v", err)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			srv := newTestLookup(t, "http://example.invalid")
			srv.httpClient = &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			_, err := srv.Lookup(context.Background(), "Song", "Artist")
			if !errors.Is(err, shared.ErrLookupUnavailable) {
				t.Errorf("expected ErrLookupUnavailable, got %v", err)
			}
		})

		t.Run("Body Read Error", func(t *testing.T) {
			srv := newTestLookup(t, "http://example.invalid")
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			srv.httpClient = &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

			_, err := srv.Lookup(context.Background(), "Song", "Artist")
			if !errors.Is(err, shared.ErrLookupUnavailable) {
				t.Errorf("expected ErrLookupUnavailable, got %v", err)
			}
		})
	})
}

func TestParseSearchPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		tempo   float64
	}{
		{"Numeric Tempo", `{"search":[{"tempo":128.5,"key_of":"Am"}]}`, nil, 128.5},
		{"String Tempo", `{"search":[{"tempo":"97","key_of":"5B"}]}`, nil, 97},
		{"First Result Wins", `{"search":[{"tempo":90,"key_of":"C"},{"tempo":140,"key_of":"D"}]}`, nil, 90},
		{"Error Object", `{"search":{"error":"no result"}}`, shared.ErrNoResultFound, 0},
		{"Empty List", `{"search":[]}`, shared.ErrNoResultFound, 0},
		{"Invalid JSON", `{"search":`, shared.ErrMalformedLookupPayload, 0},
		{"Missing Search", `{"result":[]}`, shared.ErrMalformedLookupPayload, 0},
		{"Search Scalar", `{"search":"nope"}`, shared.ErrMalformedLookupPayload, 0},
		{"Unparsable Tempo", `{"search":[{"tempo":"fast","key_of":"C"}]}`, shared.ErrMalformedLookupPayload, 0},
		{"Zero Tempo", `{"search":[{"tempo":0,"key_of":"C"}]}`, shared.ErrMalformedLookupPayload, 0},
		{"NaN Tempo", `{"search":[{"tempo":"NaN","key_of":"C"}]}`, shared.ErrMalformedLookupPayload, 0},
		{"Missing Key", `{"search":[{"tempo":120}]}`, shared.ErrMalformedLookupPayload, 0},
		{"Unparsable Key", `{"search":[{"tempo":120,"key_of":"XYZ"}]}`, shared.ErrMalformedLookupPayload, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseSearchPayload([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Tempo != tt.tempo {
				t.Errorf("tempo = %v, want %v", res.Tempo, tt.tempo)
			}
		})
	}

	t.Run("Payload Attached", func(t *testing.T) {
		body := `{"search":[{"tempo":"fast","key_of":"C"}]}`
		_, err := ParseSearchPayload([]byte(body))

		var pe *PayloadError
		if !errors.As(err, &pe) {
			t.Fatalf("expected PayloadError, got %T", err)
		}
		if pe.Payload != body {
			t.Errorf("expected payload to be attached, got %q", pe.Payload)
		}
	})
}

func TestRetryPolicy(t *testing.T) {
	tests := []struct {
		name             string
		statuses         []int
		maxRetries       int
		expectedStatus   int
		expectedAttempts int
		expectErr        bool
	}{
		{"Retries 503 Then Succeeds", []int{503, 503, 200}, 3, 200, 3, false},
		{"Exhausts Retries On 429", []int{429}, 2, 0, 2, true},
		{"Does Not Retry 404", []int{404}, 3, 404, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				status := tt.statuses[len(tt.statuses)-1]
				if attempts <= len(tt.statuses) {
					status = tt.statuses[attempts-1]
				}
				w.WriteHeader(status)
			}))
			defer ts.Close()

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			if err != nil {
				t.Fatalf("create request: %v", err)
			}

			p := retryPolicy{maxRetries: tt.maxRetries, baseBackoff: time.Millisecond}
			resp, err := p.do(http.DefaultClient, req)
			if (err != nil) != tt.expectErr {
				t.Fatalf("expected error: %v, got: %v", tt.expectErr, err)
			}
			if resp != nil {
				defer resp.Body.Close()
				if resp.StatusCode != tt.expectedStatus {
					t.Fatalf("status: got %d, want %d", resp.StatusCode, tt.expectedStatus)
				}
			}
			if attempts != tt.expectedAttempts {
				t.Fatalf("attempts: got %d, want %d", attempts, tt.expectedAttempts)
			}
		})
	}

	t.Run("Rate Limit Applies To Retries", func(t *testing.T) {
		attempts := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
		if err != nil {
			t.Fatalf("create request: %v", err)
		}

		// One token up front, the next one long after the deadline.
		p := retryPolicy{maxRetries: 3, baseBackoff: time.Millisecond, limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}
		resp, err := p.do(http.DefaultClient, req)
		if err == nil {
			resp.Body.Close()
			t.Fatal("expected the retry to be blocked by the rate limiter")
		}
		if attempts != 1 {
			t.Errorf("attempts: got %d, want 1", attempts)
		}
	})

	t.Run("Retry-After Header", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"2"}}}
		if got := parseRetryAfter(resp); got != 2*time.Second {
			t.Errorf("expected 2s, got %v", got)
		}
		if got := parseRetryAfter(&http.Response{Header: http.Header{}}); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}
