package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/equipneeds/pkg/cache"
)

var fastRetry = cache.RetryPolicy{Attempts: 3, Delay: time.Millisecond}

// descriptions stands in for an item description response.
type descriptions struct {
	Archetypes []int `json:"archetypes"`
}

func newTestClient(t *testing.T, c cache.Cache, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	headers := map[string]string{"User-Agent": "equipneeds-test", "Authorization": "Bearer tok"}
	client := NewClient(c, "stt:", time.Hour, headers).
		WithHTTPClient(srv.Client()).
		WithRetryPolicy(fastRetry)
	return client, srv
}

func newFileCache(t *testing.T) *cache.FileCache {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	t.Cleanup(func() { fc.Close() })
	return fc
}

func TestNewClient(t *testing.T) {
	client := NewClient(nil, "stt:", time.Hour, nil)

	if _, ok := client.cache.(cache.NullCache); !ok {
		t.Errorf("nil cache = %T, want NullCache", client.cache)
	}
	if client.retry != cache.DefaultRetryPolicy {
		t.Errorf("retry = %+v, want %+v", client.retry, cache.DefaultRetryPolicy)
	}
	if client.WithRetryPolicy(cache.RetryPolicy{}).retry != cache.DefaultRetryPolicy {
		t.Error("a policy without attempts should be ignored")
	}
	if client.WithRetryPolicy(fastRetry).retry != fastRetry {
		t.Error("WithRetryPolicy did not apply")
	}
}

func TestClientHeaders(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(c *Client, url string) error
		want map[string]string
	}{
		{
			name: "defaults",
			call: func(c *Client, url string) error {
				var v descriptions
				return c.Get(ctx, url, &v)
			},
			want: map[string]string{"User-Agent": "equipneeds-test", "Authorization": "Bearer tok"},
		},
		{
			name: "per request override",
			call: func(c *Client, url string) error {
				var v descriptions
				return c.GetWithHeaders(ctx, url, map[string]string{"Authorization": "Bearer other"}, &v)
			},
			want: map[string]string{"User-Agent": "equipneeds-test", "Authorization": "Bearer other"},
		},
		{
			name: "voyage refresh body",
			call: func(c *Client, url string) error {
				return c.PostJSON(ctx, url, map[string]int{"voyage_status_id": 7}, nil)
			},
			want: map[string]string{"Content-Type": "application/json", "Authorization": "Bearer tok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(chan http.Header, 1)
			client, srv := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
				got <- r.Header.Clone()
				fmt.Fprint(w, `{"archetypes":[1]}`)
			})
			if err := tt.call(client, srv.URL); err != nil {
				t.Fatalf("request error: %v", err)
			}
			h := <-got
			for k, v := range tt.want {
				if h.Get(k) != v {
					t.Errorf("%s = %q, want %q", k, h.Get(k), v)
				}
			}
		})
	}
}

func TestClientCachedKeyLayout(t *testing.T) {
	key := "item/description:" + cache.RefSetKey([]string{"101", "102"})
	tests := []struct {
		name    string
		keyer   cache.Keyer
		wantKey string
	}{
		{"game namespace", nil, "http:stt::" + key},
		{"per player scope", cache.NewScopedKeyer(nil, "player:42:"), "player:42:http:stt::" + key},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fc := newFileCache(t)
			client, srv := newTestClient(t, fc, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"archetypes":[101,102]}`)
			})
			client.WithKeyer(tt.keyer)

			var v descriptions
			if err := client.Cached(ctx, key, false, &v, func() error { return client.Get(ctx, srv.URL, &v) }); err != nil {
				t.Fatalf("Cached() error: %v", err)
			}
			data, ok, err := fc.Get(ctx, tt.wantKey)
			if err != nil || !ok {
				t.Fatalf("no entry under %q (ok=%v, err=%v)", tt.wantKey, ok, err)
			}
			var stored descriptions
			if err := json.Unmarshal(data, &stored); err != nil || !slices.Equal(stored.Archetypes, []int{101, 102}) {
				t.Errorf("stored = %s", data)
			}
		})
	}
}

func TestClientCachedRetriesTransientStatus(t *testing.T) {
	tests := []struct {
		name          string
		statuses      []int // replies before the API recovers
		wantCalls     int32
		wantErr       error
		wantRetryable bool
	}{
		{name: "rate limited once", statuses: []int{429}, wantCalls: 2},
		{name: "server errors twice", statuses: []int{500, 503}, wantCalls: 3},
		{name: "attempts exhausted", statuses: []int{502, 502, 502}, wantCalls: 3, wantErr: ErrNetwork, wantRetryable: true},
		{name: "not found", statuses: []int{404}, wantCalls: 1, wantErr: ErrNotFound},
		{name: "bad request", statuses: []int{400}, wantCalls: 1, wantErr: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			var calls atomic.Int32
			client, srv := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
				n := int(calls.Add(1))
				if n <= len(tt.statuses) {
					w.WriteHeader(tt.statuses[n-1])
					return
				}
				fmt.Fprint(w, `{"archetypes":[7]}`)
			})

			var v descriptions
			err := client.Cached(ctx, "item/description:7", false, &v, func() error { return client.Get(ctx, srv.URL, &v) })
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.wantErr == nil {
				if err != nil || !slices.Equal(v.Archetypes, []int{7}) {
					t.Errorf("Cached() = %v, %v; want [7]", v.Archetypes, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if cache.IsRetryable(err) != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", cache.IsRetryable(err), tt.wantRetryable)
			}
		})
	}
}

// A failed batch must not be cached, so each half of a split batch is
// fetched on its own and a healthy half is cached.
func TestClientFailedBatchLeavesHalvesFetchable(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	client, srv := newTestClient(t, newFileCache(t), func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		ids := r.URL.Query().Get("ids")
		if strings.Contains(ids, "13") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `{"archetypes":[%s]}`, ids)
	})
	fetch := func(refs ...int) (descriptions, error) {
		var v descriptions
		ids := JoinInts(refs)
		err := client.Cached(ctx, "item/description:"+ids, false, &v, func() error {
			return client.Get(ctx, srv.URL+"?ids="+ids, &v)
		})
		return v, err
	}

	if _, err := fetch(12, 13); !cache.IsRetryable(err) {
		t.Fatalf("batch error = %v, want retryable", err)
	}
	if got := int(calls.Load()); got != fastRetry.Attempts {
		t.Errorf("calls = %d, want %d", got, fastRetry.Attempts)
	}

	got, err := fetch(12)
	if err != nil || !slices.Equal(got.Archetypes, []int{12}) {
		t.Errorf("healthy half = %v, %v", got.Archetypes, err)
	}
	if _, err := fetch(13); !errors.Is(err, ErrNetwork) {
		t.Errorf("poisoned half error = %v, want ErrNetwork", err)
	}

	before := calls.Load()
	if _, err := fetch(12); err != nil {
		t.Fatalf("cached half error: %v", err)
	}
	if calls.Load() != before {
		t.Error("healthy half should be served from cache")
	}
}

func TestClientCachedRefresh(t *testing.T) {
	ctx := context.Background()
	client := NewClient(newFileCache(t), "stt:", time.Hour, nil)

	calls := 0
	fetch := func(v *descriptions) func() error {
		return func() error {
			calls++
			v.Archetypes = []int{calls}
			return nil
		}
	}
	get := func(refresh bool) []int {
		t.Helper()
		var v descriptions
		if err := client.Cached(ctx, "item/description:1", refresh, &v, fetch(&v)); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
		return v.Archetypes
	}

	if got := get(false); !slices.Equal(got, []int{1}) {
		t.Errorf("first = %v", got)
	}
	if got := get(false); !slices.Equal(got, []int{1}) || calls != 1 {
		t.Errorf("second = %v after %d fetches, want the cached [1]", got, calls)
	}
	if got := get(true); !slices.Equal(got, []int{2}) {
		t.Errorf("refresh = %v, want [2]", got)
	}
	if got := get(false); !slices.Equal(got, []int{2}) || calls != 2 {
		t.Errorf("after refresh = %v, want the refreshed [2]", got)
	}
}

func TestClientCachedUnreadableEntryRefetches(t *testing.T) {
	ctx := context.Background()
	fc := newFileCache(t)
	if err := fc.Set(ctx, "http:stt::item/description:5", []byte("{broken"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	client := NewClient(fc, "stt:", time.Hour, nil)

	calls := 0
	var v descriptions
	err := client.Cached(ctx, "item/description:5", false, &v, func() error {
		calls++
		v.Archetypes = []int{5}
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("Cached() = %v after %d fetches, want one fetch", err, calls)
	}
}

func TestClientCachedNilCache(t *testing.T) {
	client := NewClient(nil, "stt:", time.Hour, nil)

	calls := 0
	var v descriptions
	for range 2 {
		err := client.Cached(context.Background(), "item/description:1", false, &v, func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 with caching disabled", calls)
	}
}

func TestClientPostJSON(t *testing.T) {
	body := make(chan map[string]int, 1)
	client, srv := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var got map[string]int
		json.NewDecoder(r.Body).Decode(&got)
		body <- got
		fmt.Fprint(w, `{"action":"update"}`)
	})

	var resp map[string]string
	if err := client.PostJSON(context.Background(), srv.URL, map[string]int{"voyage_status_id": 7}, &resp); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if got := <-body; got["voyage_status_id"] != 7 {
		t.Errorf("body = %v, want voyage_status_id 7", got)
	}
	if resp["action"] != "update" {
		t.Errorf("response = %v", resp)
	}
}

func TestClientGetBadJSON(t *testing.T) {
	client, srv := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	})

	var v descriptions
	err := client.Get(context.Background(), srv.URL, &v)
	if err == nil {
		t.Fatal("Get() should fail on malformed JSON")
	}
	if cache.IsRetryable(err) {
		t.Error("decode errors should not be retryable")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		want      error
		retryable bool
	}{
		{http.StatusOK, nil, false},
		{http.StatusNoContent, nil, false},
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusBadRequest, ErrNetwork, false},
		{http.StatusForbidden, ErrNetwork, false},
		{http.StatusTooManyRequests, ErrNetwork, true},
		{http.StatusInternalServerError, ErrNetwork, true},
		{http.StatusServiceUnavailable, ErrNetwork, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := checkStatus(tt.code)
			if tt.want == nil {
				if err != nil {
					t.Errorf("checkStatus(%d) = %v, want nil", tt.code, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.want)
			}
			if cache.IsRetryable(err) != tt.retryable {
				t.Errorf("checkStatus(%d) retryable = %v, want %v", tt.code, cache.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestJoinInts(t *testing.T) {
	tests := []struct {
		name  string
		input []int
		want  string
	}{
		{"empty", nil, ""},
		{"single", []int{42}, "42"},
		{"several", []int{3, 1, 2}, "3,1,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinInts(tt.input); got != tt.want {
				t.Errorf("JoinInts(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
