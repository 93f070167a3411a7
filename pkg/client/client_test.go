package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"succeeded": true, "messages": []string{}, "data": data})
}

func writeFailure(w http.ResponseWriter, status int, code string, messages ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"succeeded": false,
		"messages":  messages,
		"data":      nil,
		"code":      code,
		"requestId": "req-1",
	})
}

func tokenPair(access, refresh string) map[string]any {
	return map[string]any{
		"accessToken":           access,
		"refreshToken":          refresh,
		"accessTokenExpiresAt":  time.Now().Add(15 * time.Minute),
		"refreshTokenExpiresAt": time.Now().Add(7 * 24 * time.Hour),
		"tokenType":             "Bearer",
	}
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	_, err = New("ftp://example.com")
	assert.Error(t, err)

	c, err := New("http://localhost:8080/api/", WithUserAgent("test"))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL())
	assert.NotNil(t, c.Items)
	assert.NotNil(t, c.PurchaseOrders)
}

func TestAuthenticate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Account/authenticate", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret-pass" {
			writeFailure(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		data := tokenPair("access-1", "refresh-1")
		data["user"] = map[string]any{"id": 1, "username": body["username"], "role": "admin", "isActive": true}
		writeData(w, http.StatusOK, data)
	})
	mux.HandleFunc("/api/Account/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeData(w, http.StatusOK, map[string]any{"id": 1, "username": "admin", "role": "admin"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	t.Run("bad password", func(t *testing.T) {
		_, err := c.Authenticate(ctx, "admin", "wrong")
		var apiErr *ApiError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
		_, ok := c.tokens.Get()
		assert.False(t, ok)
	})

	t.Run("stores the pair and sends the bearer token", func(t *testing.T) {
		login, err := c.Authenticate(ctx, "admin", "secret-pass")
		require.NoError(t, err)
		assert.Equal(t, "admin", login.User.Username)

		stored, ok := c.tokens.Get()
		require.True(t, ok)
		assert.Equal(t, "refresh-1", stored.RefreshToken)

		me, err := c.Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint(1), me.ID)
	})
}

func TestApiError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusConflict, "CONCURRENCY_CONFLICT", "Record was modified", "Reload and retry")
	}))

	_, err := c.Items.Update(context.Background(), 3, ItemRequest{Code: "HNG-001", Name: "Hinge"})
	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "req-1", apiErr.RequestID)
	assert.Equal(t, []string{"Record was modified", "Reload and retry"}, apiErr.Messages)
	assert.Contains(t, err.Error(), "Record was modified; Reload and retry")
	assert.True(t, IsCode(err, "CONCURRENCY_CONFLICT"))
	assert.False(t, IsCode(errors.New("other"), "CONCURRENCY_CONFLICT"))
}

func TestNonEnvelopeFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := c.Categories.GetByID(context.Background(), 1)
	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Code)
	assert.Equal(t, []string{"bad gateway"}, apiErr.Messages)
}

func TestRefreshOnExpiredToken(t *testing.T) {
	var refreshes, calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Account/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refreshToken"])
		writeData(w, http.StatusOK, tokenPair("access-2", "refresh-2"))
	})
	mux.HandleFunc("/api/Customer/Create", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeFailure(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
			return
		}
		var req ContactRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeData(w, http.StatusCreated, map[string]any{"id": 7, "name": req.Name})
	})

	store := NewMemoryTokenStore()
	store.Set(Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"})
	c := newTestClient(t, mux, WithTokenStore(store))

	customer, err := c.Customers.Create(context.Background(), ContactRequest{Name: "Acme Doors"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), customer.ID)
	assert.Equal(t, "Acme Doors", customer.Name)
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, int32(2), calls.Load())

	stored, _ := store.Get()
	assert.Equal(t, "refresh-2", stored.RefreshToken)
}

func TestFailedRefreshClearsTokens(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Account/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid refresh token")
	})
	mux.HandleFunc("/api/Supplier/GetById/2", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeFailure(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
	})

	store := NewMemoryTokenStore()
	store.Set(Tokens{AccessToken: "access-1", RefreshToken: "revoked"})
	c := newTestClient(t, mux, WithTokenStore(store))

	_, err := c.Suppliers.GetByID(context.Background(), 2)
	assert.True(t, IsCode(err, "INVALID_TOKEN"))
	assert.Equal(t, int32(1), calls.Load())
	_, ok := store.Get()
	assert.False(t, ok)

	t.Run("without a refresh token", func(t *testing.T) {
		err := c.Refresh(context.Background())
		assert.True(t, IsCode(err, "UNAUTHORIZED"))
	})
}

func TestCancelledRefreshKeepsTokens(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Account/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeData(w, http.StatusOK, tokenPair("access-2", "refresh-2"))
	})

	store := NewMemoryTokenStore()
	store.Set(Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"})
	c := newTestClient(t, mux, WithTokenStore(store))

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := c.Refresh(ctx)
		assert.ErrorIs(t, err, context.Canceled)

		tokens, ok := store.Get()
		require.True(t, ok)
		assert.Equal(t, "refresh-1", tokens.RefreshToken)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		err := c.Refresh(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		_, ok := store.Get()
		assert.True(t, ok)
	})

	t.Run("next refresh still works", func(t *testing.T) {
		require.NoError(t, c.Refresh(context.Background()))
		tokens, _ := store.Get()
		assert.Equal(t, "refresh-2", tokens.RefreshToken)
		assert.Equal(t, int32(1), refreshes.Load())
	})
}

func TestOtherUnauthorizedIsNotRetried(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Account/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeData(w, http.StatusOK, tokenPair("a", "r"))
	})
	mux.HandleFunc("/api/Item/Delete/4", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusForbidden, "FORBIDDEN", "Admin role required")
	})
	store := NewMemoryTokenStore()
	store.Set(Tokens{AccessToken: "staff", RefreshToken: "r"})
	c := newTestClient(t, mux, WithTokenStore(store))

	err := c.Items.Delete(context.Background(), 4)
	assert.True(t, IsCode(err, "FORBIDDEN"))
	assert.Zero(t, refreshes.Load())
}

func itemPage(ids ...uint) map[string]any {
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]any{"id": id, "code": "ITM", "unitCost": "12.50"})
	}
	return map[string]any{"items": items, "totalCount": len(ids), "page": 1, "pageSize": 20, "totalPages": 1}
}

func TestListCache(t *testing.T) {
	var itemLists, pickLists, pickListReads atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Item/GetAll", func(w http.ResponseWriter, r *http.Request) {
		itemLists.Add(1)
		writeData(w, http.StatusOK, itemPage(1, 2))
	})
	mux.HandleFunc("/api/Item/Create", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusCreated, map[string]any{"id": 3})
	})
	mux.HandleFunc("/api/PickList/GetAll", func(w http.ResponseWriter, r *http.Request) {
		pickLists.Add(1)
		writeData(w, http.StatusOK, map[string]any{"items": []any{}, "totalCount": 0, "page": 1, "pageSize": 20, "totalPages": 0})
	})
	mux.HandleFunc("/api/PickList/Complete/5", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"id": 5, "status": "completed"})
	})
	mux.HandleFunc("/api/PickList/GetById/5", func(w http.ResponseWriter, r *http.Request) {
		pickListReads.Add(1)
		writeData(w, http.StatusOK, map[string]any{"id": 5, "status": "open"})
	})
	mux.HandleFunc("/api/Customer/Update/1", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"id": 1, "name": "Renamed"})
	})
	mux.HandleFunc("/api/PurchaseOrder/Delete/9", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeData(w, http.StatusOK, nil)
	})
	c := newTestClient(t, mux, WithCacheTTL(time.Minute))
	ctx := context.Background()

	page, err := c.Items.GetAll(ctx, ListOptions{Search: "hinge"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "12.5", page.Items[0].UnitCost.String())

	_, err = c.Items.GetAll(ctx, ListOptions{Search: "hinge"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), itemLists.Load(), "same query is served from cache")

	_, err = c.Items.GetAll(ctx, ListOptions{Search: "lock"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), itemLists.Load(), "another query misses")

	_, err = c.Items.Create(ctx, ItemRequest{Code: "LCK-009", Name: "Lock"})
	require.NoError(t, err)
	_, err = c.Items.GetAll(ctx, ListOptions{Search: "hinge"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), itemLists.Load(), "create invalidates the item lists")

	t.Run("stock actions invalidate items", func(t *testing.T) {
		_, err := c.PickLists.GetAll(ctx, ListOptions{})
		require.NoError(t, err)
		before := itemLists.Load()

		_, err = c.PickLists.Complete(ctx, 5)
		require.NoError(t, err)

		_, err = c.Items.GetAll(ctx, ListOptions{Search: "hinge"})
		require.NoError(t, err)
		assert.Equal(t, before+1, itemLists.Load())
		_, err = c.PickLists.GetAll(ctx, ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, int32(2), pickLists.Load())
	})

	t.Run("deleting an order drops cached pick lists", func(t *testing.T) {
		before := pickListReads.Load()
		_, err := c.PickLists.GetByID(ctx, 5)
		require.NoError(t, err)
		_, err = c.PickLists.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, before+1, pickListReads.Load())

		require.NoError(t, c.PurchaseOrders.Delete(ctx, 9))

		_, err = c.PickLists.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, before+2, pickListReads.Load())
	})

	t.Run("renaming a customer drops cached pick lists", func(t *testing.T) {
		before := pickListReads.Load()
		_, err := c.PickLists.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, before, pickListReads.Load(), "still cached")

		_, err = c.Customers.Update(ctx, 1, ContactRequest{Name: "Renamed"})
		require.NoError(t, err)

		_, err = c.PickLists.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, before+1, pickListReads.Load())
	})
}

func TestCacheDisabled(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		writeData(w, http.StatusOK, map[string]any{"items": []any{}, "page": 2})
	}), WithCacheTTL(0))

	opts := ListOptions{Page: 2, Filters: map[string]string{"status": "open"}}
	for range 2 {
		_, err := c.PickLists.GetAll(context.Background(), opts)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestItemImport(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Item/Import", r.URL.Path)
		assert.Equal(t, "upsert", r.URL.Query().Get("mode"))
		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "items.csv", fh.Filename)
		content, _ := io.ReadAll(f)
		assert.Contains(t, string(content), "HNG-001")
		writeData(w, http.StatusOK, map[string]any{
			"total": 2, "created": 1, "updated": 0, "skipped": 1,
			"errors": []map[string]any{{"row": 3, "column": "unitCost", "code": "INVALID_DECIMAL", "message": "not a number"}},
		})
	}))

	csv := "code,name,unitCost\nHNG-001,Hinge,4.20\nHNG-002,Hinge,abc\n"
	res, err := c.Items.Import(context.Background(), "items.csv", strings.NewReader(csv), "upsert")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
}

func TestDownloads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Customer/Export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		assert.Empty(t, r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="customers.csv"`)
		_, _ = w.Write([]byte("id,name\n1,Acme\n"))
	})
	mux.HandleFunc("/api/PickList/Print/9", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("store") == "true" {
			writeData(w, http.StatusOK, map[string]any{"key": "pick-lists/PL-000009.pdf", "url": "http://minio/pl"})
			return
		}
		writeFailure(w, http.StatusServiceUnavailable, "RENDERER_UNAVAILABLE", "PDF rendering is disabled")
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	f, err := c.Customers.Export(ctx, "csv", ListOptions{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", f.ContentType)
	assert.Contains(t, f.ContentDisposition, "customers.csv")
	assert.Equal(t, "id,name\n1,Acme\n", string(f.Content))

	_, err = c.PickLists.Print(ctx, 9, "pdf")
	assert.True(t, IsCode(err, "RENDERER_UNAVAILABLE"))

	doc, err := c.PickLists.PrintToStorage(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "pick-lists/PL-000009.pdf", doc.Key)
}
