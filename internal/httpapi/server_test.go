package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bakery/internal/sqlite"
	"github.com/mesh-intelligence/bakery/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupServer attaches a SQLite store in a temp dir and builds a Server on it.
func setupServer(t *testing.T) (*Server, *sqlite.Backend) {
	t.Helper()
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(context.Background(), types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { store.Detach() })
	return New(store, Options{Logger: quietLogger()}), store
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	return do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, s, req)
}

func patchJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, s, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// seedBakery creates a bakery with the given goods directly in the store.
func seedBakery(t *testing.T, store *sqlite.Backend, name string, goods ...types.BakedGood) *types.Bakery {
	t.Helper()
	ctx := context.Background()
	bakery, err := store.CreateBakery(ctx, name)
	require.NoError(t, err)
	for _, g := range goods {
		g.BakeryID = bakery.ID
		_, err := store.CreateBakedGood(ctx, g)
		require.NoError(t, err)
	}
	return bakery
}

func TestHome(t *testing.T) {
	s, _ := setupServer(t)
	rec := get(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<h1>Bakery GET-POST-PATCH-DELETE API</h1>", rec.Body.String())
}

func TestListBakeries(t *testing.T) {
	s, store := setupServer(t)

	rec := get(t, s, "/bakeries")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	seedBakery(t, store, "Delightful donuts", types.BakedGood{Name: "Chocolate dipped donut", Price: 4})
	seedBakery(t, store, "Incredible crullers")

	rec = get(t, s, "/bakeries")
	require.Equal(t, http.StatusOK, rec.Code)
	bakeries := decode[[]types.Bakery](t, rec)
	require.Len(t, bakeries, 2)
	assert.Equal(t, "Delightful donuts", bakeries[0].Name)
	assert.Len(t, bakeries[0].BakedGoods, 1)
	assert.Empty(t, bakeries[1].BakedGoods)
}

func TestGetBakery(t *testing.T) {
	s, store := setupServer(t)
	bakery := seedBakery(t, store, "Delightful donuts",
		types.BakedGood{Name: "Chocolate dipped donut", Price: 4},
		types.BakedGood{Name: "Apple-spice filled donut", Price: 5},
	)

	t.Run("existing id", func(t *testing.T) {
		rec := get(t, s, idPath("/bakeries", bakery.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[map[string]any](t, rec)
		assert.Equal(t, "Delightful donuts", got["name"])
		goods, ok := got["baked_goods"].([]any)
		require.True(t, ok)
		assert.Len(t, goods, 2)
	})

	t.Run("response is indented", func(t *testing.T) {
		rec := get(t, s, idPath("/bakeries", bakery.ID))
		assert.Contains(t, rec.Body.String(), "\n    \"name\"")
	})

	signed := "/bakeries/+" + strconv.FormatInt(bakery.ID, 10)
	for _, path := range []string{"/bakeries/999", "/bakeries/abc", "/bakeries/-1", signed, "/bakeries/%201"} {
		t.Run("not found "+path, func(t *testing.T) {
			rec := get(t, s, path)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "Bakery not found", errorMessage(t, rec))
		})
	}
}

func TestBakedGoodsByPrice(t *testing.T) {
	s, store := setupServer(t)
	seedBakery(t, store, "Delightful donuts",
		types.BakedGood{Name: "Donut hole", Price: 1},
		types.BakedGood{Name: "Cake", Price: 20},
	)
	seedBakery(t, store, "Incredible crullers",
		types.BakedGood{Name: "Cruller", Price: 3.5},
		types.BakedGood{Name: "Twist", Price: 3.5},
	)

	rec := get(t, s, "/baked_goods/by_price")
	require.Equal(t, http.StatusOK, rec.Code)
	goods := decode[[]types.BakedGood](t, rec)
	require.Len(t, goods, 4)
	for i := 1; i < len(goods); i++ {
		assert.GreaterOrEqual(t, goods[i-1].Price, goods[i].Price)
	}
	require.NotNil(t, goods[0].Bakery)
	assert.Equal(t, "Delightful donuts", goods[0].Bakery.Name)
	assert.Less(t, goods[1].ID, goods[2].ID, "equal prices are ordered by id")

	top := get(t, s, "/baked_goods/most_expensive")
	require.Equal(t, http.StatusOK, top.Code)
	assert.Equal(t, goods[0].ID, decode[types.BakedGood](t, top).ID)
}

func TestMostExpensiveOnEmptyTable(t *testing.T) {
	s, _ := setupServer(t)

	rec := get(t, s, "/baked_goods/most_expensive")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No baked goods found", errorMessage(t, rec))

	rec = get(t, s, "/baked_goods/by_price")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateBakedGood(t *testing.T) {
	s, store := setupServer(t)
	bakery := seedBakery(t, store, "Delightful donuts")
	bakeryID := strconv.FormatInt(bakery.ID, 10)

	t.Run("croissant", func(t *testing.T) {
		rec := postForm(t, s, "/baked_goods", url.Values{
			"name":      {"Croissant"},
			"price":     {"3"},
			"bakery_id": {bakeryID},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode[types.BakedGood](t, rec)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Croissant", created.Name)
		assert.Equal(t, 3.0, created.Price)
		require.NotNil(t, created.Bakery)
		assert.Equal(t, "Delightful donuts", created.Bakery.Name)

		got := decode[types.Bakery](t, get(t, s, idPath("/bakeries", bakery.ID)))
		require.Len(t, got.BakedGoods, 1)
		assert.Equal(t, created.ID, got.BakedGoods[0].ID)
	})

	t.Run("multipart form", func(t *testing.T) {
		body := &strings.Builder{}
		body.WriteString("--x\r\nContent-Disposition: form-data; name=\"name\"\r\n\r\nBagel\r\n")
		body.WriteString("--x\r\nContent-Disposition: form-data; name=\"price\"\r\n\r\n2.25\r\n")
		body.WriteString("--x\r\nContent-Disposition: form-data; name=\"bakery_id\"\r\n\r\n" + bakeryID + "\r\n")
		body.WriteString("--x--\r\n")
		req := httptest.NewRequest(http.MethodPost, "/baked_goods", strings.NewReader(body.String()))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

		rec := do(t, s, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 2.25, decode[types.BakedGood](t, rec).Price)
	})

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{
			name:    "missing name",
			form:    url.Values{"price": {"3"}, "bakery_id": {bakeryID}},
			wantMsg: "Missing form field: name",
		},
		{
			name:    "missing price",
			form:    url.Values{"name": {"Croissant"}, "bakery_id": {bakeryID}},
			wantMsg: "Missing form field: price",
		},
		{
			name:    "missing bakery_id",
			form:    url.Values{"name": {"Croissant"}, "price": {"3"}},
			wantMsg: "Missing form field: bakery_id",
		},
		{
			name:    "non-numeric price",
			form:    url.Values{"name": {"Croissant"}, "price": {"cheap"}, "bakery_id": {bakeryID}},
			wantMsg: "Invalid price",
		},
		{
			name:    "NaN price",
			form:    url.Values{"name": {"Croissant"}, "price": {"NaN"}, "bakery_id": {bakeryID}},
			wantMsg: "Invalid price",
		},
		{
			name:    "non-integer bakery_id",
			form:    url.Values{"name": {"Croissant"}, "price": {"3"}, "bakery_id": {"one"}},
			wantMsg: "Invalid bakery_id",
		},
		{
			name:    "unknown bakery",
			form:    url.Values{"name": {"Croissant"}, "price": {"3"}, "bakery_id": {"999"}},
			wantMsg: "Bakery not found",
		},
		{
			name:    "empty name",
			form:    url.Values{"name": {""}, "price": {"3"}, "bakery_id": {bakeryID}},
			wantMsg: "Invalid name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := decode[[]types.BakedGood](t, get(t, s, "/baked_goods/by_price"))

			rec := postForm(t, s, "/baked_goods", tt.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, rec))

			after := decode[[]types.BakedGood](t, get(t, s, "/baked_goods/by_price"))
			assert.Len(t, after, len(before), "rejected requests write nothing")
		})
	}
}

func TestUpdateBakery(t *testing.T) {
	s, store := setupServer(t)
	bakery := seedBakery(t, store, "Delightful donuts")
	path := idPath("/bakeries", bakery.ID)

	for _, body := range []string{
		`{}`, `{"name": ""}`, `{"name": null}`, `{"name": false}`, `{"name": 0}`, `{"name": 0.0}`,
		`{"name": []}`, `{"name": {"first": "x"}}`, `not json`, ``,
	} {
		t.Run("no valid fields "+body, func(t *testing.T) {
			rec := patchJSON(t, s, path, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "No valid fields to update", errorMessage(t, rec))

			got := decode[types.Bakery](t, get(t, s, path))
			assert.Equal(t, "Delightful donuts", got.Name)
			assert.Nil(t, got.UpdatedAt)
		})
	}

	t.Run("unknown id wins over bad body", func(t *testing.T) {
		rec := patchJSON(t, s, "/bakeries/999", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bakery not found", errorMessage(t, rec))
	})

	t.Run("rename", func(t *testing.T) {
		rec := patchJSON(t, s, path, `{"name": "Dazzling donuts", "id": 500}`)
		require.Equal(t, http.StatusOK, rec.Code)
		updated := decode[types.Bakery](t, rec)
		assert.Equal(t, bakery.ID, updated.ID, "only name is mutable")
		assert.Equal(t, "Dazzling donuts", updated.Name)
		assert.NotNil(t, updated.UpdatedAt)

		got := decode[types.Bakery](t, get(t, s, path))
		assert.Equal(t, "Dazzling donuts", got.Name)
	})

	for body, want := range map[string]string{
		`{"name": 7}`:                    "7",
		`{"name": 2.50}`:                 "2.50",
		`{"name": 12345678901234567890}`: "12345678901234567890",
		`{"name": true}`:                 "true",
	} {
		t.Run("scalar name "+body, func(t *testing.T) {
			rec := patchJSON(t, s, path, body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, want, decode[types.Bakery](t, rec).Name)
		})
	}
}

func TestConcurrentCreateBakedGood(t *testing.T) {
	s, store := setupServer(t)
	bakery := seedBakery(t, store, "Delightful donuts")
	form := url.Values{
		"name":      {"Croissant"},
		"price":     {"3"},
		"bakery_id": {strconv.FormatInt(bakery.ID, 10)},
	}

	const clients, perClient = 16, 10
	codes := make(chan int, clients*perClient)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perClient; j++ {
				codes <- postForm(t, s, "/baked_goods", form).Code
			}
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusCreated, code)
	}
	got := decode[types.Bakery](t, get(t, s, idPath("/bakeries", bakery.ID)))
	assert.Len(t, got.BakedGoods, clients*perClient)
}

func TestDeleteBakedGood(t *testing.T) {
	s, store := setupServer(t)
	seedBakery(t, store, "Delightful donuts", types.BakedGood{Name: "Croissant", Price: 3})
	goods := decode[[]types.BakedGood](t, get(t, s, "/baked_goods/by_price"))
	require.Len(t, goods, 1)
	path := idPath("/baked_goods", goods[0].ID)

	rec := do(t, s, httptest.NewRequest(http.MethodDelete, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Baked good deleted successfully", decode[map[string]string](t, rec)["message"])

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, path, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Baked good not found", errorMessage(t, rec))

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/baked_goods/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/baked_goods/+1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	s, _ := setupServer(t)

	rec := get(t, s, "/bakeries")
	generated := rec.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/bakeries", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = do(t, s, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestCORS(t *testing.T) {
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(context.Background(), types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer store.Detach()
	s := New(store, Options{Logger: quietLogger(), AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/bakeries/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := do(t, s, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/bakeries", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	s, store := setupServer(t)

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["schema_version"])

	require.NoError(t, store.Detach())
	rec = get(t, s, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// brokenStore fails every listing with an unexpected error.
type brokenStore struct {
	types.Store
}

func (brokenStore) ListBakeries(context.Context) ([]*types.Bakery, error) {
	return nil, errors.New("disk on fire")
}

func TestInternalErrorIsHidden(t *testing.T) {
	s := New(brokenStore{}, Options{Logger: quietLogger()})

	rec := get(t, s, "/bakeries")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorMessage(t, rec))
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}
