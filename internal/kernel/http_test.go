package kernel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/internal/testdb"
	"github.com/krishi360/krishi/pkg/auth"
	"github.com/krishi360/krishi/pkg/session"
)

type apiClient struct {
	t     *testing.T
	base  string
	http  *http.Client
	token string
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func newServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	db := testdb.Open(t)
	k, err := NewHTTPKernel(Deps{DB: db, Sessions: session.NewMemoryStore()})
	require.NoError(t, err)

	srv := httptest.NewServer(k.Handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func newClient(t *testing.T, srv *httptest.Server) *apiClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiClient{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *apiClient) do(method, path string, body any) (int, envelope) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	var env envelope
	if res.Header.Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(&env))
	}
	return res.StatusCode, env
}

// login signs an existing fixture user in by minting a token directly.
func (c *apiClient) login(u models.User) *apiClient {
	token, err := auth.GenerateToken(u.ID, u.Role)
	require.NoError(c.t, err)
	c.token = token
	return c
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)

	status, env := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, string(env.Data))

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestRegisterLoginProfile(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)

	status, _ := c.do(http.MethodPost, "/api/auth/register", map[string]any{
		"username": "meera", "email": "meera@example.com", "password": "harvest-2025",
		"first_name": "Meera", "last_name": "Iyer", "role": "buyer",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := c.do(http.MethodPost, "/api/auth/register", map[string]any{
		"username": "x", "email": "bad", "password": "short", "role": "admin",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	fields := decode[map[string]string](t, env.Errors)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "role")

	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "meera@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = c.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "meera@example.com", "password": "harvest-2025",
	})
	require.Equal(t, http.StatusOK, status)
	c.token = decode[struct {
		Token string `json:"token"`
	}](t, env.Data).Token

	status, env = c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "meera@example.com", decode[models.User](t, env.Data).Email)
}

func TestRoleGates(t *testing.T) {
	srv, db := newServer(t)
	buyer := testdb.User(t, db, models.RoleBuyer)

	anon := newClient(t, srv)
	status, _ := anon.do(http.MethodGet, "/api/buyer/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c := newClient(t, srv).login(buyer)
	status, _ = c.do(http.MethodGet, "/api/farmer/crops", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = c.do(http.MethodGet, "/api/admin/report", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = c.do(http.MethodGet, "/api/buyer/cart", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCartCheckoutCancelFlow(t *testing.T) {
	srv, db := newServer(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyer := testdb.User(t, db, models.RoleBuyer)

	f := newClient(t, srv).login(farmer)
	status, env := f.do(http.MethodPost, "/api/farmer/crops", map[string]any{
		"name": "Alphonso mango", "price_per_unit": 250, "unit": "dozen",
		"quantity_available": 10, "location": "Ratnagiri",
	})
	require.Equal(t, http.StatusCreated, status)
	crop := decode[models.Crop](t, env.Data)

	b := newClient(t, srv).login(buyer)
	status, _ = b.do(http.MethodPost, "/api/buyer/cart", map[string]any{"crop_id": crop.ID, "quantity": 4})
	require.Equal(t, http.StatusOK, status)

	status, env = b.do(http.MethodPost, "/api/buyer/cart", map[string]any{"crop_id": crop.ID, "quantity": 7})
	assert.Equal(t, http.StatusConflict, status)
	details := decode[map[string]any](t, env.Errors)
	assert.Equal(t, float64(11), details["requested"])
	assert.Equal(t, float64(10), details["available"])

	// The session cookie carries the cart between requests.
	status, env = b.do(http.MethodGet, "/api/buyer/cart", nil)
	require.Equal(t, http.StatusOK, status)
	view := decode[struct {
		Lines []struct {
			Quantity float64 `json:"quantity"`
		} `json:"lines"`
		Total float64 `json:"total"`
	}](t, env.Data)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 4.0, view.Lines[0].Quantity)
	assert.Equal(t, 1000.0, view.Total)

	status, _ = b.do(http.MethodPost, "/api/buyer/checkout", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = b.do(http.MethodPost, "/api/buyer/checkout", map[string]any{
		"shipping_address": "Bandra West, Mumbai", "payment_method": "upi",
	})
	require.Equal(t, http.StatusCreated, status)
	order := decode[models.Order](t, env.Data)
	assert.Equal(t, 1000.0, order.TotalAmount)
	assert.Equal(t, 6.0, testdb.Stock(t, db, crop.ID))

	status, env = b.do(http.MethodGet, "/api/buyer/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"lines":[]`)

	status, _ = b.do(http.MethodPost, "/api/buyer/checkout", map[string]any{"shipping_address": "Mumbai"})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "empty cart")

	status, _ = b.do(http.MethodPost, fmt.Sprintf("/api/buyer/orders/%d/cancel", order.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10.0, testdb.Stock(t, db, crop.ID))

	status, env = b.do(http.MethodPost, fmt.Sprintf("/api/buyer/orders/%d/cancel", order.ID), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "cancelled", decode[map[string]string](t, env.Errors)["state"])

	status, _ = b.do(http.MethodGet, "/api/buyer/orders/99999", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestConsultationFlow(t *testing.T) {
	srv, db := newServer(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	first := testdb.User(t, db, models.RoleConsultant)
	second := testdb.User(t, db, models.RoleConsultant)

	f := newClient(t, srv).login(farmer)
	status, env := f.do(http.MethodPost, "/api/farmer/consultations", map[string]any{
		"title": "Blight on potatoes", "description": "Dark lesions on leaves",
		"category": "disease_management", "priority": "urgent",
	})
	require.Equal(t, http.StatusCreated, status)
	cons := decode[models.Consultation](t, env.Data)
	claimPath := fmt.Sprintf("/api/consultant/consultations/%d/claim", cons.ID)

	c1 := newClient(t, srv).login(first)
	status, _ = c1.do(http.MethodPost, claimPath, nil)
	require.Equal(t, http.StatusOK, status)

	c2 := newClient(t, srv).login(second)
	status, _ = c2.do(http.MethodPost, claimPath, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = c1.do(http.MethodPost, fmt.Sprintf("/api/consultant/consultations/%d/respond", cons.ID),
		map[string]any{"response": "Spray mancozeb and remove affected plants"})
	require.Equal(t, http.StatusOK, status)

	ratePath := fmt.Sprintf("/api/farmer/consultations/%d/rate", cons.ID)
	status, _ = f.do(http.MethodPost, ratePath, map[string]any{"rating": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, env = f.do(http.MethodPost, ratePath, map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, status)
	rated := decode[models.Consultation](t, env.Data)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)
}

func TestAdminListsArePaginated(t *testing.T) {
	srv, db := newServer(t)
	admin := testdb.User(t, db, models.RoleAdmin)
	for range 3 {
		testdb.User(t, db, models.RoleBuyer)
	}

	a := newClient(t, srv).login(admin)
	status, env := a.do(http.MethodGet, "/api/admin/users?role=buyer&per_page=2", nil)
	require.Equal(t, http.StatusOK, status)

	page := decode[struct {
		Items      []models.User `json:"items"`
		Pagination struct {
			Total    int64 `json:"total"`
			LastPage int   `json:"last_page"`
		} `json:"pagination"`
	}](t, env.Data)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.LastPage)
}

func TestGraphQLRequiresToken(t *testing.T) {
	srv, db := newServer(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	testdb.Crop(t, db, farmer.ID, "Ragi", 38, 25)

	anon := newClient(t, srv)
	status, _ := anon.do(http.MethodPost, "/api/graphql", map[string]any{"query": "{ crops { name } }"})
	assert.Equal(t, http.StatusUnauthorized, status)

	c := newClient(t, srv).login(farmer)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/graphql",
		bytes.NewBufferString(`{"query":"{ crops { name } }"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+c.token)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out struct {
		Data struct {
			Crops []struct{ Name string } `json:"crops"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	require.Len(t, out.Data.Crops, 1)
	assert.Equal(t, "Ragi", out.Data.Crops[0].Name)
}

func TestChangePasswordAndDashboards(t *testing.T) {
	srv, db := newServer(t)
	c := newClient(t, srv)

	status, _ := c.do(http.MethodPost, "/api/auth/register", map[string]any{
		"username": "ravi", "email": "ravi@example.com", "password": "monsoon-2025",
		"first_name": "Ravi", "last_name": "Patil", "role": "farmer",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := c.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "ravi@example.com", "password": "monsoon-2025",
	})
	require.Equal(t, http.StatusOK, status)
	c.token = decode[struct {
		Token string `json:"token"`
	}](t, env.Data).Token

	status, env = c.do(http.MethodPut, "/api/auth/password", map[string]any{
		"current_password": "not-my-password", "new_password": "kharif-2026", "confirm_password": "kharif-2026",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, decode[map[string]string](t, env.Errors), "current_password")

	status, _ = c.do(http.MethodPut, "/api/auth/password", map[string]any{
		"current_password": "monsoon-2025", "new_password": "kharif-2026", "confirm_password": "kharif-2026",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "ravi@example.com", "password": "kharif-2026",
	})
	assert.Equal(t, http.StatusOK, status)

	status, env = c.do(http.MethodGet, "/api/farmer/dashboard", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"total_crops":0`)

	status, _ = c.do(http.MethodGet, "/api/buyer/dashboard", nil)
	assert.Equal(t, http.StatusForbidden, status)

	buyer := newClient(t, srv).login(testdb.User(t, db, models.RoleBuyer))
	status, env = buyer.do(http.MethodGet, "/api/buyer/dashboard", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"featured_crops":[]`)

	consultant := newClient(t, srv).login(testdb.User(t, db, models.RoleConsultant))
	status, _ = consultant.do(http.MethodGet, "/api/consultant/dashboard", nil)
	assert.Equal(t, http.StatusOK, status)
	status, env = consultant.do(http.MethodGet, "/api/consultant/specializations", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))
}
