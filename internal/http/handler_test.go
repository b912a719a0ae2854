package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/waste-pickup/internal/auth"
	"github.com/nurpe/waste-pickup/internal/branding"
	"github.com/nurpe/waste-pickup/internal/datasdk"
	"github.com/nurpe/waste-pickup/internal/excel"
	"github.com/nurpe/waste-pickup/internal/http/middleware"
	"github.com/nurpe/waste-pickup/internal/model"
	"github.com/nurpe/waste-pickup/internal/pdf"
	"github.com/nurpe/waste-pickup/internal/service"
	"github.com/nurpe/waste-pickup/internal/session"
	"github.com/nurpe/waste-pickup/internal/view"
)

type memoryStore struct {
	mu        sync.Mutex
	listeners []datasdk.Listener
	data      []*model.WasteRequest
}

func (m *memoryStore) Init(_ context.Context, l datasdk.Listener) error {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	data := model.CloneAll(m.data)
	m.mu.Unlock()
	l.OnDataChanged(data)
	return nil
}

func (m *memoryStore) Detach(datasdk.Listener) {}
func (m *memoryStore) Refresh(context.Context) {}

func (m *memoryStore) Create(_ context.Context, req *model.WasteRequest) error {
	rec := req.Clone()
	rec.BackendID = uuid.New()
	m.mu.Lock()
	m.data = append(m.data, rec)
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *memoryStore) Update(_ context.Context, req *model.WasteRequest) error {
	m.mu.Lock()
	for i, r := range m.data {
		if r.BackendID == req.BackendID {
			m.data[i] = req.Clone()
		}
	}
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, req *model.WasteRequest) error {
	m.mu.Lock()
	for i, r := range m.data {
		if r.BackendID == req.BackendID {
			m.data = append(m.data[:i], m.data[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *memoryStore) notify() {
	m.mu.Lock()
	listeners := append([]datasdk.Listener(nil), m.listeners...)
	data := m.data
	m.mu.Unlock()
	for _, l := range listeners {
		l.OnDataChanged(model.CloneAll(data))
	}
}

type testServer struct {
	router *gin.Engine
	store  *memoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	src, err := branding.NewSource("", zerolog.Nop())
	require.NoError(t, err)

	store := &memoryStore{}
	registry := session.NewRegistry(store, src, renderer, zerolog.Nop(), session.Options{
		IdleTimeout: time.Hour,
		Dashboard:   service.DashboardOptions{Location: time.UTC},
	})
	t.Cleanup(registry.Stop)

	reports := service.NewReportService(excel.NewGenerator(), pdf.NewGenerator())
	handler := NewHandler(renderer, reports, zerolog.Nop())
	sessionMiddleware := middleware.Session(registry, auth.NewParser("test-secret", time.Hour), middleware.CookieOptions{
		Name:   "wp_session",
		MaxAge: time.Hour,
	})
	return &testServer{
		router: NewRouter(handler, sessionMiddleware, "test", nil),
		store:  store,
	}
}

func (s *testServer) do(t *testing.T, method, target string, form url.Values, cookies []*http.Cookie, jsonAccept bool) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if jsonAccept {
		req.Header.Set("Accept", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, s *testServer) []*http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/", nil, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func requestForm() url.Values {
	return url.Values{
		"name":       {"Ravi Kumar"},
		"phone":      {"9876543210"},
		"address":    {"14 Aminabad Road"},
		"area":       {"Aminabad"},
		"waste_type": {"Glass"},
		"weight":     {"4"},
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil, nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHomePageRendersDefaults(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/", nil, nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nagar Nigam Lucknow")
	assert.Contains(t, rec.Body.String(), "No requests yet.")
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestUnknownPage(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/pages/settings", nil, nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEstimate(t *testing.T) {
	s := newTestServer(t)
	cookies := startSession(t, s)

	rec := s.do(t, http.MethodPost, "/estimate", url.Values{"waste_type": {"Glass"}, "weight": {"4"}}, cookies, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"estimate":"₹20.00"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/estimate", url.Values{"waste_type": {"Glass"}}, cookies, true)
	assert.JSONEq(t, `{"estimate":""}`, rec.Body.String())
}

func TestSubmitShowsCardOnHome(t *testing.T) {
	s := newTestServer(t)
	cookies := startSession(t, s)

	rec := s.do(t, http.MethodPost, "/requests", requestForm(), cookies, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/pages/home", nil, cookies, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ravi Kumar")
	assert.Contains(t, body, "₹20.00")
	assert.NotContains(t, body, "9876543210")
}

func TestSubmitBrowserRedirects(t *testing.T) {
	s := newTestServer(t)
	cookies := startSession(t, s)

	rec := s.do(t, http.MethodPost, "/requests", requestForm(), cookies, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pages/request", rec.Header().Get("Location"))
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	s := newTestServer(t)
	cookies := startSession(t, s)

	form := requestForm()
	form.Del("area")
	rec := s.do(t, http.MethodPost, "/requests", form, cookies, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.store.data)
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	s := newTestServer(t)
	cookies := startSession(t, s)

	rec := s.do(t, http.MethodPost, "/admin/requests/"+uuid.NewString()+"/delete", url.Values{}, cookies, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/requests/export/xlsx", nil, cookies, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	cookies := startSession(t, s)

	rec := s.do(t, http.MethodPost, "/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}}, cookies, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/login", url.Values{"username": {"admin"}, "password": {"admin123"}}, cookies, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	other := startSession(t, s)
	rec = s.do(t, http.MethodGet, "/admin/requests/export/pdf", nil, other, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminToggleDeleteAndExport(t *testing.T) {
	s := newTestServer(t)
	cookies := startSession(t, s)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/requests", requestForm(), cookies, true).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/admin/login", url.Values{"username": {"admin"}, "password": {"admin123"}}, cookies, true).Code)

	require.Len(t, s.store.data, 1)
	id := s.store.data[0].BackendID.String()

	rec := s.do(t, http.MethodPost, "/admin/requests/"+id+"/status", url.Values{"status": {"collected"}}, cookies, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusCollected, s.store.data[0].Status)

	rec = s.do(t, http.MethodPost, "/admin/requests/"+id+"/status", url.Values{"status": {"archived"}}, cookies, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/requests/export/xlsx", nil, cookies, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = s.do(t, http.MethodGet, "/admin/requests/export/pdf", nil, cookies, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = s.do(t, http.MethodPost, "/admin/requests/"+id+"/delete", url.Values{}, cookies, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, s.store.data)
}

func TestInvalidCookieStartsNewSession(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/", nil, []*http.Cookie{{Name: "wp_session", Value: "forged"}}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "forged", cookies[0].Value)
}
