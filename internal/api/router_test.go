package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staff_records/internal/domain"
	"staff_records/internal/integrity"
	"staff_records/internal/service"
	"staff_records/internal/store"
	"staff_records/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-secret"

type plainHasher struct{ n int }

func (h *plainHasher) Hash(p string) (string, error) {
	h.n++
	return fmt.Sprintf("$test$%d$%s", h.n, p), nil
}

type testServer struct {
	router *gin.Engine
	store  *store.MemoryStore
	admin  string // bearer header of a seeded admin
	clerk  string // bearer header of a seeded employee
}

func bearer(t *testing.T, accountID string) string {
	t.Helper()
	claims := utils.Claims{
		AccountID:        accountID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Accounts().Insert(ctx, &domain.Account{ID: "root", Username: "root", Password: "x", Roles: []string{"admin"}, Active: true}))
	require.NoError(t, s.Accounts().Insert(ctx, &domain.Account{ID: "clerk", Username: "clerk", Password: "x", Roles: []string{"employee"}, Active: true}))

	rules := integrity.NewEngine(s)
	locks := utils.NewLocalLocker(time.Second)
	hasher := &plainHasher{}
	r := gin.New()
	RegisterRoutes(r, Deps{
		Store:       s,
		Employees:   service.NewAccountManager(service.AccountScope{Label: "employee", AllowedRoles: []string{"employee", "manager", "admin"}}, s, rules, hasher, locks),
		Users:       service.NewAccountManager(service.AccountScope{Label: "user", AllowedRoles: []string{"member", "manager", "admin"}}, s, rules, hasher, locks),
		Notes:       service.NewNoteManager(s, rules, locks),
		JWTSecret:   testSecret,
		ManageRoles: []string{"admin", "manager"},
	})
	return &testServer{router: r, store: s, admin: bearer(t, "root"), clerk: bearer(t, "clerk")}
}

func (ts *testServer) do(t *testing.T, auth, method, path string, body any) (int, map[string]any, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var obj map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &obj)
	return w.Code, obj, w.Body.Bytes()
}

func TestRoutes_Scenario(t *testing.T) {
	ts := newTestServer(t)

	code, body, _ := ts.do(t, ts.admin, http.MethodPost, "/employees", gin.H{"username": "alice", "password": "secret1", "roles": []string{"employee"}})
	require.Equal(t, http.StatusCreated, code)
	assert.Contains(t, body["message"], "alice")
	aliceID, _ := body["id"].(string)
	require.NotEmpty(t, aliceID)

	code, body, _ = ts.do(t, ts.admin, http.MethodPost, "/employees", gin.H{"username": "alice", "password": "secret1", "roles": []string{"employee"}})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Duplicate username", body["message"])

	code, body, _ = ts.do(t, ts.clerk, http.MethodPost, "/notes", gin.H{"owner": aliceID, "title": "Laptop", "text": "Replace battery"})
	require.Equal(t, http.StatusCreated, code)
	noteID, _ := body["id"].(string)

	code, body, _ = ts.do(t, ts.admin, http.MethodDelete, "/employees", gin.H{"id": aliceID})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Employee has assigned notes", body["message"])

	code, _, _ = ts.do(t, ts.admin, http.MethodGet, "/employees/"+aliceID, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _, _ = ts.do(t, ts.clerk, http.MethodDelete, "/notes", gin.H{"id": noteID})
	require.Equal(t, http.StatusOK, code)

	code, body, _ = ts.do(t, ts.admin, http.MethodDelete, "/employees", gin.H{"id": aliceID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, aliceID, body["id"])

	code, body, _ = ts.do(t, ts.admin, http.MethodGet, "/employees/"+aliceID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Employee not found", body["message"])
}

func TestRoutes_ReadsOmitPassword(t *testing.T) {
	ts := newTestServer(t)

	code, _, raw := ts.do(t, ts.admin, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(raw), "password")

	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "root", list[0]["username"])

	code, _, raw = ts.do(t, ts.admin, http.MethodGet, "/users/root", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(raw), "password")
}

func TestRoutes_Update(t *testing.T) {
	ts := newTestServer(t)

	code, body, _ := ts.do(t, ts.admin, http.MethodPatch, "/employees", gin.H{"id": "clerk", "username": "clerk2", "roles": []string{"employee"}, "active": false})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "clerk2 updated", body["message"])

	// clerk is now inactive
	code, _, _ = ts.do(t, ts.clerk, http.MethodGet, "/notes", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body, _ = ts.do(t, ts.admin, http.MethodPatch, "/employees", gin.H{"id": "clerk", "username": "clerk2", "roles": []string{"employee"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "All fields except password are required", body["message"])

	code, body, _ = ts.do(t, ts.admin, http.MethodPatch, "/employees", gin.H{"id": "clerk", "username": "root", "roles": []string{"employee"}, "active": true})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Duplicate username", body["message"])

	code, body, _ = ts.do(t, ts.admin, http.MethodPatch, "/employees", gin.H{"id": "clerk", "username": "x", "roles": []string{"employee"}, "active": "yes"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestRoutes_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		auth    string
		method  string
		path    string
		body    any
		code    int
		message string
	}{
		{name: "unauthenticated", method: http.MethodGet, path: "/employees", code: http.StatusUnauthorized, message: "Missing or invalid Authorization header"},
		{name: "employee cannot manage accounts", auth: ts.clerk, method: http.MethodGet, path: "/employees", code: http.StatusForbidden, message: "Insufficient role"},
		{name: "create missing roles", auth: ts.admin, method: http.MethodPost, path: "/users", body: gin.H{"username": "u", "password": "p"}, code: http.StatusBadRequest, message: "All fields are required"},
		{name: "role outside scope", auth: ts.admin, method: http.MethodPost, path: "/users", body: gin.H{"username": "u", "password": "p", "roles": []string{"employee"}}, code: http.StatusBadRequest, message: "Invalid roles for user"},
		{name: "delete without body", auth: ts.admin, method: http.MethodDelete, path: "/users", code: http.StatusBadRequest, message: "User ID required"},
		{name: "delete unknown", auth: ts.admin, method: http.MethodDelete, path: "/users", body: gin.H{"id": "ghost"}, code: http.StatusBadRequest, message: "User not found"},
		{name: "no notes yet", auth: ts.clerk, method: http.MethodGet, path: "/notes", code: http.StatusBadRequest, message: "No notes found"},
		{name: "note for unknown owner", auth: ts.clerk, method: http.MethodPost, path: "/notes", body: gin.H{"owner": "ghost", "title": "t", "text": "x"}, code: http.StatusBadRequest, message: "Owner account not found"},
		{name: "malformed json", auth: ts.clerk, method: http.MethodPost, path: "/notes", body: "not an object", code: http.StatusBadRequest, message: "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body, _ := ts.do(t, tt.auth, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestRoutes_NoteLifecycle(t *testing.T) {
	ts := newTestServer(t)

	code, body, _ := ts.do(t, ts.clerk, http.MethodPost, "/notes", gin.H{"owner": "clerk", "title": "Printer", "text": "jam"})
	require.Equal(t, http.StatusCreated, code)
	id, _ := body["id"].(string)

	code, body, _ = ts.do(t, ts.clerk, http.MethodPost, "/notes", gin.H{"owner": "root", "title": "Printer", "text": "again"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Duplicate note title", body["message"])

	code, body, _ = ts.do(t, ts.clerk, http.MethodPatch, "/notes", gin.H{"id": id, "owner": "clerk", "title": "Printer", "text": "fixed", "completed": true})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "'Printer' updated", body["message"])

	code, _, raw := ts.do(t, ts.clerk, http.MethodGet, "/notes", nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "clerk", list[0]["username"])
	assert.Equal(t, true, list[0]["completed"])

	code, body, _ = ts.do(t, ts.clerk, http.MethodGet, "/notes/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "fixed", body["text"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.KindValidation))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.KindNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(domain.KindConflict))
	assert.Equal(t, http.StatusInternalServerError, statusFor(0))
}
