package login

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/config"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/db/models"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/rbac"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/session"
)

type memStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.data[key], nil
}

func (m *memStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = val

	return nil
}

func (m *memStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *memStorage) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)

	return nil
}

func (m *memStorage) Close() error {
	return nil
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *memStorage) {
	t.Helper()

	store := newMemStorage()
	session.Init(store)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
	))
	require.NoError(t, rbac.Initialize(db))

	cfg := &config.Config{DevMode: true}
	cfg.Webserver.Session.ExpiryTime = time.Hour

	app := fiber.New()
	Handler.Init(app, cfg, db, rbac.NewService(db))

	return app, db, store
}

func createUser(t *testing.T, db *gorm.DB, username, password, roleName string, active, suspended bool) {
	t.Helper()

	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  models.HashPassword(password),
		Active:    active,
		Suspended: suspended,
	}

	if roleName != "" {
		var role models.Role
		require.NoError(t, db.Where("name = ?", roleName).First(&role).Error)
		user.RoleID = &role.ID
	}

	require.NoError(t, db.Create(&user).Error)
}

func postLogin(t *testing.T, app *fiber.App, username, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(fiber.Map{"username": username, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, Path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			return c
		}
	}

	return nil
}

func TestLoginIssuesSessionWithRoleSnapshot(t *testing.T) {
	app, db, _ := setupApp(t)
	createUser(t, db, "mod", "secret123", rbac.RoleModerator, true, false)

	resp := postLogin(t, app, "mod", "secret123")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie, "login must set the session cookie")
	require.NotEmpty(t, cookie.Value)

	// the stored session carries the role name snapshot
	data := new(session.Data)
	require.NoError(t, data.Read(cookie.Value))
	assert.Equal(t, "mod", data.User.Username)
	assert.Equal(t, rbac.RoleModerator, data.Role)

	var out struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "mod", out.Username)
	assert.Equal(t, rbac.RoleModerator, out.Role)
}

func TestLoginFailures(t *testing.T) {
	app, db, _ := setupApp(t)

	createUser(t, db, "mod", "secret123", rbac.RoleModerator, true, false)
	createUser(t, db, "inactive", "secret123", "", false, false)
	createUser(t, db, "suspended", "secret123", rbac.RoleReader, true, true)

	testCases := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "secret123"},
		{"wrong password", "mod", "wrong"},
		{"inactive account", "inactive", "secret123"},
		{"suspended account", "suspended", "secret123"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postLogin(t, app, tc.username, tc.password)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Nil(t, sessionCookie(resp), "failed login must not set a session cookie")
		})
	}
}

func TestLoginValidation(t *testing.T) {
	app, _, _ := setupApp(t)

	resp := postLogin(t, app, "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginSessionAuthorizesGates(t *testing.T) {
	app, db, _ := setupApp(t)
	createUser(t, db, "boss", "secret123", rbac.RoleAdmin, true, false)

	resp := postLogin(t, app, "boss", "secret123")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	// a freshly issued admin session passes any gate
	svc := rbac.NewService(db)
	id, err := rbac.NewGate(svc, rbac.PermSystemMaintenance).Authorize(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, id.Role)
}
