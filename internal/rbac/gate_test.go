package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/db/models"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/session"
)

// memStorage is an in-memory session storage for tests.
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

// writeSession stores session data for the given user and returns the session ID.
// The role argument becomes the session's role snapshot.
func writeSession(t *testing.T, user *models.User, role string) string {
	t.Helper()

	sid, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := session.Data{User: *user, Role: role}
	require.NoError(t, data.Write(sid, time.Hour))

	return sid
}

// pairedApp builds a fiber app with a single gated route and an invocation counter.
func pairedApp(g *Gate, invoked *int) *fiber.App {
	app := fiber.New()
	app.Get("/protected", ForPairedHandler(g, func(c *fiber.Ctx) error {
		*invoked++

		id, ok := c.Locals(LocalsIdentity).(*Identity)
		if !ok || id == nil || id.UserID == 0 {
			return c.Status(fiber.StatusInternalServerError).SendString("no identity")
		}

		return c.SendString("ok")
	}))

	return app
}

func request(t *testing.T, app *fiber.App, sessionID string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestPairedHandlerConvention(t *testing.T) {
	session.Init(newMemStorage())

	db := setupSeededDB(t)
	svc := NewService(db)

	moderator := createUser(t, db, "mod", RoleModerator)
	reader := createUser(t, db, "reader", RoleReader)

	modSession := writeSession(t, moderator, RoleModerator)
	readerSession := writeSession(t, reader, RoleReader)

	testCases := []struct {
		name           string
		gate           *Gate
		sessionID      string
		expectedStatus int
		expectInvoked  bool
	}{
		{
			name:           "no session cookie",
			gate:           NewGate(svc, PermUsersSuspend),
			sessionID:      "",
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "unknown session id",
			gate:           NewGate(svc, PermUsersSuspend),
			sessionID:      "bogus",
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "authentication only",
			gate:           NewGate(svc),
			sessionID:      readerSession,
			expectedStatus: fiber.StatusOK,
			expectInvoked:  true,
		},
		{
			name:           "permission held",
			gate:           NewGate(svc, PermUsersSuspend),
			sessionID:      modSession,
			expectedStatus: fiber.StatusOK,
			expectInvoked:  true,
		},
		{
			name:           "permission missing",
			gate:           NewGate(svc, PermUsersSuspend),
			sessionID:      readerSession,
			expectedStatus: fiber.StatusForbidden,
		},
		{
			name:           "any-of satisfied by one",
			gate:           NewGate(svc, PermUsersDelete, PermUsersSuspend),
			sessionID:      modSession,
			expectedStatus: fiber.StatusOK,
			expectInvoked:  true,
		},
		{
			name:           "any-of with none held",
			gate:           NewGate(svc, PermUsersDelete, PermSystemSettings),
			sessionID:      modSession,
			expectedStatus: fiber.StatusForbidden,
		},
		{
			name:           "all-of satisfied",
			gate:           NewGateAll(svc, PermWebtoonsView, PermUsersSuspend),
			sessionID:      modSession,
			expectedStatus: fiber.StatusOK,
			expectInvoked:  true,
		},
		{
			name:           "all-of with one missing",
			gate:           NewGateAll(svc, PermWebtoonsView, PermUsersDelete),
			sessionID:      modSession,
			expectedStatus: fiber.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var invoked int

			resp := request(t, pairedApp(tc.gate, &invoked), tc.sessionID)

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectInvoked {
				assert.Equal(t, 1, invoked, "handler should have been invoked once")
			} else {
				assert.Zero(t, invoked, "handler must not be invoked on denial")
			}
		})
	}
}

func TestAdminBypass(t *testing.T) {
	session.Init(newMemStorage())

	db := setupSeededDB(t)
	svc := NewService(db)

	admin := createUser(t, db, "boss", RoleAdmin)
	adminSession := writeSession(t, admin, RoleAdmin)

	// a permission no role holds, not even admin via the catalog
	var invoked int
	resp := request(t, pairedApp(NewGate(svc, "nonexistent.permission"), &invoked), adminSession)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, invoked)
}

func TestAdminBypassSurvivesStoreOutage(t *testing.T) {
	session.Init(newMemStorage())

	db := setupSeededDB(t)
	svc := NewService(db)

	admin := createUser(t, db, "boss", RoleAdmin)
	reader := createUser(t, db, "reader", RoleReader)

	adminSession := writeSession(t, admin, RoleAdmin)
	readerSession := writeSession(t, reader, RoleReader)

	// break the permission store
	require.NoError(t, db.Migrator().DropTable(&models.RolePermission{}))

	var invoked int

	// ordinary checks fail closed with a 5xx, never a grant
	resp := request(t, pairedApp(NewGate(svc, PermWebtoonsView), &invoked), readerSession)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Zero(t, invoked)

	// the bypass never consults the store
	resp = request(t, pairedApp(NewGate(svc, PermWebtoonsView), &invoked), adminSession)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, invoked)
}

func TestAdminBypassIsCaseSensitive(t *testing.T) {
	session.Init(newMemStorage())

	db := setupSeededDB(t)
	svc := NewService(db)

	reader := createUser(t, db, "reader", RoleReader)

	// a session claiming "Admin" is not the admin bypass
	casedSession := writeSession(t, reader, "Admin")

	var invoked int
	resp := request(t, pairedApp(NewGate(svc, PermUsersSuspend), &invoked), casedSession)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Zero(t, invoked)
}

func TestContextualHandlerConvention(t *testing.T) {
	session.Init(newMemStorage())

	db := setupSeededDB(t)
	svc := NewService(db)

	moderator := createUser(t, db, "mod", RoleModerator)
	reader := createUser(t, db, "reader", RoleReader)

	modSession := writeSession(t, moderator, RoleModerator)
	readerSession := writeSession(t, reader, RoleReader)

	t.Run("success enriches the context", func(t *testing.T) {
		var invoked int

		fn := ForContextualHandler(NewGate(svc, PermUsersSuspend), func(ctx context.Context) error {
			invoked++

			id := IdentityFromContext(ctx)
			require.NotNil(t, id)
			assert.Equal(t, moderator.ID, id.UserID)
			assert.Equal(t, RoleModerator, id.Role)

			return nil
		})

		require.NoError(t, fn(context.Background(), modSession))
		assert.Equal(t, 1, invoked)
	})

	t.Run("missing session", func(t *testing.T) {
		var invoked int

		fn := WithAuthenticated(svc, func(context.Context) error {
			invoked++
			return nil
		})

		err := fn(context.Background(), "")
		require.ErrorIs(t, err, ErrUnauthenticated)
		assert.Zero(t, invoked)
	})

	t.Run("denial returns structured error", func(t *testing.T) {
		var invoked int

		fn := WithAnyPermission(svc, []string{PermUsersDelete, PermUsersSuspend}, func(context.Context) error {
			invoked++
			return nil
		})

		err := fn(context.Background(), readerSession)
		require.ErrorIs(t, err, ErrPermissionDenied)
		assert.Zero(t, invoked)

		var denied *PermissionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.ElementsMatch(t, []string{PermUsersDelete, PermUsersSuspend}, denied.Required)
		assert.False(t, denied.All)
		assert.Contains(t, err.Error(), "requires one of")
	})

	t.Run("all-of denial names the mode", func(t *testing.T) {
		var invoked int

		fn := ForContextualHandler(
			NewGateAll(svc, PermWebtoonsView, PermUsersDelete),
			func(context.Context) error {
				invoked++
				return nil
			},
		)

		err := fn(context.Background(), modSession)
		require.ErrorIs(t, err, ErrPermissionDenied)
		assert.Zero(t, invoked)

		var denied *PermissionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.True(t, denied.All)
		assert.Contains(t, err.Error(), "requires all of")
	})

	t.Run("store failure is not a denial", func(t *testing.T) {
		brokenDB := setupSeededDB(t)
		brokenSvc := NewService(brokenDB)

		user := createUser(t, brokenDB, "reader2", RoleReader)
		sid := writeSession(t, user, RoleReader)

		require.NoError(t, brokenDB.Migrator().DropTable(&models.RolePermission{}))

		var invoked int

		fn := WithAnyPermission(brokenSvc, []string{PermWebtoonsView}, func(context.Context) error {
			invoked++
			return nil
		})

		err := fn(context.Background(), sid)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPermissionDenied)
		assert.NotErrorIs(t, err, ErrUnauthenticated)
		assert.Zero(t, invoked)
	})
}

func TestMiddlewareConveniences(t *testing.T) {
	session.Init(newMemStorage())

	db := setupSeededDB(t)
	svc := NewService(db)

	moderator := createUser(t, db, "mod", RoleModerator)
	modSession := writeSession(t, moderator, RoleModerator)

	var invoked int

	app := fiber.New()
	app.Get("/auth", RequireAuthenticated(svc), countCalls(&invoked))
	app.Get("/single", RequirePermission(svc, PermUsersSuspend), countCalls(&invoked))
	app.Get("/any", RequireAnyPermission(svc, PermUsersDelete, PermUsersSuspend), countCalls(&invoked))
	app.Get("/all", RequireAllPermissions(svc, PermWebtoonsView, PermUsersDelete), countCalls(&invoked))

	testCases := []struct {
		path           string
		expectedStatus int
	}{
		{"/auth", fiber.StatusOK},
		{"/single", fiber.StatusOK},
		{"/any", fiber.StatusOK},
		{"/all", fiber.StatusForbidden},
	}

	for _, tc := range testCases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: modSession})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.expectedStatus, resp.StatusCode, "path %s", tc.path)
	}

	assert.Equal(t, 3, invoked)
}

func countCalls(invoked *int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		*invoked++
		return c.SendString("ok")
	}
}

// A gate without required permissions only checks authentication, so even a
// user without a role passes.
func TestGateEmptyRequiredIsAuthOnly(t *testing.T) {
	session.Init(newMemStorage())

	db := setupSeededDB(t)
	svc := NewService(db)

	roleless := createUser(t, db, "roleless", "")
	sid := writeSession(t, roleless, "")

	id, err := NewGate(svc).Authorize(sid)
	require.NoError(t, err)
	assert.Equal(t, roleless.ID, id.UserID)
}
