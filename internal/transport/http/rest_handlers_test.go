package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/rentline-server/internal/proto"
	"github.com/vovakirdan/rentline-server/internal/store"
)

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	e.handler.ServeHTTP(resp, req)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     "lee@example.com",
		"password":  "password123",
		"firstName": "Lee",
		"role":      "landlord",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var registered AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "landlord", registered.User.Role)

	resp = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "lee@example.com", "password": "password123", "firstName": "Lee",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "root@example.com", "password": "password123", "firstName": "Root", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "lee@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "lee@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var login AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &login))

	resp = env.do(t, http.MethodGet, "/api/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, registered.User.ID, me.ID)
	assert.Equal(t, "Lee", me.FirstName)

	resp = env.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateProperty(t *testing.T) {
	env := newTestEnv(t, nil)

	landlordToken, landlord := env.register(t, "lee@example.com", "Lee", store.RoleLandlord)
	tenantToken, _ := env.register(t, "tina@example.com", "Tina", store.RoleTenant)

	listing := map[string]any{
		"title":       "Sunny loft",
		"address":     "1 Main St",
		"city":        "Austin",
		"monthlyRent": 150000,
		"bedrooms":    1,
	}

	resp := env.do(t, http.MethodPost, "/api/properties", landlordToken, listing)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created PropertyResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, landlord.ID, created.LandlordID)
	assert.True(t, created.Available)

	resp = env.do(t, http.MethodPost, "/api/properties", tenantToken, listing)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.do(t, http.MethodPost, "/api/properties", "", listing)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = env.do(t, http.MethodPost, "/api/properties", landlordToken, map[string]any{"title": "No rent"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = env.do(t, http.MethodGet, "/api/properties/"+strconv.FormatInt(created.ID, 10), "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodGet, "/api/properties/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListProperties(t *testing.T) {
	env := newTestEnv(t, nil)
	_, landlord := env.register(t, "lee@example.com", "Lee", store.RoleLandlord)

	for _, p := range []store.Property{
		{Title: "Loft", Address: "1 Main", City: "Austin", MonthlyRent: 150000, Bedrooms: 1, Available: true},
		{Title: "House", Address: "2 Oak", City: "Austin", MonthlyRent: 320000, Bedrooms: 3, Available: true},
		{Title: "Studio", Address: "3 Pine", City: "Denver", MonthlyRent: 90000, Available: false},
	} {
		p.LandlordID = landlord.ID
		_, err := env.store.CreateProperty(t.Context(), &p)
		require.NoError(t, err)
	}

	tests := []struct {
		query  string
		status int
		titles []string
	}{
		{query: "", status: http.StatusOK, titles: []string{"Studio", "House", "Loft"}},
		{query: "?city=Austin&maxRent=200000", status: http.StatusOK, titles: []string{"Loft"}},
		{query: "?available=true&minBedrooms=2", status: http.StatusOK, titles: []string{"House"}},
		{query: "?limit=1&offset=2", status: http.StatusOK, titles: []string{"Loft"}},
		{query: "?maxRent=cheap", status: http.StatusBadRequest},
		{query: "?limit=-1", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, "/api/properties"+tt.query, "", nil)
			require.Equal(t, tt.status, resp.Code, resp.Body.String())
			if tt.status != http.StatusOK {
				return
			}

			var list []PropertyResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
			titles := make([]string, 0, len(list))
			for _, p := range list {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestHistoryEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := t.Context()

	aliceToken, alice := env.register(t, "alice@example.com", "Alice", store.RoleTenant)
	_, bob := env.register(t, "bob@example.com", "Bob", store.RoleLandlord)

	var ids []int64
	for _, text := range []string{"one", "two", "three"} {
		m := &store.Message{SenderID: bob.ID, ReceiverID: alice.ID, Content: text, SentAt: time.Now().UTC()}
		require.NoError(t, env.store.SaveMessage(ctx, m))
		ids = append(ids, m.ID)
	}
	for i := 0; i < 5; i++ {
		n := &store.Notification{UserID: alice.ID, Message: "n", Type: store.NotificationTypeSystem, CreatedAt: time.Now().UTC()}
		require.NoError(t, env.store.SaveNotification(ctx, n))
	}

	path := "/api/messages/" + strconv.FormatInt(bob.ID, 10) + "?limit=2&before=" + strconv.FormatInt(ids[2], 10)
	resp := env.do(t, http.MethodGet, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var conv []proto.Message
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &conv))
	require.Len(t, conv, 2)
	assert.Equal(t, "two", conv[0].Content)
	assert.Equal(t, "one", conv[1].Content)

	resp = env.do(t, http.MethodGet, "/api/messages/abc", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = env.do(t, http.MethodGet, "/api/notifications?page=2&pageSize=2", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var page proto.NotificationPage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 2)

	resp = env.do(t, http.MethodGet, "/api/notifications?page=0", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = env.do(t, http.MethodGet, "/api/notifications/unread", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var unread []proto.Notification
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &unread))
	assert.Len(t, unread, 5)
}
