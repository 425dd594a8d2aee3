package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deskhive/internal/domain"
	"deskhive/internal/repository"
	"deskhive/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// apiFixture wires the full stack on memory repositories and drives it
// through the router, token and all.
type apiFixture struct {
	handler     http.Handler
	workspaceID string
	userToken   string
	adminToken  string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	companies := repository.NewMemoryCompaniesRepository()
	users := repository.NewMemoryUsersRepository()
	workspaces := repository.NewMemoryWorkspacesRepository()
	reservations := repository.NewMemoryReservationsRepository()
	notifications := repository.NewMemoryNotificationsRepository()
	sessions := repository.NewMemorySessionsRepository()

	companyID := "00000000-0000-0000-0000-00000000c001"
	companies.SeedCompany(&domain.Company{CompanyID: companyID, Name: "Acme", InvitationCode: "ACME-2026"})
	companies.SeedDomain(&domain.EmailDomain{DomainID: "d-1", CompanyID: companyID, Domain: "@acme.com", IsActive: true})

	wsID, err := workspaces.CreateWorkspace(ctx, &domain.Workspace{
		CompanyID:   companyID,
		Name:        "Focus Booth",
		Capacity:    2,
		IsAvailable: true,
	})
	require.NoError(t, err)
	reservations.RegisterWorkspace(wsID, companyID)

	_, err = users.CreateUser(ctx, &domain.User{
		CompanyID:    companyID,
		Email:        "admin@acme.com",
		PasswordHash: service.HashPassword("admin-pass-1"),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	})
	require.NoError(t, err)

	authSvc := service.NewAuthService(users, companies, sessions, "test-secret", time.Hour, log)
	notificationSvc := service.NewNotificationService(notifications, users, nil, log)
	workspaceSvc := service.NewWorkspaceService(workspaces, log)
	reservationSvc := service.NewReservationService(reservations, workspaces, users, log)

	middleware := NewAuthMiddleware(authSvc, log)
	router := NewRouter(middleware, log)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(NewAuthHandler(authSvc, log))
	reservationHandler := NewReservationHandler(reservationSvc, reservations, workspaces, log)
	router.RegisterReservationRoutes(reservationHandler)
	router.RegisterWorkspaceRoutes(NewWorkspaceHandler(workspaceSvc, reservationHandler, log))
	router.RegisterNotificationRoutes(NewNotificationHandler(notificationSvc, log))

	f := &apiFixture{handler: router.Handler(), workspaceID: wsID}

	// Register a regular user through the API, then log both accounts in.
	rec := f.do(t, http.MethodPost, "/auth/api/v1/register", "", map[string]any{
		"invitationCode": "ACME-2026",
		"email":          "user@acme.com",
		"password":       "user-pass-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	f.userToken = f.login(t, "user@acme.com", "user-pass-1")
	f.adminToken = f.login(t, "admin@acme.com", "admin-pass-1")
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/api/v1/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Result[service.LoginResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, ResultSuccess, resp.Code)
	require.NotEmpty(t, resp.Result.Token)
	return resp.Result.Token
}

func (f *apiFixture) createReservation(t *testing.T, token string, start, end time.Time) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/v1/reservations", token, map[string]any{
		"workspaceId":    f.workspaceID,
		"numberOfPeople": 1,
		"startTime":      start.Format(time.RFC3339),
		"endTime":        end.Format(time.RFC3339),
	})
}

func TestAPI_ReservationLifecycleStatusCodes(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(2 * time.Hour)

	rec := f.createReservation(t, f.userToken, start, end)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Result[service.ReservationDTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	reservationID := created.Result.ReservationID
	require.NotEmpty(t, reservationID)

	// Same slot again: 409.
	rec = f.createReservation(t, f.adminToken, start, end)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Inverted range: 400.
	rec = f.createReservation(t, f.adminToken, end, start)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/reservations/"+reservationID, f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/reservations/00000000-0000-0000-0000-0000000000ff", f.userToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/reservations/"+reservationID+"/cancel", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Cancelling twice: 400.
	rec = f.do(t, http.MethodPost, "/api/v1/reservations/"+reservationID+"/cancel", f.userToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_AuthBoundaries(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/reservations", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/reservations", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Admin surface rejects regular users before the handler runs.
	rec = f.do(t, http.MethodGet, "/admin/api/v1/reservations", f.userToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/admin/api/v1/reservations", f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_AvailabilityQuery(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(time.Hour)

	rec := f.createReservation(t, f.userToken, start, end)
	require.Equal(t, http.StatusCreated, rec.Code)

	query := fmt.Sprintf("/api/v1/reservations/availability?workspaceId=%s&startTime=%s&endTime=%s",
		f.workspaceID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	rec = f.do(t, http.MethodGet, query, f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Result[service.AvailabilityResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Result.Available)
	require.Equal(t, 2, resp.Result.Capacity)

	rec = f.do(t, http.MethodGet, "/api/v1/reservations/availability?workspaceId="+f.workspaceID, f.adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_WorkspaceAdminCRUD(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/api/v1/workspaces", f.adminToken, map[string]any{
		"name":     "War Room",
		"capacity": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Result[service.WorkspaceDTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	wsID := created.Result.WorkspaceID

	rec = f.do(t, http.MethodPost, "/admin/api/v1/workspaces", f.userToken, map[string]any{
		"name":     "Nope",
		"capacity": 1,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/admin/api/v1/workspaces/"+wsID, f.adminToken, map[string]any{
		"capacity": 12,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/admin/api/v1/workspaces/"+wsID, f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Archived workspaces disappear from the user surface.
	rec = f.do(t, http.MethodGet, "/api/v1/workspaces/"+wsID, f.userToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_NotificationFlow(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/api/v1/notifications/broadcast", f.adminToken, map[string]any{
		"message": "office closed friday",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var fanout Result[service.CreateGlobalResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fanout))
	require.Equal(t, 2, fanout.Result.Created)

	rec = f.do(t, http.MethodGet, "/api/v1/notifications/unread-count", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var count Result[map[string]int]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &count))
	require.Equal(t, 1, count.Result["unread"])

	rec = f.do(t, http.MethodGet, "/api/v1/notifications?unread=true", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list Result[pageResult[*service.NotificationDTO]]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Result.Items, 1)

	rec = f.do(t, http.MethodPost, "/api/v1/notifications/"+list.Result.Items[0].NotificationID+"/read", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/notifications/unread-count", f.userToken, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &count))
	require.Equal(t, 0, count.Result["unread"])
}

func TestAPI_Logout(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/api/v1/logout", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/reservations", f.userToken, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
