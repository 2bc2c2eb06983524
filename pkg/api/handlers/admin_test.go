package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/jordanlanch/leadcrm/pkg/models"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/status"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminHandler(env *testEnv) *AdminHandler {
	return NewAdminHandler(env.lifecycle, env.exporter, env.userStore)
}

func TestAdminHandler_UpdateStatus(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "Ada Admin", "ada@example.com", policy.RoleAdmin, "org-a")
	l := env.addLead(t, "Maria", "Lopez", admin)
	h := newAdminHandler(env)

	body := `{"status":"VERIFIED","notes":"docs checked"}`
	c, rec := newRequest(http.MethodPut, "/api/v1/admin/leads/"+l.ID+"/status", body, &admin, "id", l.ID)

	require.NoError(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(status.Verified), resp.Status)
	require.Len(t, resp.StatusHistory, 1)
	assert.Equal(t, string(status.Initial), resp.StatusHistory[0].FromStatus)
	assert.Equal(t, string(status.Verified), resp.StatusHistory[0].ToStatus)
	assert.Equal(t, "docs checked", resp.StatusHistory[0].Notes)
	assert.Equal(t, "Ada Admin", resp.StatusHistory[0].ChangedByName)
}

func TestAdminHandler_UpdateStatus_InvalidStatus(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "Ada", "ada@example.com", policy.RoleAdmin, "org-a")
	l := env.addLead(t, "Maria", "Lopez", admin)
	h := newAdminHandler(env)

	body := `{"status":"BOGUS_STATUS"}`
	c, rec := newRequest(http.MethodPut, "/api/v1/admin/leads/"+l.ID+"/status", body, &admin, "id", l.ID)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing was written.
	gc, grec := newRequest(http.MethodGet, "/api/v1/leads/"+l.ID, "", &admin, "id", l.ID)
	require.NoError(t, newLeadHandler(env).Get(gc))
	var resp models.LeadResponse
	require.NoError(t, json.Unmarshal(grec.Body.Bytes(), &resp))
	assert.Equal(t, string(status.Initial), resp.Status)
	assert.Empty(t, resp.StatusHistory)
}

func TestAdminHandler_UpdateStatus_AgentForbidden(t *testing.T) {
	env := newTestEnv()
	agent := env.addUser(t, "Ana", "ana@example.com", policy.RoleAgent, "org-a")
	l := env.addLead(t, "Maria", "Lopez", agent)
	h := newAdminHandler(env)

	body := `{"status":"VERIFIED"}`
	c, rec := newRequest(http.MethodPut, "/api/v1/admin/leads/"+l.ID+"/status", body, &agent, "id", l.ID)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminHandler_UpdateStatus_BuyerCode(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "Ada", "ada@example.com", policy.RoleAdmin, "org-a")
	l := env.addLead(t, "Maria", "Lopez", admin)
	h := newAdminHandler(env)

	body := `{"status":"POSTED","buyerCode":"BUY-42"}`
	c, rec := newRequest(http.MethodPut, "/api/v1/admin/leads/"+l.ID+"/status", body, &admin, "id", l.ID)

	require.NoError(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BUY-42", resp.BuyerCode)
}

func TestAdminHandler_Export_CSV(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "Ada", "ada@example.com", policy.RoleAdmin, "org-a")
	env.addLead(t, "Maria", "Lopez", admin)
	env.addLead(t, "Jon", "Smith", admin)
	h := newAdminHandler(env)

	c, rec := newRequest(http.MethodGet, "/api/v1/admin/leads/export?format=csv", "", &admin)

	require.NoError(t, h.Export(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestAdminHandler_Export_BadFormat(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "Ada", "ada@example.com", policy.RoleAdmin, "org-a")
	h := newAdminHandler(env)

	c, rec := newRequest(http.MethodGet, "/api/v1/admin/leads/export?format=pdf", "", &admin)

	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
