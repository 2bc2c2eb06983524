package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	apimiddleware "github.com/jordanlanch/leadcrm/pkg/api/middleware"
	"github.com/jordanlanch/leadcrm/pkg/export"
	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/lifecycle"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/reporting"
	"github.com/jordanlanch/leadcrm/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// testEnv bundles the in-memory stores and services the handlers sit on.
type testEnv struct {
	leadStore *leads.MemoryStore
	userStore *users.MemoryStore
	leadSvc   *leads.Service
	lifecycle *lifecycle.Service
	reporting *reporting.Service
	exporter  *export.Service
}

func newTestEnv() *testEnv {
	leadStore := leads.NewMemoryStore()
	userStore := users.NewMemoryStore()
	return &testEnv{
		leadStore: leadStore,
		userStore: userStore,
		leadSvc:   leads.NewService(leadStore),
		lifecycle: lifecycle.NewService(leadStore),
		reporting: reporting.NewService(leadStore),
		exporter:  export.NewService(leadStore, userStore),
	}
}

func newLeadHandler(env *testEnv) *LeadHandler {
	return NewLeadHandler(env.leadSvc, env.lifecycle, env.userStore)
}

// addUser inserts a user and returns its principal.
func (env *testEnv) addUser(t *testing.T, name, email string, role policy.Role, orgID string) policy.Principal {
	t.Helper()
	u := &users.User{Name: name, Email: email, Role: role, OrganizationID: orgID}
	require.NoError(t, env.userStore.Insert(context.Background(), u))
	return u.Principal()
}

// addLead inserts a lead owned by the creator.
func (env *testEnv) addLead(t *testing.T, firstName, lastName string, creator policy.Principal) *leads.Lead {
	t.Helper()
	l, err := env.leadSvc.Create(context.Background(), leads.CreateInput{
		FirstName: firstName,
		LastName:  lastName,
	}, creator)
	require.NoError(t, err)
	return l
}

// newRequest builds an echo context authenticated as p. Path params are
// given as alternating name/value pairs.
func newRequest(method, path, body string, p *policy.Principal, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if p != nil {
		apimiddleware.SetPrincipal(c, *p)
	}
	return c, rec
}
