package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	healthhandler "socialcat/backend/internal/health/handler"
	identitydomain "socialcat/backend/internal/identity/domain"
	identityhandler "socialcat/backend/internal/identity/handler"
	identityservice "socialcat/backend/internal/identity/service"
	membershipdomain "socialcat/backend/internal/membership/domain"
	orgdomain "socialcat/backend/internal/organization/domain"
	orghandler "socialcat/backend/internal/organization/handler"
	orgservice "socialcat/backend/internal/organization/service"
	"socialcat/backend/internal/platform/apperrors"
	"socialcat/backend/internal/security"
	sessionhandler "socialcat/backend/internal/session/handler"
	sessionservice "socialcat/backend/internal/session/service"
)

// memStore is an in-memory organization+membership store for router tests.
// Mutex serialization stands in for the store-level locking the Postgres
// repository provides.
type memStore struct {
	mu           sync.Mutex
	orgs         map[string]*orgdomain.Organization
	memberships  []*membershipdomain.Membership
	provisionErr error // injected ProvisionDefault failure
}

func newMemStore() *memStore {
	return &memStore{orgs: make(map[string]*orgdomain.Organization)}
}

func (s *memStore) GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *org
	return &cp, nil
}

func (s *memStore) ListMembershipsByUser(ctx context.Context, userID string) ([]*membershipdomain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*membershipdomain.Membership
	for _, m := range s.memberships {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memberships {
		if m.UserID == userID && m.OrgID == orgID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListOrganizationsForUser(ctx context.Context, userID string) ([]*orgdomain.UserOrganization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*orgdomain.UserOrganization
	for _, m := range s.memberships {
		if m.UserID != userID {
			continue
		}
		org := s.orgs[m.OrgID]
		out = append(out, &orgdomain.UserOrganization{Organization: *org, Role: m.Role})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) CreateOrganizationWithOwner(ctx context.Context, o *orgdomain.Organization, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(o, ownerID)
	return nil
}

func (s *memStore) ProvisionDefault(ctx context.Context, o *orgdomain.Organization, ownerID string) (*orgdomain.UserOrganization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provisionErr != nil {
		return nil, s.provisionErr
	}
	for _, m := range s.memberships {
		if m.UserID == ownerID {
			return nil, apperrors.ErrProvisioningConflict
		}
	}
	s.insertLocked(o, ownerID)
	return &orgdomain.UserOrganization{Organization: *o, Role: membershipdomain.RoleOwner}, nil
}

func (s *memStore) insertLocked(o *orgdomain.Organization, ownerID string) {
	cp := *o
	s.orgs[cp.ID] = &cp
	s.memberships = append(s.memberships, &membershipdomain.Membership{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		OrgID:     cp.ID,
		Role:      membershipdomain.RoleOwner,
		CreatedAt: time.Now().UTC(),
	})
}

type fixture struct {
	router http.Handler
	issuer *sessionservice.Issuer
	store  *memStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	store := newMemStore()
	provisioner := orgservice.NewProvisioner(store, store, nil)
	issuer := sessionservice.NewIssuer(tokens, provisioner, store, 720*time.Hour)
	verifier := identityservice.NewStaticVerifier(identitydomain.Identity{
		ID:          "1",
		Email:       "admin@socialcat.com",
		DisplayName: "Admin",
	}, "secret-pass", "", nil)

	router := NewRouter(Deps{
		Health:       healthhandler.NewHandler(nil),
		Identity:     identityhandler.NewHandler(verifier, issuer, nil),
		Session:      sessionhandler.NewHandler(issuer),
		Organization: orghandler.NewHandler(store, nil),
		Resolver:     issuer,
	})
	return &fixture{router: router, issuer: issuer, store: store}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func (f *fixture) signIn(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "admin@socialcat.com",
		"password": "secret-pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("signin returned empty token")
	}
	return token
}

func TestSignIn_ProvisionsWorkspace(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "admin@socialcat.com",
		"password": "secret-pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	if user["id"] != "1" {
		t.Errorf("user.id = %v, want 1", user["id"])
	}
	if user["organizationId"] == nil || user["organizationId"] == "" {
		t.Error("sign-in should return an enriched session with organizationId")
	}
	if user["role"] != "owner" {
		t.Errorf("user.role = %v, want owner", user["role"])
	}

	orgID := user["organizationId"].(string)
	org := f.store.orgs[orgID]
	if org == nil {
		t.Fatal("provisioned organization not persisted")
	}
	if org.Name != "Admin's Workspace" {
		t.Errorf("workspace name = %q, want Admin's Workspace", org.Name)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "admin@socialcat.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(f.store.orgs) != 0 {
		t.Error("failed sign-in must not provision a workspace")
	}
}

func TestSignIn_MissingFields(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	details := errObj["details"].([]any)
	if len(details) != 2 {
		t.Fatalf("details length = %d, want 2 (email and password)", len(details))
	}
}

func TestGetSession(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t)

	rec := f.do(t, http.MethodGet, "/api/auth/session", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	if user["email"] != "admin@socialcat.com" {
		t.Errorf("user.email = %v", user["email"])
	}
	if user["organizationId"] == "" || user["role"] != "owner" {
		t.Errorf("session missing organization context: %v", user)
	}
	// Token already enriched; no re-issue expected.
	if got := rec.Header().Get("X-Session-Token"); got != "" {
		t.Errorf("enriched token should not be re-issued, got header %q", got)
	}
}

func TestGetSession_NoToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/auth/session", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGetSession_GarbageToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/auth/session", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGetSession_RepairsUnenrichedToken(t *testing.T) {
	f := newFixture(t)
	// Sign a token without organization context, as an interrupted sign-in
	// would have left it.
	tok, err := f.issuer.Mint(&identitydomain.Identity{ID: "1", Email: "admin@socialcat.com", DisplayName: "Admin"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	signed, err := f.issuer.Sign(tok)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/api/auth/session", signed, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	if user["organizationId"] == nil || user["organizationId"] == "" {
		t.Error("read should have repaired the missing organization context")
	}
	reissued := rec.Header().Get("X-Session-Token")
	if reissued == "" {
		t.Fatal("repaired read should return the re-issued token in X-Session-Token")
	}

	// The re-issued token resolves without another repair.
	rec2 := f.do(t, http.MethodGet, "/api/auth/session", reissued, nil)
	if rec2.Code != http.StatusOK {
		t.Fatalf("re-issued token status = %d", rec2.Code)
	}
	if got := rec2.Header().Get("X-Session-Token"); got != "" {
		t.Error("second read should not re-issue again")
	}
}

func TestRefresh_ReissuesToken(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t)

	rec := f.do(t, http.MethodPost, "/api/auth/session/refresh", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	newToken, _ := body["token"].(string)
	if newToken == "" {
		t.Fatal("refresh should return a token")
	}
	if rec.Header().Get("X-Session-Token") == "" {
		t.Error("refresh should set X-Session-Token")
	}

	rec2 := f.do(t, http.MethodGet, "/api/auth/session", newToken, nil)
	if rec2.Code != http.StatusOK {
		t.Fatalf("refreshed token rejected: %d", rec2.Code)
	}
}

func TestListOrganizations(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t)

	rec := f.do(t, http.MethodGet, "/api/organizations", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	orgs := body["organizations"].([]any)
	if len(orgs) != 1 {
		t.Fatalf("organizations length = %d, want 1", len(orgs))
	}
	first := orgs[0].(map[string]any)
	if first["role"] != "owner" {
		t.Errorf("role = %v, want owner", first["role"])
	}
	if first["name"] != "Admin's Workspace" {
		t.Errorf("name = %v", first["name"])
	}
}

func TestListOrganizations_UnenrichedSessionRejected(t *testing.T) {
	f := newFixture(t)
	// Provisioning is down, so the repair on read cannot enrich the token:
	// the listing must fail closed rather than return an empty list.
	f.store.provisionErr = errors.New("store down")
	tok, err := f.issuer.Mint(&identitydomain.Identity{ID: "1", Email: "admin@socialcat.com", DisplayName: "Admin"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	signed, err := f.issuer.Sign(tok)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/api/organizations", signed, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET status = %d, body %s, want 401", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}

	rec = f.do(t, http.MethodPost, "/api/organizations", signed, map[string]string{"name": "Marketing"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("POST status = %d, want 401", rec.Code)
	}
}

func TestCreateOrganization(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t)

	rec := f.do(t, http.MethodPost, "/api/organizations", token, map[string]string{
		"name": "Marketing",
		"plan": "pro",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	org := body["organization"].(map[string]any)
	if org["name"] != "Marketing" || org["plan"] != "pro" || org["role"] != "owner" {
		t.Errorf("unexpected organization payload: %v", org)
	}

	listRec := f.do(t, http.MethodGet, "/api/organizations", token, nil)
	listBody := decodeBody(t, listRec)
	if orgs := listBody["organizations"].([]any); len(orgs) != 2 {
		t.Errorf("organizations length after create = %d, want 2", len(orgs))
	}
}

func TestCreateOrganization_ValidationCollectsAllViolations(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t)

	rec := f.do(t, http.MethodPost, "/api/organizations", token, map[string]string{
		"name": "",
		"plan": "gold",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	details := errObj["details"].([]any)
	if len(details) != 2 {
		t.Fatalf("details length = %d, want 2 (name and plan)", len(details))
	}
}

func TestCreateOrganization_NoSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/organizations", "", map[string]string{"name": "X"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}
