//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clubhaus/backoffice/internal/auth"
)

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request, optionally with a bearer token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request(http.MethodPost, path, body, token)
}

// AuthGET performs a GET request with a bearer token.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.request(http.MethodGet, path, nil, token)
}

// AuthPATCH performs a PATCH request with a bearer token.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request(http.MethodPatch, path, body, token)
}

// AuthPUT performs a PUT request with a bearer token.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request(http.MethodPut, path, body, token)
}

// AuthDELETE performs a DELETE request with a bearer token.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.request(http.MethodDelete, path, nil, token)
}

func (env *TestEnv) request(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode body: %v", method, path, err)
		}
	}

	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// ServiceToken mints a service-realm token the way the chat gateway would
// hold one.
func (env *TestEnv) ServiceToken() string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmService, uuid.New(), "gateway", "")
	if err != nil {
		env.t.Fatalf("ServiceToken: %v", err)
	}
	return token
}

// AdminToken mints an admin-realm token with the given role.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "test-admin", role)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// SeedAdmin inserts an admin_users row with a bcrypt password hash.
func (env *TestEnv) SeedAdmin(username, password, role string) uuid.UUID {
	env.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		env.t.Fatalf("SeedAdmin: hash: %v", err)
	}

	id := uuid.New()
	_, err = env.Pool.Exec(context.Background(), `
		INSERT INTO admin_users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)`, id, username, string(hash), role)
	if err != nil {
		env.t.Fatalf("SeedAdmin: insert: %v", err)
	}
	return id
}

// SeedRank inserts a rank directly and returns its id.
func (env *TestEnv) SeedRank(name string, minPoints, bonusDays int) uuid.UUID {
	env.t.Helper()
	id := uuid.New()
	_, err := env.Pool.Exec(context.Background(), `
		INSERT INTO ranks (id, name, min_points, bonus_days)
		VALUES ($1, $2, $3, $4)`, id, name, minPoints, bonusDays)
	if err != nil {
		env.t.Fatalf("SeedRank: %v", err)
	}
	return id
}

// DecodeBody decodes a JSON response body into dst and closes it.
func (env *TestEnv) DecodeBody(resp *http.Response, dst interface{}) {
	env.t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		env.t.Fatalf("decode response: %v", err)
	}
}
