package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/dashboard"
	"github.com/jonathan/jdstudio/internal/types"
)

func TestLoginEndpoint(t *testing.T) {
	fb := &fakeBackend{login: func(req *types.LoginRequest) (*types.LoginResponse, error) {
		if req.Password != "secret" {
			return nil, &backend.APICallError{Endpoint: backend.LoginPath, Status: http.StatusUnauthorized, Message: "Invalid credentials"}
		}
		return &types.LoginResponse{Token: "jwt-token", Recruiter: &types.Recruiter{Name: "Asha"}}, nil
	}}
	rs := startServer(t, Config{Backend: fb})

	tests := []struct {
		name       string
		req        types.LoginRequest
		wantStatus int
		wantError  string
	}{
		{"success", types.LoginRequest{Username: "asha", Password: "secret"}, http.StatusOK, ""},
		{"bad password", types.LoginRequest{Username: "asha", Password: "nope"}, http.StatusUnauthorized, "Invalid credentials"},
		{"missing password", types.LoginRequest{Username: "asha"}, http.StatusBadRequest, "Password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, rs.URL+"/auth/login", "", tt.req)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantError != "" {
				var body map[string]string
				decodeBody(t, resp, &body)
				assert.Contains(t, body["error"], tt.wantError)
				return
			}

			var body types.LoginResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, "jwt-token", body.Token)
			require.NotNil(t, body.Recruiter)
			assert.Equal(t, "Asha", body.Recruiter.Name)
		})
	}
}

func TestLoginEndpoint_BackendDown(t *testing.T) {
	fb := &fakeBackend{login: func(*types.LoginRequest) (*types.LoginResponse, error) {
		return nil, &backend.APICallError{Endpoint: backend.LoginPath, Message: "HTTP request failed"}
	}}
	rs := startServer(t, Config{Backend: fb})

	resp := postJSON(t, rs.URL+"/auth/login", "", types.LoginRequest{Username: "a", Password: "b"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestDashboardEndpoint(t *testing.T) {
	rs := startServer(t, Config{})

	t.Run("requires token", func(t *testing.T) {
		resp, err := http.Get(rs.URL + "/admin/dashboard")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("snapshot", func(t *testing.T) {
		resp, err := http.DefaultClient.Do(request(t, http.MethodGet, rs.URL+"/admin/dashboard", "", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body DashboardResponse
		decodeBody(t, resp, &body)

		want := dashboard.Default()
		require.NotNil(t, body.Snapshot)
		assert.Equal(t, want.Stats, body.Stats)
		assert.Equal(t, want.Monthly, body.Monthly)
		assert.InDelta(t, want.SelectionRatio(), body.SelectionRatio, 1e-9)
		assert.Equal(t, want.GrowthSeries(), body.Growth)
		assert.Zero(t, body.ActiveReveals)
	})
}
