package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserHandler_RegisterIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/users", donorToken, map[string]string{"name": "Donor", "bloodGroup": "a+", "district": "Dhaka"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.Equal(t, true, body["created"])
	user := body["user"].(map[string]interface{})
	require.Equal(t, "donor@example.com", user["email"])
	require.Equal(t, "A+", user["bloodGroup"])
	require.Equal(t, "donar", user["role"])

	w = env.do(t, http.MethodPost, "/api/v1/users", donorToken, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	require.Equal(t, false, body["created"])
	require.Equal(t, "Donor", body["user"].(map[string]interface{})["name"])
}

func TestUserHandler_RegisterRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/users", donorToken, map[string]string{"bloodGroup": "Z+"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/users", donorToken, "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/me", "forged", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_GetMeProvisionsProfile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/users/me", donorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.Equal(t, "donor@example.com", body["email"])
	require.Equal(t, "Donor One", body["name"])
	require.Equal(t, "active", body["status"])
}

func TestUserHandler_UpdateMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/v1/users/me", donorToken, map[string]string{"district": "Khulna", "bloodGroup": "b-"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.Equal(t, "Khulna", body["district"])
	require.Equal(t, "B-", body["bloodGroup"])

	w = env.do(t, http.MethodPut, "/api/v1/users/me", donorToken, map[string]string{"bloodGroup": "C"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_GetRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/users/role/DONOR@example.com", donorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.Equal(t, "donar", body["role"])
	require.Equal(t, "active", body["status"])

	w = env.do(t, http.MethodGet, "/api/v1/users/role/other@example.com", donorToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
