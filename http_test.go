package kebapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/kebapi"
)

func testSettings() *kebapi.Settings {
	return &kebapi.Settings{
		Server: kebapi.ServerSettings{
			Address: ":0",
			Env:     "test",
		},
		Token: testTokenSettings(),
		Paging: kebapi.PagingSettings{
			MinStartRow: 0,
			MinRowCount: 1,
			MaxRowCount: 50,
		},
		Registration: kebapi.RegistrationSettings{
			MinUsernameLength: 3,
			MinPasswordLength: 8,
		},
	}
}

type serverFixture struct {
	app    *fiber.App
	repos  kebapi.RepositoryManager
	tokens *kebapi.TokenService
}

func setupServer(t *testing.T) *serverFixture {
	t.Helper()

	repos := setupRepos(t)

	tokens, err := kebapi.NewTokenService(testTokenSettings(), nil)
	require.NoError(t, err)

	auth := kebapi.NewAuthenticator(repos.Users(), tokens)
	server := kebapi.NewServer(testSettings(), repos, auth, tokens, nil)

	return &serverFixture{
		app:    server.App(),
		repos:  repos,
		tokens: tokens,
	}
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func decodeBody(t *testing.T, res *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
}

func authHeader(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func registerViaAPI(t *testing.T, fx *serverFixture, username, email, password string) *kebapi.User {
	t.Helper()

	res, err := fx.app.Test(jsonRequest(t, "POST", "/users/register", fiber.Map{
		"username": username,
		"email":    email,
		"password": password,
		"name":     username,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	user := &kebapi.User{}
	decodeBody(t, res, user)
	return user
}

func loginViaAPI(t *testing.T, fx *serverFixture, identifier, password string) string {
	t.Helper()

	res, err := fx.app.Test(jsonRequest(t, "POST", "/users/auth", fiber.Map{
		"username_or_email": identifier,
		"password":          password,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	payload := struct {
		Token struct {
			Token string `json:"token"`
		} `json:"token"`
	}{}
	decodeBody(t, res, &payload)
	require.NotEmpty(t, payload.Token.Token)

	return payload.Token.Token
}

func TestRegistrationAndAuthenticationEndpoints(t *testing.T) {
	fx := setupServer(t)

	t.Run("register then authenticate", func(t *testing.T) {
		user := registerViaAPI(t, fx, "dennis", "dennis@example.com", "Secr3tPass!")
		assert.NotZero(t, user.ID)
		assert.Equal(t, kebapi.RoleUser, user.Role)

		token := loginViaAPI(t, fx, "dennis", "Secr3tPass!")

		claims, err := fx.tokens.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "dennis", claims.Username())
	})

	t.Run("registration rejects invalid payloads", func(t *testing.T) {
		testCases := []struct {
			name    string
			payload fiber.Map
		}{
			{"short username", fiber.Map{"username": "ab", "email": "a@b.com", "password": "Secr3tPass!"}},
			{"short password", fiber.Map{"username": "newuser", "email": "a@b.com", "password": "short"}},
			{"bad email", fiber.Map{"username": "newuser", "email": "not-an-email", "password": "Secr3tPass!"}},
			{"missing everything", fiber.Map{}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				res, err := fx.app.Test(jsonRequest(t, "POST", "/users/register", tc.payload))
				require.NoError(t, err)
				assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
			})
		}
	})

	t.Run("bad credentials are a uniform 401", func(t *testing.T) {
		for _, identifier := range []string{"dennis", "ghost"} {
			res, err := fx.app.Test(jsonRequest(t, "POST", "/users/auth", fiber.Map{
				"username_or_email": identifier,
				"password":          "wrong-password",
			}))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

			status := kebapi.APIStatus{}
			decodeBody(t, res, &status)
			assert.Equal(t, "Authentication failed.", status.Message)
		}
	})
}

func TestProtectedEndpoints(t *testing.T) {
	fx := setupServer(t)

	alice := registerViaAPI(t, fx, "alice", "alice@example.com", "Secr3tPass!")
	registerViaAPI(t, fx, "bob", "bob@example.com", "An0therPass!")

	aliceToken := loginViaAPI(t, fx, "alice", "Secr3tPass!")
	bobToken := loginViaAPI(t, fx, "bob", "An0therPass!")

	alicePath := "/users/" + strconv.FormatInt(alice.ID, 10)

	t.Run("owner can read their own record", func(t *testing.T) {
		res, err := fx.app.Test(authHeader(jsonRequest(t, "GET", alicePath, nil), aliceToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		user := &kebapi.User{}
		decodeBody(t, res, user)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("stranger gets a 403 with no detail", func(t *testing.T) {
		res, err := fx.app.Test(authHeader(jsonRequest(t, "GET", alicePath, nil), bobToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

		status := kebapi.APIStatus{}
		decodeBody(t, res, &status)
		assert.Equal(t, "Forbidden.", status.Message)
	})

	t.Run("missing token is a 400", func(t *testing.T) {
		res, err := fx.app.Test(jsonRequest(t, "GET", alicePath, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})

	t.Run("garbage token is a 401", func(t *testing.T) {
		res, err := fx.app.Test(authHeader(jsonRequest(t, "GET", alicePath, nil), "garbage"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("admin can read any record and the counts", func(t *testing.T) {
		bundle, err := kebapi.GenerateHashBundle("Sup3rSecret!")
		require.NoError(t, err)

		admin, err := fx.repos.Users().Register(context.Background(), &kebapi.User{
			Username:     "root",
			Email:        "root@example.com",
			Name:         "root",
			PasswordHash: bundle,
			Role:         kebapi.RoleAdmin,
		})
		require.NoError(t, err)

		adminToken := loginViaAPI(t, fx, "root", "Sup3rSecret!")

		claims, err := fx.tokens.Validate(adminToken)
		require.NoError(t, err)
		require.Equal(t, strconv.FormatInt(admin.ID, 10), claims.UserID())

		res, err := fx.app.Test(authHeader(jsonRequest(t, "GET", alicePath, nil), adminToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		res, err = fx.app.Test(authHeader(jsonRequest(t, "GET", "/users/count", nil), adminToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		res, err = fx.app.Test(authHeader(jsonRequest(t, "GET", "/users/count", nil), bobToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})

	t.Run("home resolves the caller from their token", func(t *testing.T) {
		res, err := fx.app.Test(authHeader(jsonRequest(t, "GET", "/users/home", nil), aliceToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		user := &kebapi.User{}
		decodeBody(t, res, user)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("owner can manage their favourites", func(t *testing.T) {
		venue := createVenue(t, fx.repos, "Kebab Palace", 51.5074, -0.1278)
		favPath := alicePath + "/favourites/" + strconv.FormatInt(venue.ID, 10)

		res, err := fx.app.Test(authHeader(jsonRequest(t, "POST", favPath, nil), aliceToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		res, err = fx.app.Test(authHeader(jsonRequest(t, "GET", alicePath+"/favourites", nil), aliceToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		var venues []*kebapi.Venue
		decodeBody(t, res, &venues)
		require.Len(t, venues, 1)
		assert.Equal(t, venue.ID, venues[0].ID)

		res, err = fx.app.Test(authHeader(jsonRequest(t, "POST", favPath, nil), bobToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

		res, err = fx.app.Test(authHeader(jsonRequest(t, "DELETE", favPath, nil), aliceToken))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})
}

func TestAnonymousEndpoints(t *testing.T) {
	fx := setupServer(t)

	createVenue(t, fx.repos, "Kebab Palace", 51.5074, -0.1278)
	createVenue(t, fx.repos, "Paris Grill", 48.8566, 2.3522)

	t.Run("venues are readable without a token", func(t *testing.T) {
		res, err := fx.app.Test(jsonRequest(t, "GET", "/venues", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		var venues []*kebapi.Venue
		decodeBody(t, res, &venues)
		assert.Len(t, venues, 2)
	})

	t.Run("nearby needs coordinates", func(t *testing.T) {
		res, err := fx.app.Test(jsonRequest(t, "GET", "/venues/nearby", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)

		res, err = fx.app.Test(jsonRequest(t, "GET", "/venues/nearby?lat=51.5&lng=-0.12", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		var nearby []*kebapi.VenueDistance
		decodeBody(t, res, &nearby)
		require.Len(t, nearby, 2)
		assert.Equal(t, "Kebab Palace", nearby[0].Name)
	})

	t.Run("unknown venue is a 404", func(t *testing.T) {
		res, err := fx.app.Test(jsonRequest(t, "GET", "/venues/9999", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	})

	t.Run("dev schema routes are not mounted outside development", func(t *testing.T) {
		for _, target := range []string{
			"/admin/dev/createdb",
			"/admin/dev/dropdb",
			"/admin/dev/resetdb",
			"/admin/dev/resettestdb",
		} {
			res, err := fx.app.Test(jsonRequest(t, "GET", target, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
		}
	})
}
