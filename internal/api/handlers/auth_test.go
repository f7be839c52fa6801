package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/evencat/server/internal/api/middleware"
	"github.com/evencat/server/internal/domain/users"
)

func TestRegisterIssuesToken(t *testing.T) {
	repo := stubUsersRepo{
		createFn: func(params users.CreateParams) (*users.User, error) {
			return &users.User{
				ID:           params.ID,
				Username:     params.Username,
				PasswordHash: params.PasswordHash,
				DisplayName:  params.DisplayName,
			}, nil
		},
	}
	handler := newTestAuthHandler(repo, testUploads(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"username":"alice","password":"pw1","displayName":"Alice"}`))
	handler.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, jsonDecode(rec, &body))
	claims, err := testTokens().Verify(body.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.NotEmpty(t, claims.Subject)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	existing := &users.User{ID: "u1", Username: "alice"}
	repo := stubUsersRepo{
		getByUsernameFn: func(username string) (*users.User, error) {
			return existing, nil
		},
	}
	handler := newTestAuthHandler(repo, testUploads(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"username":"alice","password":"pw2","displayName":"Alice"}`))
	handler.Register(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Username already exists")
}

func TestRegisterMissingFields(t *testing.T) {
	handler := newTestAuthHandler(stubUsersRepo{}, testUploads(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"username":"alice"}`))
	handler.Register(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), users.BcryptCost)
	require.NoError(t, err)
	repo := stubUsersRepo{
		getByUsernameFn: func(username string) (*users.User, error) {
			return &users.User{ID: "u1", Username: "alice", PasswordHash: string(hash)}, nil
		},
	}
	handler := newTestAuthHandler(repo, testUploads(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alice","password":"wrong"}`))
	handler.Login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestLoginUnknownUser(t *testing.T) {
	handler := newTestAuthHandler(stubUsersRepo{}, testUploads(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"nobody","password":"pw"}`))
	handler.Login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), users.BcryptCost)
	require.NoError(t, err)
	repo := stubUsersRepo{
		getByIDFn: func(id string) (*users.User, error) {
			return &users.User{ID: id, Username: "alice", PasswordHash: string(hash)}, nil
		},
	}
	handler := newTestAuthHandler(repo, testUploads(t))

	token, err := testTokens().Issue("u1", "alice", testTTL)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/password",
		strings.NewReader(`{"currentPassword":"wrong","newPassword":"next"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	middleware.Auth(testTokens(), "test")(http.HandlerFunc(handler.UpdatePassword)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Current password is incorrect")
}

func TestMeReturnsProfileWithoutHash(t *testing.T) {
	repo := stubUsersRepo{
		getByIDFn: func(id string) (*users.User, error) {
			return &users.User{
				ID:           id,
				Username:     "alice",
				PasswordHash: "sekrit-hash",
				DisplayName:  "Alice",
				Subtitle:     "Organizer",
			}, nil
		},
	}
	handler := newTestAuthHandler(repo, testUploads(t))

	token, err := testTokens().Issue("u1", "alice", testTTL)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	middleware.Auth(testTokens(), "test")(http.HandlerFunc(handler.Me)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Alice")
	require.NotContains(t, rec.Body.String(), "sekrit-hash")
}

func TestUpdateProfilePartial(t *testing.T) {
	var applied users.ProfilePatch
	repo := stubUsersRepo{
		updateProfileFn: func(id string, patch users.ProfilePatch) (*users.User, error) {
			applied = patch
			return &users.User{ID: id, Username: "alice", DisplayName: "Alice", Subtitle: *patch.Subtitle}, nil
		},
	}
	handler := newTestAuthHandler(repo, testUploads(t))

	token, err := testTokens().Issue("u1", "alice", testTTL)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/profile",
		strings.NewReader(`{"subtitle":"Organizer"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	middleware.Auth(testTokens(), "test")(http.HandlerFunc(handler.UpdateProfile)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, applied.DisplayName)
	require.Nil(t, applied.Description)
	require.NotNil(t, applied.Subtitle)
	require.Equal(t, "Organizer", *applied.Subtitle)
}
