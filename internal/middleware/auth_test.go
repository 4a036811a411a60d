package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sundaiclub/pitch-service/internal/models"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type stubMemberRepo struct {
	members map[uint]*models.Member
}

func (s *stubMemberRepo) FindByID(ctx context.Context, id uint) (*models.Member, error) {
	member, ok := s.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return member, nil
}

func (s *stubMemberRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Member, error) {
	return nil, nil
}

func signToken(t *testing.T, memberID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"member_id": memberID,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func invoke(t *testing.T, authHeader string, repo *stubMemberRepo) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	return c, Auth(testSecret, repo)(next)(c)
}

func TestAuth_ResolvesActorWithFreshRole(t *testing.T) {
	repo := &stubMemberRepo{members: map[uint]*models.Member{
		7: {ID: 7, Role: models.RoleAdmin},
	}}

	c, err := invoke(t, "Bearer "+signToken(t, 7), repo)

	assert.NoError(t, err)
	actor, ok := ActorFrom(c)
	assert.True(t, ok)
	assert.Equal(t, uint(7), actor.MemberID)
	// Role comes from the member row, not the token.
	assert.Equal(t, models.RoleAdmin, actor.Role)
}

func TestAuth_MissingHeader(t *testing.T) {
	_, err := invoke(t, "", &stubMemberRepo{})

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuth_GarbageToken(t *testing.T) {
	_, err := invoke(t, "Bearer not-a-token", &stubMemberRepo{})

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"member_id": 7})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = invoke(t, "Bearer "+signed, &stubMemberRepo{})

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuth_UnknownMember(t *testing.T) {
	_, err := invoke(t, "Bearer "+signToken(t, 42), &stubMemberRepo{members: map[uint]*models.Member{}})

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
