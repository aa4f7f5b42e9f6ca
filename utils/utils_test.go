package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		0:          "$0.00",
		4.25:       "$4.25",
		999.999:    "$1,000.00",
		1234.5:     "$1,234.50",
		1234567.89: "$1,234,567.89",
		-12.3:      "-$12.30",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPrice(in), "FormatPrice(%v)", in)
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateToken(7, "staff")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "staff", claims.Role)
	assert.NotEmpty(t, claims.ID)

	other, err := GenerateToken(7, "staff")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestParseTokenRejects(t *testing.T) {
	SetJWTSecret("test-secret")

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		UserID: 1,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.Error(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{UserID: 1, Role: "admin"})
	signed, err = foreign.SignedString([]byte("someone-else"))
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.Error(t, err)
}

func TestBlacklistToken(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateToken(3, "admin")
	require.NoError(t, err)

	assert.False(t, IsTokenBlacklisted(token))
	BlacklistToken(token)
	assert.True(t, IsTokenBlacklisted(token))

	_, err = ParseToken(token)
	assert.EqualError(t, err, "token has been revoked")
}

func TestRespondHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondJSON(c, http.StatusCreated, "created", gin.H{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":true,"message":"created","data":{"id":1}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondErrorData(c, http.StatusBadRequest, errors.New("invalid table"), map[string]string{"seats": "required"})
	assert.JSONEq(t, `{"status":false,"message":"invalid table","data":{"seats":"required"}}`, w.Body.String())
}
