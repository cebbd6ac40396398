package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"chat-engine/errors"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("NotThePassword1!", hash)
	req.NoError(err)
	req.False(match)
}

func TestHashPassword_Salts_Are_Unique(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("MonMotDePasseTr0pSûr!")
	req.NoError(err)
	second, err := HashPassword("MonMotDePasseTr0pSûr!")
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestComparePassword_Rejects_Malformed_Hashes(t *testing.T) {
	req := require.New(t)

	for _, hash := range []string{
		"",
		"plainly not a hash",
		"$bcrypt$v=19$m=65536,t=3,p=2$abc$def",
		"$argon2id$v=19$m=65536,t=3,p=2$not-base64!!$def",
	} {
		_, err := ComparePassword("whatever", hash)
		req.Error(err, "hash %q should be rejected", hash)
	}
}

func TestValidateSignup(t *testing.T) {
	req := require.New(t)

	valid := SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sup3r-Secret-Pass!",
	}
	req.NoError(ValidateSignup(valid))

	// Field rules
	tooShort := valid
	tooShort.Username = "al"
	req.Error(ValidateSignup(tooShort))

	badEmail := valid
	badEmail.Email = "not-an-email"
	req.Error(ValidateSignup(badEmail))

	shortPassword := valid
	shortPassword.Password = "Sh0rt!"
	req.Error(ValidateSignup(shortPassword))

	// Complexity: all four character classes are required
	for _, password := range []string{
		"alllowercase1234!",
		"ALLUPPERCASE1234!",
		"NoDigitsInHere!!!",
		"NoSpecials123456A",
	} {
		weak := valid
		weak.Password = password
		req.ErrorIs(ValidateSignup(weak), errors.ErrInvalidPassword)
	}
}

func TestTokenIssuer_Issue_And_Validate(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("user-42", "alice", []string{"USER"})
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal([]string{"USER"}, claims.Roles)
	req.Equal("chat-engine", claims.Issuer)
}

func TestTokenIssuer_Rejects_Foreign_Signature(t *testing.T) {
	req := require.New(t)

	token, err := NewTokenIssuer("secret-one", time.Hour).Issue("user-42", "alice", nil)
	req.NoError(err)

	_, err = NewTokenIssuer("secret-two", time.Hour).Validate(token)
	req.Error(err)
}

func TestTokenIssuer_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)

	token, err := NewTokenIssuer("test-secret", -time.Minute).Issue("user-42", "alice", nil)
	req.NoError(err)

	_, err = NewTokenIssuer("test-secret", -time.Minute).Validate(token)
	req.ErrorIs(err, jwt.ErrTokenExpired)
}
