package token

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"campusmap/src/apperr"
	"campusmap/src/logger"
)

const (
	tokenTTL = time.Hour
	// UserKey is the gin context key holding the authenticated username.
	UserKey = "user"
)

type User struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Issuer signs and verifies operator tokens. users maps usernames to bcrypt
// hashes.
type Issuer struct {
	signingKey []byte
	users      map[string]string
	log        *logger.Logger
	now        func() time.Time
}

func NewIssuer(signingKey []byte, users map[string]string, log *logger.Logger) *Issuer {
	return &Issuer{signingKey: signingKey, users: users, log: log, now: time.Now}
}

func (is *Issuer) checkPassword(username, password string) bool {
	hash, ok := is.users[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (is *Issuer) Sign(username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      is.now().Add(tokenTTL).Unix(),
	})
	return token.SignedString(is.signingKey)
}

// Parse validates tokenString and returns the username it was issued to.
func (is *Issuer) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.NewValidationError("unexpected signing method", jwt.ValidationErrorSignatureInvalid)
		}
		return is.signingKey, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.NewValidationError("invalid token", jwt.ValidationErrorClaimsInvalid)
	}
	username, _ := claims["username"].(string)
	return username, nil
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.ToResponse(err))
}

// GetToken handles POST /api/get_token.
func (is *Issuer) GetToken(c *gin.Context) {
	var user User
	if err := c.ShouldBindJSON(&user); err != nil {
		abortWithError(c, apperr.Validation("Invalid request payload"))
		return
	}

	if !is.checkPassword(user.Username, user.Password) {
		is.log.AuthEvent(user.Username, false, "invalid credentials")
		abortWithError(c, apperr.Unauthorized("Invalid username or password"))
		return
	}

	tokenString, err := is.Sign(user.Username)
	if err != nil {
		abortWithError(c, apperr.Wrap(apperr.KindInternal, "Could not issue token", err).WithOp("token.Sign"))
		return
	}

	is.log.AuthEvent(user.Username, true, "")
	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

func (is *Issuer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperr.Unauthorized("Missing bearer token"))
			return
		}

		username, err := is.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			is.log.AuthEvent("", false, err.Error())
			abortWithError(c, apperr.Wrap(apperr.KindUnauthorized, "Invalid or expired token", err).WithOp("token.Parse"))
			return
		}

		c.Set(UserKey, username)
		c.Next()
	}
}
