package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"catering/internal/config"
	"catering/internal/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// SubjectKey is the gin context key holding the authenticated username
const SubjectKey = "auth.subject"

// HashPassword returns the bcrypt hash stored in admin_password_hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Authenticator checks the single admin account and issues HS256 tokens
type Authenticator struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	log          *logger.Logger
	now          func() time.Time
}

func NewAuthenticator(cfg config.AuthConfig, log *logger.Logger) *Authenticator {
	return &Authenticator{
		username:     cfg.AdminUsername,
		passwordHash: []byte(cfg.AdminPasswordHash),
		secret:       []byte(cfg.JWTSecret),
		ttl:          cfg.TokenTTL,
		log:          log,
		now:          time.Now,
	}
}

// Enabled reports whether an admin password is configured. Without one the
// admin API is left open, which is only meant for local use.
func (a *Authenticator) Enabled() bool {
	return len(a.passwordHash) > 0
}

// Login verifies the admin credentials and returns a signed token
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.Issue(username)
}

// Issue signs a token for subject
func (a *Authenticator) Issue(subject string) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.StandardClaims{
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses a token and returns its subject
func (a *Authenticator) Verify(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(a.now().Unix(), true) {
		return "", ErrInvalidToken
	}
	if claims.Subject != a.username {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler handles POST /auth/login
func (a *Authenticator) LoginHandler(c *gin.Context) {
	requestID := logger.RequestID(c.Request.Context())

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, expires, err := a.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			a.log.Warn(requestID, "login_failed", fmt.Sprintf("rejected login for %q", req.Username))
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		a.log.Error(requestID, "login_failed", "Failed to issue token", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	a.log.Info(requestID, "login", fmt.Sprintf("admin %s logged in", req.Username))
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expires.UTC().Format(time.RFC3339),
	})
}

// RequireAdmin rejects requests without a valid admin token. The token is
// read from the Authorization header, or from the token query parameter for
// websocket upgrades where browsers cannot set headers.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}

		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		subject, err := a.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}

// Subject returns the admin username set by RequireAdmin, or "admin" when
// authentication is disabled.
func Subject(c *gin.Context) string {
	if v, ok := c.Get(SubjectKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "admin"
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
