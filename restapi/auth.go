package restapi

import (
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	jwtverifier "github.com/okta/okta-jwt-verifier-golang"
)

// AccessLevel is the clearance granted to a caller.
type AccessLevel string

const (
	// Forensic callers may run and read analyses.
	Forensic AccessLevel = "L4_FORENSIC"
	// Admin callers may also read every caller's analyses.
	Admin AccessLevel = "L5_ADMIN"
)

// Session is the verified caller of a request.
type Session struct {
	AgentID     string      `json:"agentId"`
	AccessLevel AccessLevel `json:"accessLevel"`
}

// CanRead reports whether s may read a report owned by owner.
func (s Session) CanRead(owner string) bool {
	return s.AccessLevel == Admin || owner == "" || owner == s.AgentID
}

const sessionKey = "premortem.session"

// SessionOf returns the session stored on c by the auth middleware.
func SessionOf(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// TokenVerifier turns a bearer token into a Session.
type TokenVerifier interface {
	Verify(token string) (Session, error)
}

// AuthConfig drives request authentication.
type AuthConfig struct {
	// Env "DEV" disables checks. "QA" also accepts QAToken.
	Env          string
	QAToken      string
	OktaDomain   string
	OktaClientID string
	// AdminGroup in the token's groups claim grants Admin.
	AdminGroup string
}

// AuthConfigFromEnv reads PREMORTEM_ENV, PREMORTEM_QA_TOKEN, OKTA_DOMAIN, OKTA_CLIENT_ID and
// PREMORTEM_ADMIN_GROUP.
func AuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		Env:          os.Getenv("PREMORTEM_ENV"),
		QAToken:      os.Getenv("PREMORTEM_QA_TOKEN"),
		OktaDomain:   os.Getenv("OKTA_DOMAIN"),
		OktaClientID: os.Getenv("OKTA_CLIENT_ID"),
		AdminGroup:   os.Getenv("PREMORTEM_ADMIN_GROUP"),
	}
}

type oktaVerifier struct {
	verifier   *jwtverifier.JwtVerifier
	adminGroup string
}

// NewOktaVerifier verifies Okta access tokens issued by the default authorization server of domain.
func NewOktaVerifier(cfg AuthConfig) TokenVerifier {
	setup := jwtverifier.JwtVerifier{
		Issuer: "https://" + cfg.OktaDomain + "/oauth2/default",
		ClaimsToValidate: map[string]string{
			"aud": "api://default",
			"cid": cfg.OktaClientID,
		},
	}
	return &oktaVerifier{verifier: setup.New(), adminGroup: cfg.AdminGroup}
}

func (o *oktaVerifier) Verify(token string) (Session, error) {
	jwt, err := o.verifier.VerifyAccessToken(token)
	if err != nil {
		return Session{}, err
	}
	return sessionFromClaims(jwt.Claims, o.adminGroup)
}

func sessionFromClaims(claims map[string]interface{}, adminGroup string) (Session, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Session{}, errors.New("token has no subject")
	}
	s := Session{AgentID: sub, AccessLevel: Forensic}
	if adminGroup == "" {
		return s, nil
	}
	groups, _ := claims["groups"].([]interface{})
	for _, g := range groups {
		if g == adminGroup {
			s.AccessLevel = Admin
			break
		}
	}
	return s, nil
}

// Authenticator is the bearer token middleware.
type Authenticator struct {
	cfg      AuthConfig
	verifier TokenVerifier
}

// NewAuthenticator creates an Authenticator. A nil verifier defaults to Okta.
func NewAuthenticator(cfg AuthConfig, verifier TokenVerifier) *Authenticator {
	if verifier == nil && !strings.EqualFold(cfg.Env, "DEV") {
		verifier = NewOktaVerifier(cfg)
	}
	return &Authenticator{cfg: cfg, verifier: verifier}
}

// Wrap runs h only for a verified caller, whose Session is stored on the context.
func (a *Authenticator) Wrap(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := a.verify(c)
		if !ok {
			return
		}
		c.Set(sessionKey, s)
		h(c)
	}
}

// Verify the bearer token in header.
func (a *Authenticator) verify(c *gin.Context) (Session, bool) {
	// Allow easy debugging on dev.
	if strings.EqualFold(a.cfg.Env, "DEV") {
		return Session{AgentID: "AGENT_DEV", AccessLevel: Admin}, true
	}

	token, found := strings.CutPrefix(c.Request.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return Session{}, false
	}

	// Bypass token verification w/ a simple equality check on QA.
	if strings.EqualFold(a.cfg.Env, "QA") && a.cfg.QAToken != "" && token == a.cfg.QAToken {
		return Session{AgentID: "AGENT_QA", AccessLevel: Forensic}, true
	}

	s, err := a.verifier.Verify(token)
	if err != nil {
		log.Warn("bearer token rejected", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("token rejected: %v", err)})
		return Session{}, false
	}
	return s, true
}
