package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/mzalendo/customer-records/internal/auth"
	"github.com/mzalendo/customer-records/internal/middleware"
	"github.com/mzalendo/customer-records/internal/models"
)

type AuthHandler struct {
	db     *gorm.DB
	secret []byte
	flash  *sessions.CookieStore

	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	oidcEnabled  bool
}

// NewAuthHandler wires password login and, when the OIDC_* environment
// variables are all present, single sign-on against that provider.
func NewAuthHandler(db *gorm.DB, secret []byte, flash *sessions.CookieStore) *AuthHandler {
	h := &AuthHandler{db: db, secret: secret, flash: flash}

	providerURL := os.Getenv("OIDC_PROVIDER_URL")
	clientID := os.Getenv("OIDC_CLIENT_ID")
	clientSecret := os.Getenv("OIDC_CLIENT_SECRET")
	redirectURI := os.Getenv("OIDC_REDIRECT_URI")

	if providerURL != "" && clientID != "" && clientSecret != "" && redirectURI != "" {
		ctx := context.Background()
		provider, err := oidc.NewProvider(ctx, providerURL)
		if err == nil {
			h.provider = provider
			h.verifier = provider.Verifier(&oidc.Config{ClientID: clientID})
			h.oauth2Config = &oauth2.Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				Endpoint:     provider.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
				RedirectURL:  redirectURI,
			}
			h.oidcEnabled = true
		}
	}

	return h
}

func (h *AuthHandler) SSOEnabled() bool {
	return h.oidcEnabled
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, user *models.User) error {
	token, err := auth.Mint(h.secret, user)
	if err != nil {
		return err
	}
	c.SetCookie(middleware.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", false, true)
	return nil
}

// isDuplicateKey recognizes a unique-index violation from either
// backing database.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"Form": models.RegisterForm{}})
}

// Register creates a User in the customer role plus a linked empty
// Customer profile. On any validation failure nothing is persisted and
// the form re-renders with field errors.
func (h *AuthHandler) Register(c *gin.Context) {
	form := models.RegisterForm{
		Username: c.PostForm("username"),
		Password: c.PostForm("password1"),
		Confirm:  c.PostForm("password2"),
	}

	errs := form.Validate()
	if len(errs) == 0 {
		var existing models.User
		err := h.db.Where("username = ?", form.Username).First(&existing).Error
		if err == nil {
			errs["username"] = "A user with that username already exists."
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			serverError(c, err)
			return
		}
	}
	if len(errs) > 0 {
		c.HTML(http.StatusOK, "register.html", gin.H{"Form": form, "Errors": errs})
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		serverError(c, err)
		return
	}

	user := models.User{Username: form.Username, PasswordHash: hash, Role: models.RoleCustomer}
	if err := h.db.Create(&user).Error; err != nil {
		// A concurrent registration can slip past the lookup above
		// and trip the unique index instead.
		if isDuplicateKey(err) {
			errs["username"] = "A user with that username already exists."
			c.HTML(http.StatusOK, "register.html", gin.H{"Form": form, "Errors": errs})
			return
		}
		serverError(c, err)
		return
	}
	userID := user.ID
	if err := h.db.Create(&models.Customer{UserID: &userID}).Error; err != nil {
		serverError(c, err)
		return
	}

	addFlash(h.flash, c, "success", "Account was created for "+user.Username)
	c.Redirect(http.StatusFound, "/login/")
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Flashes":    takeFlashes(h.flash, c),
		"Username":   "",
		"SSOEnabled": h.oidcEnabled,
	})
}

// Login checks credentials and establishes the session cookie. The
// failure message never distinguishes unknown usernames from wrong
// passwords.
func (h *AuthHandler) Login(c *gin.Context) {
	form := models.LoginForm{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	failed := len(form.Validate()) > 0
	var user models.User
	if !failed {
		err := h.db.Where("username = ?", form.Username).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failed = true
		} else if err != nil {
			serverError(c, err)
			return
		}
	}
	if !failed && !auth.CheckPassword(user.PasswordHash, form.Password) {
		failed = true
	}

	if failed {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Error":      "Username or password is wrong",
			"Username":   form.Username,
			"SSOEnabled": h.oidcEnabled,
		})
		return
	}

	if err := h.setSessionCookie(c, &user); err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/user/")
}

// Logout tears the session down unconditionally.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login/")
}

const ssoStateCookie = "sso_state"

// SSOLogin stashes a random state in a short-lived cookie and redirects
// to the configured identity provider.
func (h *AuthHandler) SSOLogin(c *gin.Context) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		serverError(c, err)
		return
	}
	state := hex.EncodeToString(buf)
	c.SetCookie(ssoStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.oauth2Config.AuthCodeURL(state))
}

// SSOCallback exchanges the authorization code, verifies the ID token
// and signs the caller in, creating the User and linked Customer on
// first sight of the email.
func (h *AuthHandler) SSOCallback(c *gin.Context) {
	state, err := c.Cookie(ssoStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.String(http.StatusBadRequest, "state mismatch")
		return
	}
	c.SetCookie(ssoStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "missing authorization code")
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := h.oauth2Config.Exchange(ctx, code)
	if err != nil {
		serverError(c, err)
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		serverError(c, errors.New("no id_token in token response"))
		return
	}

	idToken, err := h.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.String(http.StatusUnauthorized, "invalid identity token")
		return
	}

	var ssoClaims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&ssoClaims); err != nil {
		serverError(c, err)
		return
	}
	if ssoClaims.Email == "" {
		c.String(http.StatusUnauthorized, "identity token has no email")
		return
	}

	var user models.User
	err = h.db.Where("username = ?", ssoClaims.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// SSO accounts have no local password; an empty hash never
		// matches in CheckPassword.
		user = models.User{Username: ssoClaims.Email, PasswordHash: "", Role: models.RoleCustomer}
		if err := h.db.Create(&user).Error; err != nil {
			serverError(c, err)
			return
		}
		userID := user.ID
		if err := h.db.Create(&models.Customer{UserID: &userID, Name: ssoClaims.Name, Email: ssoClaims.Email}).Error; err != nil {
			serverError(c, err)
			return
		}
	} else if err != nil {
		serverError(c, err)
		return
	}

	if err := h.setSessionCookie(c, &user); err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/user/")
}
