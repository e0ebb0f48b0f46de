package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/config"
	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/utils"
)

// AuthUserStore is the slice of user persistence auth needs.
type AuthUserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// AuthShelterStore resolves shelter accounts during login and reserves
// their emails against user registrations.
type AuthShelterStore interface {
	GetByEmail(ctx context.Context, email string) (model.Shelter, error)
	GetByID(ctx context.Context, id uint64) (model.Shelter, error)
	EmailReserved(ctx context.Context, email string) (bool, error)
}

// RefreshTokenStore persists hashed refresh tokens.
type RefreshTokenStore interface {
	StoreRefresh(ctx context.Context, principalID uint64, role, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
}

// ShelterRegistrar runs the pending-shelter registration flow.
type ShelterRegistrar interface {
	Register(ctx context.Context, sh *model.Shelter, password string, cost int) error
}

// NotificationWriter appends ledger entries.
type NotificationWriter interface {
	Add(ctx context.Context, rec model.Recipient, message string) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     AuthUserStore
	Shelters  AuthShelterStore
	Tokens    RefreshTokenStore
	Registrar ShelterRegistrar
	Notes     NotificationWriter
}

func NewAuthHandler(cfg config.Config, users AuthUserStore, shelters AuthShelterStore, tokens RefreshTokenStore, registrar ShelterRegistrar, notes NotificationWriter) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Shelters: shelters, Tokens: tokens, Registrar: registrar, Notes: notes}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type registerShelterReq struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Address         string  `json:"address"`
	ContactNumber   string  `json:"contact_number"`
	Email           string  `json:"email"`
	Website         *string `json:"website"`
	DateEstablished string  `json:"date_established"`
	ShelterType     string  `json:"shelter_type"`
	Password        string  `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type principalPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

type authResp struct {
	Principal principalPart `json:"user"`
	Access    tokenPart     `json:"access"`
	Refresh   tokenPart     `json:"refresh"`
}

// Register creates a USER account and returns a token pair right away.
// The email must be free across both the users table and non-rejected
// shelters.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if reserved, err := h.Shelters.EmailReserved(ctx, req.Email); err != nil {
		return errJSON(c, err)
	} else if reserved {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}

	u := model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Role:      model.RoleUser,
	}
	uid, err := h.Users.Create(ctx, &u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return errJSON(c, err)
	}

	if err := h.Notes.Add(ctx, model.UserRecipient(uid),
		"Welcome! Complete your profile to start sending adoption requests."); err != nil {
		c.Logger().Warnf("welcome notification failed for user %d: %v", uid, err)
	}

	return h.issueTokens(c, http.StatusCreated, principalPart{ID: uid, Email: req.Email, Role: model.RoleUser})
}

// RegisterShelter creates a PENDING shelter account. No tokens are
// issued: the shelter cannot log in until an admin approves it.
func (h *AuthHandler) RegisterShelter(c echo.Context) error {
	var req registerShelterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sh := model.Shelter{
		Name:            req.Name,
		Description:     req.Description,
		Address:         req.Address,
		ContactNumber:   req.ContactNumber,
		Email:           req.Email,
		Website:         req.Website,
		DateEstablished: req.DateEstablished,
		ShelterType:     req.ShelterType,
	}
	if err := h.Registrar.Register(ctx, &sh, req.Password, h.Cfg.BcryptCost); err != nil {
		return errJSON(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"shelter": toShelterJSON(sh),
		"message": "registration received, awaiting admin approval",
	})
}

// Login authenticates against the users table first, then shelters.
// Pending and rejected shelters get distinguishable 403 responses so
// the client can explain what is going on.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if u, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		if !utils.VerifyPassword(u.PasswordHash, req.Password) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return h.issueTokens(c, http.StatusOK, principalPart{ID: u.ID, Email: u.Email, Role: u.Role})
	}

	sh, err := h.Shelters.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !utils.VerifyPassword(sh.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	switch sh.Approval {
	case model.ApprovalPending:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "shelter awaiting approval", "state": string(model.ApprovalPending)})
	case model.ApprovalRejected:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "shelter registration rejected", "state": string(model.ApprovalRejected)})
	}
	return h.issueTokens(c, http.StatusOK, principalPart{ID: sh.ID, Email: sh.Email, Role: model.RoleShelter, Name: sh.Name})
}

// Refresh rotates a refresh token and issues a fresh access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	principalID, role, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return h.issueTokens(c, http.StatusOK, principalPart{ID: principalID, Role: role})
}

// Logout revokes the presented refresh token. Always succeeds so the
// endpoint leaks nothing about token validity.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	_ = h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(req.RefreshToken))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated principal's account.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if role == model.RoleShelter {
		sh, err := h.Shelters.GetByID(ctx, id)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"shelter": toShelterJSON(sh)})
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserJSON(u)})
}

func (h *AuthHandler) issueTokens(c echo.Context, status int, p principalPart) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p.ID, p.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, p.ID, p.Role, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(status, authResp{
		Principal: p,
		Access:    tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:   tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw goes back to the client
	})
}
