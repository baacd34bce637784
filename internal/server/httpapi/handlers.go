// Package httpapi exposes the wallet backend over HTTP (fiber). Access
// tokens travel in the Authorization header; refresh tokens live in an
// httpOnly cookie and are never visible to page scripts.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/logging"
	"github.com/dmitrijs2005/walletvault/internal/server/config"
	"github.com/dmitrijs2005/walletvault/internal/server/models"
	"github.com/dmitrijs2005/walletvault/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

const refreshCookieName = "refreshToken"

// AuthProvider is the slice of the auth service the handlers need.
type AuthProvider interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, string, error)
	Login(ctx context.Context, identifier string, password string) (*services.LoginResult, error)
	VerifySecondFactor(ctx context.Context, pendingID string, code string) (*services.LoginResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, accountID string, oldPassword string, newPassword string) error
	CheckUsername(ctx context.Context, username string) (bool, error)
}

type WalletProvider interface {
	Get(ctx context.Context, accountID string) (*models.Wallet, error)
	PutSeed(ctx context.Context, accountID string, encryptedSeed string, kdfSalt []byte) error
}

type ResetProvider interface {
	RequestReset(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email string, code string) (string, error)
	ResetPassword(ctx context.Context, ticket string, newPassword string) error
}

type Handler struct {
	auth            AuthProvider
	wallet          WalletProvider
	reset           ResetProvider
	logger          logging.Logger
	accessSecret    []byte
	refreshValidity time.Duration
	secureCookies   bool
}

func NewHandler(auth AuthProvider, wallet WalletProvider, reset ResetProvider, cfg *config.Config, l logging.Logger) *Handler {
	return &Handler{
		auth:            auth,
		wallet:          wallet,
		reset:           reset,
		logger:          l.With("module", "httpapi"),
		accessSecret:    []byte(cfg.AccessTokenSecret),
		refreshValidity: cfg.RefreshTokenValidityDuration,
		secureCookies:   cfg.Env == "production",
	}
}

// writeError maps service sentinels to HTTP statuses. Anything unrecognized
// becomes a generic 500 so internals never leak to clients.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	case errors.Is(err, common.ErrResetCodeInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid or expired reset code"})
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, common.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, common.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already exists"})
	case errors.Is(err, common.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
	case errors.Is(err, common.ErrWalletDecryptionFailed):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stored wallet could not be decrypted"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func (h *Handler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		MaxAge:   int(h.refreshValidity.Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/api/v1/auth",
	})
}

func (h *Handler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/api/v1/auth",
	})
}

func (h *Handler) Ping(c *fiber.Ctx) error {
	return c.SendString("OK")
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, common.ErrInvalidInput)
	}

	account, otpauthURL, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		Username:         req.Username,
		Email:            req.Email,
		Name:             req.Name,
		Password:         req.Password,
		WalletAddress:    req.WalletAddress,
		EncryptedSeed:    req.EncryptedSeed,
		KDFSalt:          req.KDFSalt,
		PhoneNumber:      req.PhoneNumber,
		AvatarURI:        req.AvatarURI,
		CountryCode:      req.CountryCode,
		CallingCode:      req.CallingCode,
		TwoFactorEnabled: req.TwoFactorEnabled,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(registerResponse{
		Account:    toAccountResponse(account),
		OtpauthURL: otpauthURL,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, common.ErrInvalidInput)
	}

	res, err := h.auth.Login(c.UserContext(), req.Identifier, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	if res.Requires2FA {
		return c.JSON(loginResponse{Requires2FA: true, PendingID: res.PendingID})
	}

	h.setRefreshCookie(c, res.Tokens.RefreshToken)
	return c.JSON(loginResponse{
		AccessToken: res.Tokens.AccessToken,
		Account:     toAccountResponse(res.Account),
	})
}

func (h *Handler) VerifySecondFactor(c *fiber.Ctx) error {
	var req verify2FARequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, common.ErrInvalidInput)
	}

	res, err := h.auth.VerifySecondFactor(c.UserContext(), req.PendingID, req.Code)
	if err != nil {
		return writeError(c, err)
	}

	h.setRefreshCookie(c, res.Tokens.RefreshToken)
	return c.JSON(loginResponse{
		AccessToken: res.Tokens.AccessToken,
		Account:     toAccountResponse(res.Account),
	})
}

func (h *Handler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookieName)
	if token == "" {
		return writeError(c, common.ErrUnauthorized)
	}

	access, err := h.auth.RefreshAccessToken(c.UserContext(), token)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(refreshResponse{AccessToken: access})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookieName)
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return writeError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, common.ErrInvalidInput)
	}

	accountID, _ := c.Locals(localsAccountID).(string)
	if err := h.auth.ChangePassword(c.UserContext(), accountID, req.OldPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) CheckUsername(c *fiber.Ctx) error {
	username := c.Query("username")

	available, err := h.auth.CheckUsername(c.UserContext(), username)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(checkUsernameResponse{Available: available})
}

func (h *Handler) RequestPasswordReset(c *fiber.Ctx) error {
	var req requestResetRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, common.ErrInvalidInput)
	}

	if err := h.reset.RequestReset(c.UserContext(), req.Email); err != nil {
		return writeError(c, err)
	}

	// Deliberately identical for known and unknown emails.
	return c.JSON(fiber.Map{"message": "if the email is registered, a code has been sent"})
}

func (h *Handler) VerifyResetCode(c *fiber.Ctx) error {
	var req verifyResetCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, common.ErrInvalidInput)
	}

	ticket, err := h.reset.VerifyResetCode(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(verifyResetCodeResponse{ResetTicket: ticket})
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, common.ErrInvalidInput)
	}

	if err := h.reset.ResetPassword(c.UserContext(), req.ResetTicket, req.NewPassword); err != nil {
		return writeError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) GetWallet(c *fiber.Ctx) error {
	accountID, _ := c.Locals(localsAccountID).(string)

	wallet, err := h.wallet.Get(c.UserContext(), accountID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(walletResponse{
		WalletAddress: wallet.WalletAddress,
		EncryptedSeed: wallet.EncryptedSeed,
		KDFSalt:       wallet.KDFSalt,
	})
}

func (h *Handler) PutWalletSeed(c *fiber.Ctx) error {
	var req putSeedRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, common.ErrInvalidInput)
	}

	accountID, _ := c.Locals(localsAccountID).(string)
	if err := h.wallet.PutSeed(c.UserContext(), accountID, req.EncryptedSeed, req.KDFSalt); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
