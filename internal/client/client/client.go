// Package client is the HTTP API client for the wallet backend. The refresh
// token never surfaces here: the server sets it as an httpOnly cookie and
// the cookie jar carries it back on refresh and logout calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/common"
)

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

type RegisterInput struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	Password         string `json:"password"`
	WalletAddress    string `json:"walletAddress"`
	EncryptedSeed    string `json:"encryptedSeed"`
	KDFSalt          []byte `json:"kdfSalt"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	AvatarURI        string `json:"avatarUri,omitempty"`
	CountryCode      string `json:"countryCode,omitempty"`
	CallingCode      string `json:"callingCode,omitempty"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

type Account struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	WalletAddress string `json:"walletAddress"`
}

type RegisterResult struct {
	Account    *Account `json:"account"`
	OtpauthURL string   `json:"otpauthUrl"`
}

type LoginResult struct {
	Requires2FA bool     `json:"requires2fa"`
	PendingID   string   `json:"pendingId"`
	AccessToken string   `json:"accessToken"`
	Account     *Account `json:"account"`
}

type Wallet struct {
	WalletAddress string `json:"walletAddress"`
	EncryptedSeed string `json:"encryptedSeed"`
	KDFSalt       []byte `json:"kdfSalt"`
}

type apiError struct {
	Error string `json:"error"`
}

// statusToErr maps HTTP statuses back to the shared sentinels so callers can
// use errors.Is on client and server alike.
func statusToErr(code int) error {
	switch code {
	case http.StatusBadRequest:
		return common.ErrInvalidInput
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusConflict:
		return common.ErrConflict
	case http.StatusTooManyRequests:
		return common.ErrRateLimited
	default:
		return common.ErrInternal
	}
}

// doJSON performs one API call. bearer is attached as an Authorization header
// when non-empty; out may be nil for calls without a response body.
func (c *Client) doJSON(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		if ae.Error != "" {
			return fmt.Errorf("%s: %w", ae.Error, statusToErr(resp.StatusCode))
		}
		return statusToErr(resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return common.ErrInternal
	}
	return nil
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	var out RegisterResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and, unless a second factor is required, leaves the
// refresh cookie in the jar and returns the access token.
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	var out LoginResult
	in := map[string]string{"identifier": identifier, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifySecondFactor(ctx context.Context, pendingID, code string) (*LoginResult, error) {
	var out LoginResult
	in := map[string]string{"pendingId": pendingID, "code": code}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/verify-2fa", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges the refresh cookie for a new access token.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/refresh", "", nil, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", "", nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	in := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.doJSON(ctx, http.MethodPatch, "/api/v1/auth/password", accessToken, in, nil)
}

func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	path := "/api/v1/auth/check-username?username=" + url.QueryEscape(username)
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/request-password-reset", "",
		map[string]string{"email": email}, nil)
}

func (c *Client) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	var out struct {
		ResetTicket string `json:"resetTicket"`
	}
	in := map[string]string{"email": email, "code": code}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/verify-reset-code", "", in, &out); err != nil {
		return "", err
	}
	return out.ResetTicket, nil
}

func (c *Client) ResetPassword(ctx context.Context, ticket, newPassword string) error {
	in := map[string]string{"resetTicket": ticket, "newPassword": newPassword}
	return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/reset-password", "", in, nil)
}

func (c *Client) GetWallet(ctx context.Context, accessToken string) (*Wallet, error) {
	var out Wallet
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/wallet/", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PutSeed(ctx context.Context, accessToken, encryptedSeed string, kdfSalt []byte) error {
	in := map[string]any{"encryptedSeed": encryptedSeed, "kdfSalt": kdfSalt}
	return c.doJSON(ctx, http.MethodPut, "/api/v1/wallet/seed", accessToken, in, nil)
}
