package httpapi

import "github.com/dmitrijs2005/walletvault/internal/server/models"

// Wire types for the JSON API. []byte fields ride as base64 strings.

type registerRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Password         string `json:"password"`
	WalletAddress    string `json:"walletAddress"`
	EncryptedSeed    string `json:"encryptedSeed"`
	KDFSalt          []byte `json:"kdfSalt"`
	PhoneNumber      string `json:"phoneNumber"`
	AvatarURI        string `json:"avatarUri"`
	CountryCode      string `json:"countryCode"`
	CallingCode      string `json:"callingCode"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

type accountResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	WalletAddress string `json:"walletAddress"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	AvatarURI     string `json:"avatarUri,omitempty"`
	CountryCode   string `json:"countryCode,omitempty"`
	CallingCode   string `json:"callingCode,omitempty"`
}

func toAccountResponse(a *models.Account) *accountResponse {
	return &accountResponse{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		Name:          a.Name,
		WalletAddress: a.WalletAddress,
		PhoneNumber:   a.PhoneNumber,
		AvatarURI:     a.AvatarURI,
		CountryCode:   a.CountryCode,
		CallingCode:   a.CallingCode,
	}
}

type registerResponse struct {
	Account *accountResponse `json:"account"`
	// OtpauthURL is present only when 2FA enrollment was requested; it is
	// shown exactly once and never retrievable again.
	OtpauthURL string `json:"otpauthUrl,omitempty"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Requires2FA bool             `json:"requires2fa"`
	PendingID   string           `json:"pendingId,omitempty"`
	AccessToken string           `json:"accessToken,omitempty"`
	Account     *accountResponse `json:"account,omitempty"`
}

type verify2FARequest struct {
	PendingID string `json:"pendingId"`
	Code      string `json:"code"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

type verifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyResetCodeResponse struct {
	ResetTicket string `json:"resetTicket"`
}

type resetPasswordRequest struct {
	ResetTicket string `json:"resetTicket"`
	NewPassword string `json:"newPassword"`
}

type checkUsernameResponse struct {
	Available bool `json:"available"`
}

type walletResponse struct {
	WalletAddress string `json:"walletAddress"`
	EncryptedSeed string `json:"encryptedSeed"`
	KDFSalt       []byte `json:"kdfSalt"`
}

type putSeedRequest struct {
	EncryptedSeed string `json:"encryptedSeed"`
	KDFSalt       []byte `json:"kdfSalt"`
}
