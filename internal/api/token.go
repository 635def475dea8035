package api

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"

	"github.com/supabase/siws/internal/utilities/siws"
)

const web3Chain = "solana"

// AccessTokenClaims is the payload of the token issued for a verified
// message.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Address   string `json:"address"`
	Chain     string `json:"chain"`
	Network   uint64 `json:"network"`
	Domain    string `json:"domain"`
	Statement string `json:"statement,omitempty"`
	SessionID string `json:"session_id"`
}

// AccessTokenResponse represents an OAuth2 success response
type AccessTokenResponse struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"` // Bearer
	ExpiresIn int    `json:"expires_in"`
	ExpiresAt int64  `json:"expires_at"`
	Subject   string `json:"subject"`
}

func web3Subject(address string) string {
	return strings.Join([]string{"web3", web3Chain, address}, ":")
}

func (a *API) issueAccessToken(msg *siws.Message) (*AccessTokenResponse, error) {
	config := a.config

	issuedAt := a.Now()
	expiresAt := issuedAt.Add(time.Second * time.Duration(config.JWT.Exp))

	sessionID := uuid.Must(uuid.NewV4())

	claims := &AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   web3Subject(msg.Address()),
			Issuer:    config.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.Must(uuid.NewV4()).String(),
		},
		Address:   msg.Address(),
		Chain:     web3Chain,
		Network:   msg.ChainID(),
		Domain:    msg.Domain(),
		SessionID: sessionID.String(),
	}

	if config.JWT.Aud != "" {
		claims.Audience = jwt.ClaimStrings{config.JWT.Aud}
	}

	if statement := msg.Statement(); statement != nil {
		claims.Statement = *statement
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.JWT.Secret))
	if err != nil {
		return nil, err
	}

	return &AccessTokenResponse{
		Token:     signed,
		TokenType: "bearer",
		ExpiresIn: config.JWT.Exp,
		ExpiresAt: expiresAt.Unix(),
		Subject:   claims.Subject,
	}, nil
}
