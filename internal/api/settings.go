package api

import "net/http"

type SettingsResponse struct {
	Domain                 string   `json:"domain"`
	ParserMode             string   `json:"parser_mode"`
	NonceExpirySeconds     int64    `json:"nonce_expiry_seconds"`
	MaximumValiditySeconds int64    `json:"maximum_validity_seconds"`
	URIAllowList           []string `json:"uri_allow_list"`
	MaxMessageSize         int      `json:"max_message_size"`
}

func (a *API) Settings(w http.ResponseWriter, r *http.Request) error {
	config := a.config

	allowList := config.SIWS.URIAllowList
	if allowList == nil {
		allowList = []string{}
	}

	return sendJSON(w, http.StatusOK, &SettingsResponse{
		Domain:                 config.SIWS.Domain,
		ParserMode:             config.SIWS.ParserMode.String(),
		NonceExpirySeconds:     int64(config.SIWS.NonceExpiryDuration.Seconds()),
		MaximumValiditySeconds: int64(config.SIWS.MaximumValidityDuration.Seconds()),
		URIAllowList:           allowList,
		MaxMessageSize:         config.API.MaxMessageSize,
	})
}
