package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login échange identifiant et mot de passe contre un jeton (formulaire OAuth2).
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("grant_type", "password")

	var out tokenResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/login/access-token",
		path:   "/login/access-token",
		form:   form,
		out:    &out,
		noAuth: true,
	})
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("login: empty access token")
	}
	return out.AccessToken, nil
}
