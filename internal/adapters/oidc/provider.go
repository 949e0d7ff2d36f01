// Package oidc implements the portal's AuthProvider port against a real
// OIDC/OAuth2 identity provider, using discovery for endpoint setup and
// go-oidc for id_token verification.
package oidc

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/ports"
)

const defaultHTTPTimeout = 30 * time.Second

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	LogoutURL    string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// Provider implements ports.AuthProvider using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	logoutURL  string
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// NewProvider fetches the discovery document once and builds a provider
// around the discovered endpoints.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		logoutURL:    cfg.LogoutURL,
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// issuerFromDiscoveryURL accepts either the issuer itself or the full
// well-known URL; go-oidc wants the bare issuer.
func issuerFromDiscoveryURL(discoveryURL string) string {
	issuer := strings.TrimSuffix(discoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, ".well-known/openid-configuration")
}

// Begin starts the login flow with fresh state and nonce values.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state := rand.Text()
	nonce := rand.Text()

	// redirect_uri stays at the configured value; the IdP rejects any
	// mismatch with the registered client.
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange redeems the authorization code and assembles the identity
// from the verified id_token, falling back to the userinfo endpoint for
// claims the token omits.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var prof profile
	if slices.Contains(p.config.Scopes, "openid") {
		claims, err := p.verifiedClaims(ctx, token, in.Nonce)
		if err != nil {
			return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
		}
		prof = mapIDTokenClaims(claims)
	}

	if prof.userID == "" || prof.email == "" {
		ui, err := p.fetchUserInfo(ctx, token.AccessToken)
		if err != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", err)
		}
		fillFromUserInfoClaims(&prof, ui)
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		UserID:    prof.userID,
		FirstName: prof.givenName,
		LastName:  prof.familyName,
		Email:     prof.email,
		Groups:    prof.groups,
		ExpiresAt: expiresAt,
	}, nil
}

// verifiedClaims verifies the id_token signature and nonce and decodes
// its claims.
func (p *Provider) verifiedClaims(ctx context.Context, token *oauth2.Token, expectedNonce string) (idTokenClaims, error) {
	var claims idTokenClaims

	raw, err := getIDTokenFromToken(token)
	if err != nil {
		return claims, err
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims, fmt.Errorf("verify id_token: %w", err)
	}
	if err := idTok.Claims(&claims); err != nil {
		return claims, fmt.Errorf("parse id_token claims: %w", err)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return claims, errors.New("invalid nonce")
	}
	return claims, nil
}

func (p *Provider) fetchUserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	ui, err := p.oidcProvider.UserInfo(ctx, src)
	if err != nil {
		return UserInfo{}, fmt.Errorf("fetch user info: %w", err)
	}
	var out UserInfo
	if err := ui.Claims(&out); err != nil {
		return UserInfo{}, fmt.Errorf("decode user info: %w", err)
	}
	return out, nil
}

// UserInfo is the subset of the userinfo payload the portal consumes.
type UserInfo struct {
	Subject    string   `json:"sub"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Email      string   `json:"email"`
	Groups     []string `json:"groups"`
}

// idTokenClaims is the standard OIDC claim shape, plus the optional
// preferred_username some IdPs emit for a stable human-readable ID.
type idTokenClaims struct {
	Sub               string   `json:"sub"`
	PreferredUsername string   `json:"preferred_username"`
	GivenName         string   `json:"given_name"`
	FamilyName        string   `json:"family_name"`
	Email             string   `json:"email"`
	Groups            []string `json:"groups"`
	ExpiresAt         int64    `json:"exp"`
	Nonce             string   `json:"nonce"`
}

// profile accumulates identity fields from the id_token, then from
// userinfo for anything still blank.
type profile struct {
	userID     string
	email      string
	givenName  string
	familyName string
	groups     []string
}

func mapIDTokenClaims(c idTokenClaims) profile {
	userID := c.PreferredUsername
	if userID == "" {
		userID = c.Sub
	}
	return profile{
		userID:     userID,
		email:      c.Email,
		givenName:  c.GivenName,
		familyName: c.FamilyName,
		groups:     c.Groups,
	}
}

func fillFromUserInfoClaims(p *profile, ui UserInfo) {
	if p.userID == "" {
		p.userID = ui.Subject
	}
	if p.email == "" {
		p.email = ui.Email
	}
	if p.givenName == "" {
		p.givenName = ui.GivenName
	}
	if p.familyName == "" {
		p.familyName = ui.FamilyName
	}
	if len(p.groups) == 0 {
		p.groups = ui.Groups
	}
}

func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", errors.New("missing id_token in token response")
	}
	return raw, nil
}
