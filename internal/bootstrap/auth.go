package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jobhub/ui-api/config"
	"github.com/jobhub/ui-api/internal/adapters/authroles"
	"github.com/jobhub/ui-api/internal/adapters/devauth"
	"github.com/jobhub/ui-api/internal/adapters/oidc"
	redisadapter "github.com/jobhub/ui-api/internal/adapters/redis"
	"github.com/jobhub/ui-api/internal/ports"
	"github.com/jobhub/ui-api/internal/service"
)

// sessionKeyPrefix namespaces session keys in Redis. The admin CLI's
// session commands scan the same prefix.
const sessionKeyPrefix = "session:"

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Users       ports.UserDirectory
	Logger      *slog.Logger
}

// BuildAuthService assembles the auth service for the configured mode.
// A misconfigured or unconfigured auth setup yields nil, which the
// router treats as "no login available" rather than a boot failure.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	provider := buildAuthProvider(cfg)
	if provider == nil {
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, sessionKeyPrefix),
		Roles: authroles.StaticRoleMapper{
			AdminGroup:     cfg.Auth.AdminGroup,
			RecruiterGroup: cfg.Auth.RecruiterGroup,
		},
		Users: cfg.Users,
	})
}

//nolint:ireturn // the concrete provider depends on the configured mode.
func buildAuthProvider(cfg AuthConfig) ports.AuthProvider {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:    cfg.Auth.Dev.UserID,
			FirstName: cfg.Auth.Dev.FirstName,
			LastName:  cfg.Auth.Dev.LastName,
			Email:     cfg.Auth.Dev.Email,
			Groups:    cfg.Auth.Dev.Groups,
			// session duration defaults inside the provider
		})
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
			}
			return nil
		}
		return prov

	case config.AuthModeOAuth:
		oauth := cfg.Auth.OAuth
		if oauth.Validate() != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
					"discovery_url_empty", oauth.DiscoveryURL == "",
					"client_id_empty", oauth.ClientID == "",
					"client_secret_empty", oauth.ClientSecret == "",
				)
			}
			return nil
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
			LogoutURL:    oauth.LogoutURL,
		})
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
			}
			return nil
		}
		return prov

	default:
		return nil
	}
}
