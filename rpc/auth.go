package rpc

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"chainx/config"
	"chainx/observability"
	"chainx/observability/logging"
)

const authClockSkew = 2 * time.Minute

// authenticator validates HS256 bearer tokens.
type authenticator struct {
	secret   []byte
	issuer   string
	audience string
	logger   *slog.Logger
	metrics  *observability.QueryMetrics
}

func newAuthenticator(cfg config.JWT, secret []byte, logger *slog.Logger) *authenticator {
	return &authenticator{
		secret:   secret,
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		logger:   logger,
		metrics:  observability.Query(),
	}
}

func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		token := extractBearer(r.Header.Get("Authorization"))
		if token == "" {
			a.metrics.RecordThrottle("unauthorized")
			writeError(w, http.StatusUnauthorized, nil, codeUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := a.parseToken(token)
		if err == nil {
			err = validateClaims(claims, a.issuer, a.audience)
		}
		if err != nil {
			a.metrics.RecordThrottle("unauthorized")
			a.logger.Warn("rpc auth rejected", slog.Any("error", err), requestIDAttr(r.Context()))
			writeError(w, http.StatusUnauthorized, nil, codeUnauthorized, "invalid token", nil)
			return
		}
		if sub, _ := claims["sub"].(string); sub != "" {
			a.logger.Debug("rpc caller authenticated", logging.MaskField("subject", sub), requestIDAttr(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *authenticator) parseToken(tokenString string) (jwt.MapClaims, error) {
	if len(a.secret) == 0 {
		return nil, errors.New("auth secret not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithLeeway(authClockSkew))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token invalid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims not map")
	}
	return claims, nil
}

func validateClaims(claims jwt.MapClaims, issuer, audience string) error {
	if issuer != "" {
		if value, ok := claims["iss"].(string); !ok || value != issuer {
			return errors.New("issuer mismatch")
		}
	}
	if audience != "" {
		switch val := claims["aud"].(type) {
		case string:
			if val != audience {
				return errors.New("audience mismatch")
			}
		case []interface{}:
			matched := false
			for _, entry := range val {
				if s, ok := entry.(string); ok && s == audience {
					matched = true
					break
				}
			}
			if !matched {
				return errors.New("audience mismatch")
			}
		default:
			return errors.New("audience missing")
		}
	}
	return nil
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
