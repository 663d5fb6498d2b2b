package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itchan-dev/mboard/shared/domain"
	internal_errors "github.com/itchan-dev/mboard/shared/errors"
	jwt_internal "github.com/itchan-dev/mboard/shared/jwt"
	"github.com/itchan-dev/mboard/shared/logger"
	"github.com/itchan-dev/mboard/shared/utils"
)

// Key to store the user claims in the request context
type key int

const UserClaimsKey key = 0

const accessTokenCookie = "accessToken"

// Auth turns a verified access token into a *domain.User on the request context.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				switch err {
				case errNoToken:
					utils.WriteErrorAndStatusCode(w, internal_errors.Unauthorized("Please sign-in"))
				case errInvalidClaims:
					logger.Log.Warn("invalid jwt claims", "path", r.URL.Path)
					utils.WriteErrorAndStatusCode(w, internal_errors.Unauthorized("Invalid token"))
				default:
					utils.WriteErrorAndStatusCode(w, err)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireScope rejects requests whose user lacks scope before the handler
// reads the body. Must run after NeedAuth.
func RequireScope(scope domain.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r)
			if user == nil {
				utils.WriteErrorAndStatusCode(w, internal_errors.Unauthorized("Please sign-in"))
				return
			}
			if !user.HasScope(scope) {
				utils.WriteErrorAndStatusCode(w, internal_errors.Forbidden("Missing required scope "+string(scope)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractUser reads the token from the accessToken cookie (browser clients)
// or the Authorization header (API clients) and maps its claims.
func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	var tokenString string
	if accessCookie, err := r.Cookie(accessTokenCookie); err == nil && accessCookie.Value != "" {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}
	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" || len(sub) > domain.MaxUserIdLen {
		return nil, errInvalidClaims
	}

	// admin is optional, absent means false
	isAdmin := false
	if v, present := claims["admin"]; present {
		if isAdmin, ok = v.(bool); !ok {
			return nil, errInvalidClaims
		}
	}

	roles, ok := stringList(claims["roles"])
	if !ok {
		return nil, errInvalidClaims
	}
	scopes, ok := stringList(claims["scopes"])
	if !ok {
		return nil, errInvalidClaims
	}

	return &domain.User{
		Id:     sub,
		Scopes: domain.ExpandScopes(roles, scopes),
		Admin:  isAdmin,
	}, nil
}

// stringList accepts a missing claim, a JSON array of strings or a single
// space separated string (the OAuth "scope" convention).
func stringList(v interface{}) ([]string, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case string:
		return strings.Fields(val), true
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Sentinel errors for extractUser
var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
)

type errorString string

func (e errorString) Error() string { return string(e) }

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserClaimsKey, user)
}

// GetUserFromContext retrieves the user from the context
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
