package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/sirupsen/logrus"
	"tle_userdb/internal/common"
	"tle_userdb/internal/common/security"
	"tle_userdb/internal/platform/logging"
)

type operatorCtxKey struct{}

var authLog = logging.For("auth")

// RequireRole admits requests whose verified token carries one of roles. It
// relies on jwtauth.Verifier having run; without it every request is 401.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, err := operatorFromRequest(r)
			if err != nil {
				common.RespondWithErr(w, err)
				return
			}
			for _, role := range roles {
				if op.Is(role) {
					ctx := context.WithValue(r.Context(), operatorCtxKey{}, op)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			authLog.WithFields(logrus.Fields{"subject": op.Subject, "role": op.Role, "path": r.URL.Path}).
				Warn("Operator lacks the role for this route")
			common.RespondWithErr(w, fmt.Errorf("role %q may not do this: %w", op.Role, common.ErrForbidden))
		})
	}
}

func operatorFromRequest(r *http.Request) (security.Operator, error) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return security.Operator{}, fmt.Errorf("bearer token required: %w", common.ErrUnauthorized)
	}
	return security.OperatorFromClaims(claims)
}

func OperatorFromContext(ctx context.Context) (security.Operator, bool) {
	op, ok := ctx.Value(operatorCtxKey{}).(security.Operator)
	return op, ok
}
