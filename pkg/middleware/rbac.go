package middleware

import (
	"log"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/labstack/echo/v4"

	"SmartScore/internal/auth"
)

const rbacModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")`

// rbacPolicy lives in code so the process carries no runtime csv
// dependency. Admins get the whole protected surface; staff are kept
// away from bulk sends, statistics, trial resets and deletes.
var rbacPolicy = [][]string{
	{"admin", "/api/*", "*"},
	{"staff", "/api/profile", "GET"},
	{"staff", "/api/schools", "GET"},
	{"staff", "/api/schools/*", "GET"},
	{"staff", "/api/students", "POST"},
	{"staff", "/api/students/*", "GET"},
	{"staff", "/api/students/*", "PUT"},
	{"staff", "/api/classes", "POST"},
	{"staff", "/api/classes/*", "GET"},
	{"staff", "/api/classes/*", "POST"},
	{"staff", "/api/subjects", "POST"},
	{"staff", "/api/subjects/*", "GET"},
	{"staff", "/api/teachers/*", "GET"},
	{"staff", "/api/scores", "POST"},
	{"staff", "/api/results/*", "GET"},
	{"staff", "/api/notifications", "POST"},
	{"staff", "/api/notifications/schedule", "POST"},
	{"staff", "/api/notifications/student/*", "GET"},
}

// NewEnforcer builds the casbin enforcer with the in-code model and
// policy. Constructed once and injected, not a lazy singleton.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for _, p := range rbacPolicy {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	return enforcer, nil
}

// RBAC enforces role-based access on each request using the claims the
// JWT middleware stored.
func RBAC(enforcer *casbin.Enforcer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.JWTClaims)
			if !ok || claims == nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized: missing user claims"})
			}

			role := claims.Role
			obj := c.Request().URL.Path
			act := c.Request().Method
			allowed, err := enforcer.Enforce(role, obj, act)
			if err != nil {
				log.Println("Casbin enforce error:", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "RBAC system error"})
			}
			if !allowed {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: insufficient permissions"})
			}
			return next(c)
		}
	}
}
