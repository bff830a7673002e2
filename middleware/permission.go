package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// PermissionCertificates lets a caller generate and look up certificates.
const PermissionCertificates = "certificates"

// HasPermission reports whether claims grant the named permission. Super
// admins hold every permission.
func HasPermission(claims *Claims, permission string) bool {
	if claims == nil {
		return false
	}
	if claims.IsSuperAdmin {
		return true
	}
	for _, role := range claims.Roles {
		if role == permission {
			return true
		}
	}
	return false
}

// CheckPermissionMiddleware returns a middleware that checks if the user has the required permission
func CheckPermissionMiddleware(requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Claims are set by JWTMiddleware
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User not found", nil)
		}

		if !HasPermission(claims, requiredPermission) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		return c.Next()
	}
}
