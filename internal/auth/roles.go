package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queuesmart/internal/domain"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// RequireStaffRole ensures the staff principal has one of the allowed roles.
func RequireStaffRole(allowed ...domain.StaffRole) fiber.Handler {
	allowedSet := make(map[domain.StaffRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Staff == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Staff.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireManager is RequireStaffRole(Manager).
func RequireManager() fiber.Handler {
	return RequireStaffRole(domain.StaffRoleManager)
}
