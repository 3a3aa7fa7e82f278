// auth.go
//
// Tevor repair-shop management API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of tevor-api.
// tevor-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// tevor-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with tevor-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/access"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/types"
)

const userKey = "user"

// UserLookup resolves a certificate common name to a user
type UserLookup interface {
	FindByCert(ctx context.Context, cert string) (*models.User, error)
}

// Authenticate resolves the user from the certificate CN that the TLS
// terminating proxy forwards in header. Unknown or deleted users are 401.
func Authenticate(header string, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cert := strings.TrimSpace(c.Get(header))
		if cert == "" {
			return types.Unauthorized("Fail to authenticate user")
		}

		user, err := users.FindByCert(c.UserContext(), cert)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return types.Unauthorized("Fail to authenticate user")
			}
			return err
		}

		// Set user in context
		c.Locals(userKey, user)

		return c.Next()
	}
}

// RequireAdmin allows only users holding ADMIN on module m
func RequireAdmin(m models.Module) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !access.IsModuleAdmin(CurrentUser(c), m) {
			return types.Forbidden("Not authorized")
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, nil before Authenticate ran
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
