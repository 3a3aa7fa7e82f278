// common.go
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

package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/middleware"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/types"
)

// parseBody decodes the request body into out. Empty, malformed or non-JSON
// bodies are validation errors.
func parseBody(c *fiber.Ctx, out any) error {
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return types.Validation("Request body is required")
	}
	if err := c.BodyParser(out); err != nil {
		return types.Validation("Invalid request body")
	}
	return nil
}

// currentUser returns the authenticated user or a 401
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, types.Unauthorized("Fail to authenticate user")
	}
	return user, nil
}

// queryBool reads a boolean query parameter, accepting 1/0 and true/false
func queryBool(c *fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}

// PartBody is one requested part
type PartBody struct {
	StockID string        `json:"stockid"`
	Qty     types.FlexInt `json:"qty"`
}

// PartsBody accepts a single part object or an array of them
type PartsBody []PartBody

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PartsBody) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []PartBody
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*p = list
		return nil
	}

	var single PartBody
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*p = PartsBody{single}
	return nil
}

// Inputs converts the body to service inputs
func (p PartsBody) Inputs() []services.PartInput {
	inputs := make([]services.PartInput, 0, len(p))
	for _, part := range p {
		inputs = append(inputs, services.PartInput{StockID: part.StockID, Qty: part.Qty.Int64()})
	}
	return inputs
}
