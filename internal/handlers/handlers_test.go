// handlers_test.go
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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/config"
	"github.com/localnerve/tevor-api/internal/metrics"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/testutil"
	"github.com/localnerve/tevor-api/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminCert = "admin-cn"
	techCert  = "tech-cn"
	otherCert = "other-cn"
)

// setupTestApp builds the full route table on an in-memory database
func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := testutil.Logger()
	svc := services.New(db, 16, log, metrics.New(prometheus.NewRegistry()))

	admin, err := svc.Users.EnsureAdmin(t.Context(), adminCert)
	require.NoError(t, err)
	require.NotNil(t, admin)

	_, err = svc.Users.CreateUser(t.Context(), admin.UserID, services.UserInput{
		Name: "Tech", ShortName: "tech", Cert: techCert, Roles: models.Roles{Job: models.RoleUser},
	})
	require.NoError(t, err)
	_, err = svc.Users.CreateUser(t.Context(), admin.UserID, services.UserInput{
		Name: "Other", ShortName: "other", Cert: otherCert, Roles: models.Roles{Job: models.RoleUser},
	})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(log)})
	RegisterRoutes(app, Deps{
		Config:   &config.Config{DBType: "sqlite", DBDatabase: ":memory:", AuthHeader: "x-tevor-cn"},
		DB:       db,
		Services: svc,
		Log:      log,
	})
	return app
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// call sends a JSON request as the user holding cert and decodes the envelope
func call(t *testing.T, app *fiber.App, method, path, cert string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cert != "" {
		req.Header.Set("x-tevor-cn", cert)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Result, &out))
	return out
}

// createAssignedJob creates a job and assigns it to the tech user (USR-0002)
func createAssignedJob(t *testing.T, app *fiber.App) models.Job {
	t.Helper()

	status, env := call(t, app, http.MethodPost, "/api/job", techCert, map[string]any{
		"client": "acme", "brand": "apple", "model": "iphone 4",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	job := decode[models.Job](t, env)

	status, env = call(t, app, http.MethodPatch, "/api/job/"+job.JobID+"/assignee", adminCert, map[string]any{
		"assignee": "USR-0002",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	return decode[models.Job](t, env)
}

func TestUnauthenticated(t *testing.T) {
	app := setupTestApp(t)

	status, env := call(t, app, http.MethodGet, "/api/job", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Fail to authenticate user", env.Error)

	status, _ = call(t, app, http.MethodGet, "/api/job", "stranger-cn", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestInvalidBodies(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name        string
		body        string
		contentType string
		message     string
	}{
		{"empty", "", "application/json", "Request body is required"},
		{"malformed", `{"client":`, "application/json", "Invalid request body"},
		{"not json", "client=acme", "text/plain", "Invalid request body"},
		{"wrong shape", `"acme"`, "application/json", "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/job", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", tt.contentType)
			req.Header.Set("x-tevor-cn", techCert)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var env envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.Equal(t, tt.message, env.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPartWorkflow(t *testing.T) {
	app := setupTestApp(t)

	// stock admin sets up SCR01 with a balance of 5
	status, env := call(t, app, http.MethodPost, "/api/stock", adminCert, map[string]any{
		"stockid": "SCR01", "stockDesc": "Screen", "balQty": 5,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	job := createAssignedJob(t, app)
	assert.Equal(t, "ACME", job.Client)
	assert.Equal(t, models.JobStatusAssigned, job.Status)

	// qty may arrive as a string
	status, env = call(t, app, http.MethodPost, "/api/job/"+job.JobID+"/part", techCert, map[string]any{
		"stockid": "SCR01", "qty": "2",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	withPart := decode[models.Job](t, env)
	require.Len(t, withPart.Parts, 1)
	prqID := withPart.Parts[0].PrqID

	status, env = call(t, app, http.MethodGet, "/api/partrequest", techCert, nil)
	require.Equal(t, http.StatusOK, status)
	open := decode[[]models.PartRequest](t, env)
	require.Len(t, open, 1)
	assert.Equal(t, prqID, open[0].PrqID)
	assert.EqualValues(t, 2, open[0].ReqQty)
	assert.Equal(t, "Screen", open[0].StockDesc)

	status, env = call(t, app, http.MethodGet, "/api/stock/SCR01", techCert, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 5, decode[models.StockItem](t, env).BalQty)

	// someone else's job
	status, env = call(t, app, http.MethodDelete, "/api/job/"+job.JobID+"/part/"+prqID, otherCert, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.NotEmpty(t, env.Error)

	status, env = call(t, app, http.MethodDelete, "/api/job/"+job.JobID+"/part/"+prqID, techCert, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Empty(t, decode[models.Job](t, env).Parts)

	status, _ = call(t, app, http.MethodDelete, "/api/job/"+job.JobID+"/part/"+prqID, techCert, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = call(t, app, http.MethodGet, "/api/partrequest/"+prqID, techCert, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PRStatusCancelled, decode[models.PartRequest](t, env).Status)

	// the job still lists the request it raised
	status, env = call(t, app, http.MethodGet, "/api/job/"+job.JobID+"/partrequests", techCert, nil)
	require.Equal(t, http.StatusOK, status)
	history := decode[[]models.PartRequest](t, env)
	require.Len(t, history, 1)
	assert.Equal(t, prqID, history[0].PrqID)
	assert.Equal(t, models.PRStatusCancelled, history[0].Status)
}

func TestAddPartsBatch(t *testing.T) {
	app := setupTestApp(t)
	for _, id := range []string{"SCR01", "BAT01"} {
		status, env := call(t, app, http.MethodPost, "/api/stock", adminCert, map[string]any{"stockid": id, "balQty": 1})
		require.Equal(t, http.StatusCreated, status, env.Error)
	}
	job := createAssignedJob(t, app)

	status, env := call(t, app, http.MethodPost, "/api/job/"+job.JobID+"/part", techCert, []map[string]any{
		{"stockid": "SCR01", "qty": 1},
		{"stockid": "BAT01", "qty": 3},
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Len(t, decode[models.Job](t, env).Parts, 2)

	status, _ = call(t, app, http.MethodPost, "/api/job/"+job.JobID+"/part", techCert, map[string]any{"stockid": "SCR01", "qty": 0})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStatusAndApproval(t *testing.T) {
	app := setupTestApp(t)
	job := createAssignedJob(t, app)
	base := "/api/job/" + job.JobID

	// unknown status is a recognised no-op
	resp, err := app.Test(func() *http.Request {
		req := httptest.NewRequest(http.MethodPatch, base+"/status", bytes.NewReader([]byte(`{"status":"shipped"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-tevor-cn", techCert)
		return req
	}())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	status, _ := call(t, app, http.MethodPatch, base+"/approve", adminCert, map[string]any{"approved": true})
	assert.Equal(t, http.StatusNotFound, status)

	status, env := call(t, app, http.MethodPatch, base+"/status", techCert, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, status, env.Error)
	done := decode[models.Job](t, env)
	assert.Equal(t, models.JobStatusDone, done.Status)
	assert.NotNil(t, done.DateOut)

	status, _ = call(t, app, http.MethodPatch, base+"/approve", techCert, map[string]any{"approved": true})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPatch, base+"/approve", adminCert, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodPatch, base+"/approve", adminCert, map[string]any{"approved": true})
	require.Equal(t, http.StatusOK, status, env.Error)
	approved := decode[models.Job](t, env)
	require.NotNil(t, approved.Approved)
	assert.True(t, *approved.Approved)

	status, env = call(t, app, http.MethodGet, "/api/job?active=true", techCert, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.Job](t, env))
}

func TestProblemsAndCancel(t *testing.T) {
	app := setupTestApp(t)
	job := createAssignedJob(t, app)
	base := "/api/job/" + job.JobID

	status, env := call(t, app, http.MethodPost, base+"/problem", techCert, map[string]any{"description": "no power"})
	require.Equal(t, http.StatusOK, status, env.Error)
	withProblem := decode[models.Job](t, env)
	require.Len(t, withProblem.Problems, 1)
	probID := withProblem.Problems[0].ProbID

	status, env = call(t, app, http.MethodPut, base+"/problem/"+probID, techCert, map[string]any{"description": "dead battery"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "dead battery", decode[models.Job](t, env).Problems[0].Description)

	status, env = call(t, app, http.MethodDelete, base+"/problem/"+probID, techCert, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Empty(t, decode[models.Job](t, env).Problems)

	status, _ = call(t, app, http.MethodDelete, base, techCert, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, app, http.MethodDelete, base, adminCert, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.True(t, decode[models.Job](t, env).Cancelled)

	status, _ = call(t, app, http.MethodPost, base+"/problem", adminCert, map[string]any{"description": "too late"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStockAdministration(t *testing.T) {
	app := setupTestApp(t)

	status, _ := call(t, app, http.MethodPost, "/api/stock", techCert, map[string]any{"stockid": "SCR01"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env := call(t, app, http.MethodPost, "/api/stock", adminCert, map[string]any{"stockid": "SCR01", "stockDesc": "Screen", "balQty": 1})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = call(t, app, http.MethodPost, "/api/stock", adminCert, map[string]any{"stockid": "SCR01"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "already exists")

	status, env = call(t, app, http.MethodPatch, "/api/stock/SCR01/balance", adminCert, map[string]any{"adjQty": -2})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "Insufficient stock")

	status, env = call(t, app, http.MethodPatch, "/api/stock/SCR01/balance", adminCert, map[string]any{"adjQty": 4, "refid": "PO-1"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.EqualValues(t, 5, decode[models.StockItem](t, env).BalQty)

	status, env = call(t, app, http.MethodGet, "/api/stock/SCR01/audit", adminCert, nil)
	require.Equal(t, http.StatusOK, status)
	audits := decode[[]models.StockAudit](t, env)
	require.Len(t, audits, 1)
	assert.Equal(t, models.AuditAdjustment, audits[0].Type)

	status, env = call(t, app, http.MethodPut, "/api/stock/SCR01", adminCert, map[string]any{"stockDesc": "Screen v2"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Screen v2", decode[models.StockItem](t, env).StockDesc)

	status, _ = call(t, app, http.MethodDelete, "/api/stock/SCR01", adminCert, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodGet, "/api/stock", techCert, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.StockItem](t, env))
}

func TestUserAdministration(t *testing.T) {
	app := setupTestApp(t)

	status, env := call(t, app, http.MethodGet, "/api/user", techCert, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "USR-0002", decode[models.User](t, env).UserID)

	status, env = call(t, app, http.MethodPut, "/api/user", techCert, map[string]any{"shortname": "techie"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "techie", decode[models.User](t, env).ShortName)

	status, _ = call(t, app, http.MethodGet, "/api/user/all", techCert, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, app, http.MethodGet, "/api/user/all", adminCert, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.User](t, env), 3)

	status, env = call(t, app, http.MethodPost, "/api/user", adminCert, map[string]any{
		"name": "New", "shortname": "new", "cert": "new-cn", "roles": map[string]string{"stock": "USER"},
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	created := decode[models.User](t, env)
	assert.Equal(t, "USR-0004", created.UserID)

	status, env = call(t, app, http.MethodPut, "/api/user/"+created.UserID, adminCert, map[string]any{
		"name": "Renamed", "shortname": "new", "roles": map[string]string{"stock": "ADMIN"},
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, models.RoleAdmin, decode[models.User](t, env).Roles.Stock)

	status, _ = call(t, app, http.MethodDelete, "/api/user/"+created.UserID, adminCert, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/api/user/"+created.UserID, adminCert, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// the deleted user can no longer authenticate
	status, _ = call(t, app, http.MethodGet, "/api/user", "new-cn", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPartsBodyUnmarshal(t *testing.T) {
	var single PartsBody
	require.NoError(t, json.Unmarshal([]byte(`{"stockid":"SCR01","qty":"3"}`), &single))
	assert.Equal(t, []services.PartInput{{StockID: "SCR01", Qty: 3}}, single.Inputs())

	var list PartsBody
	require.NoError(t, json.Unmarshal([]byte(`[{"stockid":"A","qty":1},{"stockid":"B","qty":2}]`), &list))
	assert.Len(t, list.Inputs(), 2)

	var bad PartsBody
	assert.Error(t, json.Unmarshal([]byte(`"SCR01"`), &bad))
}
