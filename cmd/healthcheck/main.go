// main.go
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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/localnerve/tevor-api/internal/config"
	"github.com/localnerve/tevor-api/internal/database"
	"github.com/localnerve/tevor-api/internal/logging"
	"github.com/localnerve/tevor-api/internal/services"
)

func main() {
	log := logging.New("info", "json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log = logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	result := services.HealthCheck(ctx, cfg, db, log)
	cancel()
	database.Close(db)

	healthy, err := report(os.Stdout, result)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal health check result")
	}

	// Exit with appropriate code
	if !healthy {
		os.Exit(1)
	}
}

// report writes result as indented JSON and tells whether it is healthy
func report(w io.Writer, result services.HealthCheckResult) (bool, error) {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return false, err
	}
	if _, err := fmt.Fprintln(w, string(output)); err != nil {
		return false, err
	}
	return result.Status == "healthy", nil
}
