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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/localnerve/tevor-api/internal/logging"
	"github.com/localnerve/tevor-api/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var dbType string
	flag.StringVar(&dbType, "t", "postgres", "database type, postgres or mariadb")
	var imageName string
	flag.StringVar(&imageName, "i", "", "container image, defaults per database type")
	flag.Parse()

	usage := `
Run a throwaway tevor-api database container and print the settings to reach it.

Usage:

devdb [-h] [-f ENV_FILE_PATH] [-t DB_TYPE] [-i IMAGE]

ENV_FILE_PATH: path to a .env file loaded before starting (DOCKER_HOST etc.)
DB_TYPE: postgres (default) or mariadb

example
  devdb -t mariadb > .env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	log := logging.New("info", "console")

	if envFilename != "" {
		log.Info().Str("file", envFilename).Msg("loading environment variables")
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatal().Err(err).Msg("failed to load environment variables")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	dbc, err := testutil.StartDatabase(ctx, dbType, imageName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start database container")
	}

	env, err := godotenv.Marshal(map[string]string{
		"DB_TYPE":     dbc.Config.DBType,
		"DB_HOST":     dbc.Config.DBHost,
		"DB_PORT":     dbc.Config.DBPort,
		"DB_DATABASE": dbc.Config.DBDatabase,
		"DB_USER":     dbc.Config.DBUser,
		"DB_PASSWORD": dbc.Config.DBPassword,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to render settings")
	} else {
		fmt.Println(env)
	}

	log.Info().Str("type", dbc.Config.DBType).Msg("database container running, interrupt to terminate")
	<-ctx.Done()

	log.Info().Msg("terminating database container")
	termCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := dbc.Terminate(termCtx); err != nil {
		log.Error().Err(err).Msg("failed to terminate database container")
	}
}
