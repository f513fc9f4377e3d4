package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	raven "github.com/getsentry/raven-go"
	"github.com/joho/godotenv"

	"github.com/brightvale/website-backend/api"
	"github.com/brightvale/website-backend/db"
	"github.com/brightvale/website-backend/email"
	"github.com/brightvale/website-backend/retry"
	"github.com/brightvale/website-backend/storage"
	"github.com/brightvale/website-backend/util"
)

func validPort(port string) (string, error) {
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("given portstring %s is invalid", port)
	}
	return fmt.Sprintf(":%s", port), nil
}

// Serves all public endpoints. Dependencies are constructed here, once,
// and handed to the API by reference; nothing initializes lazily on
// first use.
func servePublicEndpoints() {
	cfg, err := db.LoadEnvironmentVariables()
	if err != nil {
		log.Fatal(err)
	}
	sqldb, err := db.InitSQLDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	// The db container can still be coming up when we start; probe with
	// backoff before accepting traffic.
	if err := retry.Do("database connectivity probe", sqldb.Ping, retry.DefaultOptions); err != nil {
		log.Fatal(err)
	}

	storageCfg, err := storage.LoadEnvironmentVariables()
	if err != nil {
		log.Fatal(err)
	}
	emailConfig, err := email.MakeConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	publicAPI := api.API{
		Database: sqldb,
		Emailer:  emailConfig,
		Files:    storage.NewLocalStore(storageCfg),
	}

	portString, err := validPort(util.EnvOrDefault("PORT", "8080"))
	if err != nil {
		log.Fatal(err)
	}
	mux := http.NewServeMux()
	mainHandler := publicAPI.RegisterHandlers(mux)
	log.Printf("Listening on %s", portString)
	log.Fatal(http.ListenAndServe(portString, mainHandler))
}

func main() {
	godotenv.Load()
	raven.SetDSN(os.Getenv("SENTRY_DSN"))
	servePublicEndpoints()
}
