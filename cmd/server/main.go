package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/xynexa/collab-server/internal/api"
	"github.com/xynexa/collab-server/internal/config"
	"github.com/xynexa/collab-server/internal/gateway"
	"github.com/xynexa/collab-server/internal/meet"
	"github.com/xynexa/collab-server/internal/stats"
	"github.com/xynexa/collab-server/internal/store"
)

const defaultSigningKey = "D9qLCPgkZJ0tY4vFbQx0m2uE8rLwHnTQeK5sAVjC7kM="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	allowedOrigins stringSliceFlag
	meetAPIURL     string
	meetToken      string
	meetTemplateId string
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.StringVar(&meetAPIURL, "meet-api-url", "", "base URL for the video room management API")
	flag.StringVar(&meetToken, "meet-token", "", "management token for the video room API")
	flag.StringVar(&meetTemplateId, "meet-template-id", "", "room template id for the video room API")
	flag.Parse()

	logger := log.New(os.Stderr, "[xynexa] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins, config.MeetConfig{
		APIURL:     meetAPIURL,
		Token:      meetToken,
		TemplateId: meetTemplateId,
	})
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := store.NewPgRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	gw := gateway.NewGateway(logger, dbConn, dbConn, dbConn, statsUpdater)

	provider := meet.NewHTTPProvider(cfg.MeetAPIURL, cfg.MeetToken, cfg.MeetTemplateId)
	bridge := meet.NewBridge(logger, provider)

	srv := api.NewApp(mux, logger, gw, bridge, dbConn, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("closing client connections...")
	gw.Shutdown()

	logger.Println("shutdown complete")
}
