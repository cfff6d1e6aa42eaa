package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Checker-Finance/session-client/internal/api"
	"github.com/Checker-Finance/session-client/internal/dataset"
	"github.com/Checker-Finance/session-client/internal/events"
	"github.com/Checker-Finance/session-client/internal/httpclient"
	"github.com/Checker-Finance/session-client/internal/presence"
	"github.com/Checker-Finance/session-client/internal/rate"
	"github.com/Checker-Finance/session-client/pkg/authclient"
	"github.com/Checker-Finance/session-client/pkg/config"
	"github.com/Checker-Finance/session-client/pkg/logger"
	pkgsecrets "github.com/Checker-Finance/session-client/pkg/secrets"
	"github.com/Checker-Finance/session-client/pkg/session"
	"github.com/Checker-Finance/session-client/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Infof("starting [%s]...", cfg.ServiceName)
	logg.Infow("remote api", "base", cfg.APIBase, "token_key", cfg.TokenKey)

	// --- Credential store ---
	var (
		store     session.Store
		redisSt   *session.RedisStore
		sessionID = uuid.NewString()
	)
	if cfg.UseRedis() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPass,
		})
		defer rdb.Close() //nolint:errcheck

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logg.Fatalw("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		redisSt = session.NewRedisStore(rdb, cfg.TokenKey, cfg.SessionTTL, logger.L())
		sessionID = redisSt.SessionID()
		store = redisSt
		logg.Infow("session store: redis", "addr", cfg.RedisAddr, "session_id", sessionID)
	} else {
		store = session.NewMemoryStore(cfg.TokenKey)
		logg.Info("session store: memory")
	}

	// --- Optional session events ---
	var (
		nc   *nats.Conn
		opts = []authclient.Option{
			authclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		}
	)
	if cfg.EventsEnabled() {
		var err error
		logg.Info("connecting to NATS: ", utils.MaskURL(cfg.NATSURL))
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		defer nc.Drain() //nolint:errcheck

		pub, err := events.New(nc, cfg.EventsSubject, cfg.ServiceName, sessionID, logger.L())
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
		opts = append(opts, authclient.WithListener(pub))
	}

	// --- Auth client ---
	client := authclient.New(logger.L(), cfg.APIBase, store, opts...)

	// --- Authenticated executor + backend services ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateRPS,
		Burst:             cfg.RateBurst,
	})
	exec := httpclient.New(
		logger.L(),
		rateMgr,
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.APIBase,
		cfg.RetryMax,
		client,
	)
	reporter := presence.NewReporter(exec)
	datasetSvc := dataset.NewService(exec)

	if cfg.AutoLogin {
		if err := autoLogin(ctx, cfg, client, logger.L()); err != nil {
			logg.Warnw("auto login failed; continuing unauthenticated",
				"error", err, "reason", authclient.Describe(err))
		}
	}

	// --- HTTP API ---
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h := api.NewSessionHandler(logger.L(), client, reporter, datasetSvc)
	api.RegisterRoutes(app, nc, h)

	go func() {
		logg.Infof("HTTP API listening on %s", cfg.ListenAddr())
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logg.Infof("shutting down [%s]...", cfg.ServiceName)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.ShutdownWithContext(shutdownCtx) //nolint:errcheck

	// the credential does not outlive the process
	client.Logout(shutdownCtx)
	if redisSt != nil {
		redisSt.Close(shutdownCtx)
	}
}

// autoLogin logs in at startup, preferring credentials from AWS Secrets Manager
// over LOGIN_USERNAME/LOGIN_PASSWORD.
func autoLogin(ctx context.Context, cfg *config.Config, client *authclient.Client, log *zap.Logger) error {
	creds := pkgsecrets.Credentials{Username: cfg.LoginUsername, Password: cfg.LoginPassword}

	var resolver *pkgsecrets.Resolver
	if cfg.LoginSecretID != "" {
		provider, err := pkgsecrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return err
		}
		resolver = pkgsecrets.NewResolver(log, provider, pkgsecrets.NewCache[pkgsecrets.Credentials](cfg.SecretsCacheTTL))
		creds, err = resolver.LoginCredentials(ctx, cfg.LoginSecretID)
		if err != nil {
			return err
		}
	}
	if !creds.Valid() {
		return errors.New("no login credentials configured")
	}

	resp, err := client.Login(ctx, creds.Username, creds.Password)
	if err != nil && resolver != nil && errors.Is(err, authclient.ErrAuthenticationFailed) {
		// the secret may have been rotated since it was cached
		resolver.Invalidate(cfg.LoginSecretID)
		fresh, rerr := resolver.LoginCredentials(ctx, cfg.LoginSecretID)
		if rerr == nil && fresh != creds {
			creds = fresh
			resp, err = client.Login(ctx, creds.Username, creds.Password)
		}
	}
	if err != nil {
		return err
	}
	log.Info("session.auto_login",
		zap.String("username", creds.Username),
		zap.Int64("expires_in", resp.ExpiresIn))
	return nil
}
