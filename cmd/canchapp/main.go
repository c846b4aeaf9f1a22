// cmd/canchapp/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"canchapp/internal/admin"
	"canchapp/internal/booking"
	"canchapp/internal/business"
	"canchapp/internal/catalog"
	"canchapp/internal/common/auth"
	"canchapp/internal/common/config"
	"canchapp/internal/common/database"
	"canchapp/internal/common/errors"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/logger"
	"canchapp/internal/common/observability"
	"canchapp/internal/profile"
)

// app holds everything a subcommand may need.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	out     io.Writer
	api     *apihttp.Client
	session *auth.Session

	catalog  *catalog.Service
	profile  *profile.Service
	business *business.Service
	admin    *admin.Service

	wizards booking.Store
	current currentWizard

	obs     *observability.Observability
	closers []func() error
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// newApp wires the API client, session and services from cfg. The session is
// bootstrapped before returning. reg receives the otel collector; nil means
// the default prometheus registry.
func newApp(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, out io.Writer, reg prometheus.Registerer) (*app, error) {
	log := logger.NewZapAdapter(zapLog)
	a := &app{cfg: cfg, log: log, out: out}

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		TracingEnabled: cfg.Tracing.Enabled,
		SampleRatio:    cfg.Tracing.SampleRatio,
		Registerer:     reg,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("observability init failed: %w", err)
	}
	a.obs = obs

	client, err := apihttp.NewClient(apihttp.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   config.GetDuration(cfg.API.Timeout),
		UserAgent: cfg.API.UserAgent,
	}, apihttp.WithLogger(log), apihttp.WithRecorder(obs))
	if err != nil {
		return nil, err
	}
	a.api = client

	var cookies auth.CookieStore
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		var rc *database.RedisClient
		err := retryWithBackoff(func() error {
			rc = database.NewRedis(cfg.Database.Redis)
			if err := rc.Ping(ctx); err != nil {
				_ = rc.Close()
				return err
			}
			return nil
		}, 3, 200*time.Millisecond, zapLog, "Redis connection")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)

		ttl := config.GetDuration(cfg.Session.TTL)
		cookies = auth.NewRedisCookieStore(rc, cfg.Session.KeyPrefix, ttl)
		a.wizards = booking.NewRedisStore(rc, cfg.Session.KeyPrefix, ttl)
		a.current = &redisCurrent{redis: rc, key: cfg.Session.KeyPrefix + ":wizard:current", ttl: ttl}
	default:
		cookies = auth.NewMemoryCookieStore()
		a.wizards = booking.NewMemoryStore()
		a.current = &memoryCurrent{}
	}

	a.session = auth.NewSession(auth.SessionDependencies{
		API:    client,
		Jar:    client,
		Store:  cookies,
		Logger: log,
	})
	// a failed bootstrap just means nobody is logged in
	_ = a.session.Bootstrap(ctx)

	a.catalog = catalog.NewService(client, log)
	a.profile = profile.NewService(client, a.session, log)
	a.business = business.NewService(client, a.session, log)
	a.admin = admin.NewService(client, a.session, log)

	return a, nil
}

func (a *app) Close(ctx context.Context) {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("Close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if err := a.obs.Shutdown(ctx); err != nil {
		a.log.Warn("Observability shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "help", "-h", "--help":
		help()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, zapLog, os.Stdout, nil)
	if err != nil {
		zapLog.Error("startup failed", zap.Error(err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	err = a.run(ctx, os.Args[1:])

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	a.Close(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Println("Error:", errors.NewErrorHandler(a.log).HandleCommandError(os.Args[1], err))
		os.Exit(1)
	}
}

// run dispatches a command line (without the program name).
func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage("missing command")
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "register":
		return a.cmdRegister(ctx, rest)
	case "verify":
		return a.cmdVerify(ctx, rest)
	case "courts":
		return a.cmdCourts(ctx, rest)
	case "court":
		return a.cmdCourt(ctx, rest)
	case "review":
		return a.cmdReview(ctx, rest)
	case "book":
		return a.cmdBook(ctx, rest)
	case "profile":
		return a.cmdProfile(ctx, rest)
	case "favorites":
		return a.cmdFavorites(ctx, rest)
	case "reservations":
		return a.cmdReservations(ctx, rest)
	case "reviews":
		return a.cmdReviews(ctx, rest)
	case "company":
		return a.cmdCompany(ctx, rest)
	case "venues":
		return a.cmdVenues(ctx, rest)
	case "mycourts":
		return a.cmdMyCourts(ctx, rest)
	case "admin":
		return a.cmdAdmin(ctx, rest)
	case "metrics":
		return a.cmdMetrics(ctx)
	default:
		return errUsage("unknown command " + cmd)
	}
}

func help() {
	fmt.Println("canchapp - court booking client")
	fmt.Println()
	fmt.Println("Account:")
	fmt.Println("  login --email E --password P      Start a session")
	fmt.Println("  logout                            End the session")
	fmt.Println("  whoami                            Show the logged-in user")
	fmt.Println("  register --name --email --password --confirm")
	fmt.Println("  verify --email E --code 123456    Confirm the emailed code")
	fmt.Println()
	fmt.Println("Courts:")
	fmt.Println("  courts [--district D] [--sport S] [--lat --lng]")
	fmt.Println("  court --id N                      Court detail with reviews")
	fmt.Println("  review --reservation N --rating 1-5 --comment C")
	fmt.Println()
	fmt.Println("Booking:")
	fmt.Println("  book start --court N              Begin a booking")
	fmt.Println("  book date --date YYYY-MM-DD       Pick the day")
	fmt.Println("  book slot --time HH:MM            Click a start slot")
	fmt.Println("  book slots | status | back | abandon")
	fmt.Println("  book confirm                      Create the pending reservation")
	fmt.Println("  book pay --number --expiry --cvv --holder --document --email --phone")
	fmt.Println("  book receipt | resend")
	fmt.Println()
	fmt.Println("Profile:")
	fmt.Println("  profile show | update [--first-name --last-name --document --phone --notify]")
	fmt.Println("  favorites list | add --court N | remove --court N | toggle --court N")
	fmt.Println("  reservations list | cancel --id N | modify --id N --date D --time HH:MM | share --id N")
	fmt.Println("  reviews list | update --id N --rating R --comment C | delete --id N")
	fmt.Println()
	fmt.Println("Business:")
	fmt.Println("  company request --name --ruc --description | status | withdraw")
	fmt.Println("  company show | update --name --description | delete-check | delete --password P")
	fmt.Println("  venues list | save [--id] --name --address [--lat --lng] | delete --id N")
	fmt.Println("  mycourts list [--venue --sport] | catalogs | save ... | delete --id N")
	fmt.Println("  mycourts activate --id N | deactivate --id N")
	fmt.Println()
	fmt.Println("Admin:")
	fmt.Println("  admin companies [--status S] | approve --id N | reject --id N --reason R")
	fmt.Println("  admin update --id N --name --ruc | status --id N --status activa|inactiva")
	fmt.Println()
	fmt.Println("  metrics                           Serve prometheus metrics")
}
