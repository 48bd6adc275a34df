package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/vibast-solutions/ms-go-idmatch/app/controller"
	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	idmatchgrpc "github.com/vibast-solutions/ms-go-idmatch/app/grpc"
	"github.com/vibast-solutions/ms-go-idmatch/app/middleware"
	"github.com/vibast-solutions/ms-go-idmatch/app/service"
	"github.com/vibast-solutions/ms-go-idmatch/app/types"
	"github.com/vibast-solutions/ms-go-idmatch/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

const latestRun = "latest"

var (
	serveInput   string
	serveCache   string
	serveRun     string
	servePersist bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC lookup servers",
	Long: `Match identities (or load a stored run with --run) and serve lookups by email,
name and identity id over HTTP (Echo) and gRPC.`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveInput, "input", "i", "", "csv file with name,email[,repo,external_id] columns")
	serveCmd.Flags().StringVar(&serveCache, "cache", "", "csv cache of the gitbase query")
	serveCmd.Flags().StringVar(&serveRun, "run", "", "serve a stored run id, or \"latest\", instead of matching")
	serveCmd.Flags().BoolVar(&servePersist, "persist", false, "store the run in the DATABASE_DSN database")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	ctx := cmd.Context()

	index := service.NewIdentityIndex(newNormalizer(cfg))
	if err := loadIndex(ctx, cfg, index); err != nil {
		logrus.WithError(err).Fatal("Failed to load identities")
	}

	var verifier service.APIKeyVerifier
	if cfg.APIKeyHash != "" {
		verifier = service.NewAPIKeyVerifier(cfg.APIKeyHash)
	} else {
		logrus.Warn("API_KEY_HASH is not set, lookups are not authenticated")
	}

	go startGRPCServer(ctx, cfg, index, verifier)

	startHTTPServer(ctx, cfg, index, verifier)
}

func loadIndex(ctx context.Context, cfg *config.Config, index *service.IdentityIndex) error {
	if serveRun != "" {
		db, runs, err := openRunStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		var run *entity.Run
		if serveRun == latestRun {
			run, err = runs.FindLatest(ctx)
		} else {
			run, err = runs.FindByID(ctx, serveRun)
		}
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %q not found", serveRun)
		}

		index.Replace(run.ID, run.Identities, run.Report)
		logrus.WithFields(logrus.Fields{
			"run_id":     run.ID,
			"identities": run.Identities.Len(),
		}).Info("Loaded stored run")
		return nil
	}

	records, err := loadRecords(ctx, cfg, serveInput, serveCache)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	result, err := pipeline.Run(ctx, records)
	if err != nil {
		return err
	}

	if servePersist {
		db, runs, err := openRunStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := runs.Save(ctx, newRun(result)); err != nil {
			return fmt.Errorf("store run: %w", err)
		}
	}

	index.Replace(result.RunID, result.Identities, result.Report)
	return nil
}

func startHTTPServer(ctx context.Context, cfg *config.Config, lookup service.IdentityLookup, verifier service.APIKeyVerifier) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	identityController := controller.NewIdentityController(lookup)

	api := e.Group("/v1")
	if verifier != nil {
		api.Use(middleware.NewAPIKeyMiddleware(verifier).RequireAPIKey)
	}
	api.GET("/identities", identityController.Lookup)
	api.GET("/identities/:id", identityController.Get)
	api.GET("/report", identityController.Report)
	api.GET("/stats", identityController.Stats)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down HTTP server")
		_ = e.Shutdown(context.Background())
	}()

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func startGRPCServer(ctx context.Context, cfg *config.Config, lookup service.IdentityLookup, verifier service.APIKeyVerifier) {
	grpcAddr := net.JoinHostPort(cfg.GRPCHost, cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
	if err := serveGRPC(ctx, newGRPCServer(lookup, verifier), lis); err != nil {
		logrus.WithError(err).Fatal("Failed to start gRPC server")
	}
}

func newGRPCServer(lookup service.IdentityLookup, verifier service.APIKeyVerifier) *grpc.Server {
	var opts []grpc.ServerOption
	if verifier != nil {
		opts = append(opts,
			grpc.ChainUnaryInterceptor(idmatchgrpc.APIKeyUnaryInterceptor(verifier)),
			grpc.ChainStreamInterceptor(idmatchgrpc.APIKeyStreamInterceptor(verifier)),
		)
	}

	grpcServer := grpc.NewServer(opts...)
	types.RegisterIdentityServiceServer(grpcServer, idmatchgrpc.NewIdentityServer(lookup))
	return grpcServer
}

// serveGRPC blocks until ctx is done and the server has drained.
func serveGRPC(ctx context.Context, grpcServer *grpc.Server, lis net.Listener) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		logrus.Info("Shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	err := grpcServer.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		err = nil
	}
	if err != nil {
		grpcServer.Stop()
		return err
	}
	<-stopped
	return nil
}
