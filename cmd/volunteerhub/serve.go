package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"volunteerhub/internal/db"
	"volunteerhub/internal/server"
	"volunteerhub/internal/storage"
	"volunteerhub/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply pending migrations before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if err := validateServeConfig(config); err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx, config.S3Region)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	region := config.S3Region
	if region == "" {
		region = awsConfig.Region
	}
	objects := storage.NewS3Storage(s3Client, logger, config.S3BucketName, region, config.S3PublicBaseURL)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cCtx.Bool("migrate") {
		if err := db.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	userRepo := store.NewUserRepository(pool)
	opportunityRepo := store.NewOpportunityRepository(pool)
	applicationRepo := store.NewApplicationRepository(pool)
	categoryRepo := store.NewCategoryRepository(pool)
	skillRepo := store.NewSkillRepository(pool)

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	err = jwkCache.Register(ctx, server.JWKSURL(config.CognitoIssuerURL))
	if err != nil {
		return fmt.Errorf("failed to register cognito jwks with cache: %w", err)
	}

	verifier := server.NewJWKSVerifier(jwkCache, config.CognitoIssuerURL, config.CognitoClientID)

	srv, err := server.New(
		config,
		logger,
		cognitoClient,
		verifier,
		objects,
		userRepo,
		opportunityRepo,
		applicationRepo,
		categoryRepo,
		skillRepo,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
