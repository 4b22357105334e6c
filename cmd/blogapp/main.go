package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TahaY291/blogapp"
	"github.com/TahaY291/blogapp/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "blogapp",
		Short:         "A multi-user blogging service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.InitLogger(logger.ParseLevel(blogapp.EnvOr("LOG_LEVEL", "info")), os.Getenv("LOG_FILE"))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.CloseLogger()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	promoteCmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return promoteUser(cmd.Context(), args[0])
		},
	}
	userCmd.AddCommand(promoteCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the blogapp version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("blogapp %s\n", version)
		},
	}

	rootCmd.AddCommand(serveCmd, userCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func siteConfig() blogapp.SiteConfig {
	return blogapp.SiteConfig{
		Name:          blogapp.EnvOr("SITE_NAME", "Blog"),
		URL:           blogapp.EnvOr("SITE_URL", "http://localhost:3000"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Addr:          blogapp.EnvOr("ADDR", ":3000"),
		DatabasePath:  blogapp.EnvOr("DATABASE_PATH", "data/blog.db"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  blogapp.EnvBool("COOKIE_SECURE", false),
		PageSize:      blogapp.EnvInt("FEED_PAGE_SIZE", blogapp.DefaultPageSize),
	}
}

func imageOption(ctx context.Context) (blogapp.Option, error) {
	switch backend := blogapp.EnvOr("IMAGE_BACKEND", "disk"); backend {
	case "disk":
		return nil, nil
	case "gcs":
		bucket := os.Getenv("GCS_BUCKET")
		if bucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required when IMAGE_BACKEND=gcs")
		}
		store, err := blogapp.NewGCSImageStore(ctx, bucket, os.Getenv("GCS_CREDENTIALS_FILE"))
		if err != nil {
			return nil, err
		}
		return blogapp.WithImageStore(store), nil
	default:
		return nil, fmt.Errorf("unknown IMAGE_BACKEND %q", backend)
	}
}

func runServer() error {
	cfg := siteConfig()
	if cfg.SessionSecret == "" {
		return fmt.Errorf("required environment variable SESSION_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []blogapp.Option
	imgOpt, err := imageOption(ctx)
	if err != nil {
		return err
	}
	if imgOpt != nil {
		opts = append(opts, imgOpt)
	}

	app := blogapp.New(cfg, opts...)
	defer app.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Echo.Shutdown(shutdownCtx)
}

func promoteUser(ctx context.Context, email string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := blogapp.NewStore(blogapp.EnvOr("DATABASE_PATH", "data/blog.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	svc := blogapp.NewService(store, nil, nil, nil)
	u, err := svc.PromoteByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("promote %s: %w", email, err)
	}
	fmt.Printf("%s (%s) is now an admin\n", u.Username, u.ID)
	return nil
}
