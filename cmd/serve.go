package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/movierec/internal/repositories"
	"github.com/desertthunder/movierec/internal/server"
	"github.com/desertthunder/movierec/internal/shared"
	"github.com/desertthunder/movierec/internal/web"
	"github.com/urfave/cli/v3"
)

// RunServer serves the site until the process is interrupted.
func (r *Runner) RunServer(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openSchema()
	if err != nil {
		return err
	}
	defer db.Close()

	handler, err := r.siteHandler(db)
	if err != nil {
		return err
	}

	listen := r.config.Server
	if h := cmd.String("host"); h != "" {
		listen.Host = h
	}
	if p := cmd.Int("port"); p != 0 {
		listen.Port = int(p)
	}
	addr := listen.Addr()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if cmd.Bool("open") {
		url := "http://" + ln.Addr().String() + "/"
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	srv := server.NewServer(addr, handler, shared.WithLogger(r.logger, "component", "http"))
	return srv.Serve(ctx, ln)
}

// siteHandler builds the web application over db.
func (r *Runner) siteHandler(db *sql.DB) (http.Handler, error) {
	driver := r.config.Database.Driver
	opts := web.Options{
		SessionSecret: r.config.Server.SessionSecret,
		TemplatesDir:  r.config.Server.TemplatesDir,
		LoginRate:     r.config.Server.LoginRate,
		LoginBurst:    r.config.Server.LoginBurst,
		SecureCookie:  r.config.Server.SecureCookie,
	}

	app, err := web.NewApp(
		opts,
		repositories.NewUserRepository(db, driver),
		repositories.NewMovieRepository(db, driver),
		db,
		r.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create web application: %w", err)
	}
	return app.Handler(), nil
}
