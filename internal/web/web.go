// Package web implements the page endpoints of the movie recommendation site.
//
// # Routes
//
//	GET  /        → index.html, greeting the signed-in user and listing who they follow and who follows them;
//	               ?q= searches movie titles
//	GET  /login   → login.html
//	POST /login   → bcrypt credential check, session cookie, redirect to /
//	POST /logout  → clears the session, redirect to /
//	GET  /healthz → database ping
//	GET  /metrics → Prometheus exposition
//
// Templates are embedded and parsed once per page on top of base.html; a directory with the same file names can
// replace them at startup. Sessions are signed cookies from gorilla/sessions holding only the user ID.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/movierec/internal/models"
	"github.com/desertthunder/movierec/internal/server"
	"github.com/desertthunder/movierec/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName   = "movierec_session"
	sessionUserID = "user_id"
	sessionMaxAge = 7 * 24 * 60 * 60

	searchLimit = 20
)

var pages = []string{"index.html", "login.html"}

// UserStore is the user persistence needed by the pages.
type UserStore interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Follows(ctx context.Context, userID int64) ([]*models.User, error)
	Followers(ctx context.Context, userID int64) ([]*models.User, error)
}

// MovieStore is the movie persistence needed by the pages.
type MovieStore interface {
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, title string, limit int) ([]*models.Movie, error)
}

// Pinger reports database health, implemented by [sql.DB].
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures an [App].
type Options struct {
	SessionSecret string  // Key signing the session cookie
	TemplatesDir  string  // Directory overriding the embedded templates
	LoginRate     float64 // POST /login requests per second per client
	LoginBurst    int     // POST /login burst per client
	SecureCookie  bool    // Mark the session cookie Secure
}

// App serves the site's pages.
type App struct {
	users     UserStore
	movies    MovieStore
	db        Pinger
	logger    *log.Logger
	templates map[string]*template.Template
	sessions  sessions.Store
	limiter   *server.RateLimiter
	metrics   *server.Metrics
}

// pageData is the value every page template is executed with.
type pageData struct {
	User       *models.User
	Follows    []*models.User
	Followers  []*models.User
	MovieCount int
	Query      string
	Results    []*models.Movie
	Username   string
	Error      string
}

// NewApp parses the templates and prepares the session store.
func NewApp(opts Options, users UserStore, movies MovieStore, db Pinger, logger *log.Logger) (*App, error) {
	if err := shared.CheckSessionSecret(opts.SessionSecret); err != nil {
		return nil, err
	}

	var fsys fs.FS
	if opts.TemplatesDir != "" {
		fsys = os.DirFS(opts.TemplatesDir)
	} else {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	templates, err := parseTemplates(fsys)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore([]byte(opts.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	return &App{
		users:     users,
		movies:    movies,
		db:        db,
		logger:    logger,
		templates: templates,
		sessions:  store,
		limiter:   server.NewRateLimiter(opts.LoginRate, opts.LoginBurst),
		metrics:   server.NewMetrics(),
	}, nil
}

func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(fsys, "base.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

// Handler returns the router with every route and the standard middleware stack.
func (a *App) Handler() http.Handler {
	router := server.NewBasicRouter()
	router.Use(server.RequestID, server.Logger(a.logger), server.Recover(a.logger), a.metrics.Middleware)

	router.HandleFunc(http.MethodGet, "/", a.index)
	router.HandleFunc(http.MethodGet, "/login", a.loginForm)
	router.Handle(http.MethodPost, "/login", a.limiter.Middleware(http.HandlerFunc(a.login)))
	router.HandleFunc(http.MethodPost, "/logout", a.logout)
	router.HandleFunc(http.MethodGet, "/healthz", a.healthz)
	router.Handle(http.MethodGet, "/metrics", a.metrics.Handler())

	return router
}

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	data := pageData{User: a.currentUser(r)}

	if data.User != nil {
		follows, err := a.users.Follows(r.Context(), data.User.ID)
		if err != nil {
			a.serverError(w, r, err)
			return
		}
		data.Follows = follows

		followers, err := a.users.Followers(r.Context(), data.User.ID)
		if err != nil {
			a.serverError(w, r, err)
			return
		}
		data.Followers = followers
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		results, err := a.movies.Search(r.Context(), q, searchLimit)
		if err != nil {
			a.serverError(w, r, err)
			return
		}
		data.Query, data.Results = q, results
	}

	count, err := a.movies.Count(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	data.MovieCount = count

	a.render(w, r, http.StatusOK, "index.html", data)
}

func (a *App) loginForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "login.html", pageData{User: a.currentUser(r)})
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")

	user, err := a.authenticate(r.Context(), username, r.PostForm.Get("password"))
	if errors.Is(err, shared.ErrInvalidCredentials) {
		a.logger.Warn("failed login", "username", username, "request_id", server.GetRequestID(r.Context()))
		a.render(w, r, http.StatusUnauthorized, "login.html", pageData{
			Username: username,
			Error:    "Invalid username or password.",
		})
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	session, _ := a.sessions.Get(r, sessionName)
	session.Values[sessionUserID] = user.ID
	if err := session.Save(r, w); err != nil {
		a.serverError(w, r, err)
		return
	}

	a.logger.Info("login", "user", user.String())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// authenticate returns the active user matching the credentials or [shared.ErrInvalidCredentials].
func (a *App) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, shared.ErrInvalidCredentials
	}

	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.Active || user.Password == "" {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	session, _ := a.sessions.Get(r, sessionName)
	delete(session.Values, sessionUserID)
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		a.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		a.logger.Error("health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// currentUser resolves the session's user, or nil for anonymous requests and stale sessions.
func (a *App) currentUser(r *http.Request) *models.User {
	session, err := a.sessions.Get(r, sessionName)
	if err != nil {
		return nil
	}

	id, ok := session.Values[sessionUserID].(int64)
	if !ok {
		return nil
	}

	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			a.logger.Error("failed to load session user", "id", id, "error", err)
		}
		return nil
	}
	if !user.Active {
		return nil
	}
	return user
}

func (a *App) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := a.templates[page].ExecuteTemplate(&buf, "base", data); err != nil {
		a.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", server.GetRequestID(r.Context()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
