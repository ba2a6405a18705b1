package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotylog/internal/auth"
	"github.com/desertthunder/spotylog/internal/formatter"
	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/desertthunder/spotylog/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	spotify     *services.SpotifyClient
	httpClient  *http.Client
	openBrowser shared.BrowserOpener
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Spotify     *services.SpotifyClient
	HTTPClient  *http.Client
	OpenBrowser shared.BrowserOpener
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		spotify:     opts.Spotify,
		httpClient:  opts.HTTPClient,
		openBrowser: opts.OpenBrowser,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, searchCommand, playlistsCommand, playerCommand, libraryCommand,
		meCommand, browseCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and the clients it builds.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// client returns the API client, building it from the stored access token on first use.
func (r *Runner) client() (*services.SpotifyClient, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	token := r.config.Credentials.Spotify.AccessToken
	if token == "" {
		return nil, fmt.Errorf("%w: no access token, run 'spotylog auth login' first", shared.ErrNotAuthenticated)
	}

	cc := r.config.Client
	client, err := services.NewSpotifyClient(services.ClientOpts{
		BaseURL:         cc.BaseURL,
		Token:           &oauth2.Token{AccessToken: token, TokenType: "Bearer"},
		HTTPClient:      r.httpClient,
		CacheTTL:        cc.CacheTTL,
		CacheMaxEntries: cc.CacheMaxEntries,
		Retry: services.RetryPolicy{
			Attempts: cc.RetryAttempts,
			Base:     cc.RetryBase,
			Cap:      cc.RetryCap,
		},
		Logger: r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify client: %w", err)
	}

	r.spotify = client
	return client, nil
}

// acquirer builds the token acquirer from the configured credentials.
func (r *Runner) acquirer() (*auth.Acquirer, error) {
	sc := r.config.Credentials.Spotify
	if !sc.HasCredentials() {
		return nil, fmt.Errorf("%w: set client_id and client_secret in %s or SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET",
			shared.ErrMissingCredentials, r.configPathOrDefault())
	}

	return auth.New(auth.Options{
		ClientID:     sc.ClientID,
		ClientSecret: sc.ClientSecret,
		RedirectURI:  sc.RedirectURI,
		Scopes:       sc.Scopes,
		AuthURL:      sc.AuthURL,
		TokenURL:     sc.TokenURL,
		Timeout:      r.config.Server.CallbackTimeout,
		OpenBrowser:  r.openBrowser,
		HTTPClient:   r.httpClient,
		Output:       r.output,
		Logger:       r.logger,
	})
}

// openDatabase opens the snapshot store and applies migrations.
func (r *Runner) openDatabase(ctx context.Context) (*sql.DB, error) {
	path := r.config.Database.Path
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return shared.OpenDatabase(ctx, path)
}

func (r *Runner) configPathOrDefault() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

// exportRows writes rows when --export is set and reports whether it did.
//
// The file goes to --output when given, otherwise to {export directory}/{base}.{ext}.
func (r *Runner) exportRows(cmd *cli.Command, rows []*models.Row, base string) (bool, error) {
	name := cmd.String("export")
	if name == "" {
		return false, nil
	}

	format, err := formatter.ParseFormat(name)
	if err != nil {
		return false, err
	}

	path := cmd.String("output")
	if path == "" {
		path = filepath.Join(r.config.Export.Directory, formatter.DefaultPath(base, format))
	}

	written, err := formatter.Export(rows, path, format)
	if err != nil {
		return false, fmt.Errorf("export failed: %w", err)
	}

	r.logger.Info("exported rows", "rows", len(rows), "path", written, "format", format)
	return true, r.writePlain("%s Exported %d rows to %s\n", ui.Styles.OK("✓"), len(rows), written)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", ui.Styles.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
