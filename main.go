// Command game2048 runs the 2048 game.
//
// It has three subcommands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, WebSocket updates, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server, spinning up an internal HTTP API if none is reachable
//  3. "play" – plays a game in the terminal with w/a/s/d
//
// Settings come from .env and GAME2048_* environment variables; flags given
// on the command line take precedence.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/game2048/api"
	"github.com/wricardo/game2048/game/config"
	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
	"github.com/wricardo/game2048/game/session"
	"github.com/wricardo/game2048/internal/render"
	"github.com/wricardo/game2048/internal/telemetry"
	"github.com/wricardo/game2048/transport/mcp"
	"github.com/wricardo/game2048/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "2048 Game Server"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. in and out are used by the play command.
func newApp(in io.Reader, out io.Writer) *cli.Command {
	serve := &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket, and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port"},
			&cli.IntFlag{Name: "seed", Usage: "fixed seed for every new session (0 draws a fresh seed)"},
			&cli.StringFlag{Name: "otel-endpoint", Usage: "OTLP/HTTP endpoint for traces, e.g. http://localhost:4318"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return runHTTPServer(ctx, settings)
		},
	}

	return &cli.Command{
		Name:    "game2048",
		Usage:   AppName,
		Version: Version,
		Commands: []*cli.Command{
			serve,
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server backed by the REST API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "REST API to proxy; an internal one is started when unreachable"},
					&cli.IntFlag{Name: "seed", Usage: "fixed seed for sessions of the internal server"},
					&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					settings, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					return runStdioMCP(ctx, settings, cmd.String("api-url"))
				},
			},
			{
				Name:  "play",
				Usage: "play in the terminal (w/a/s/d to move, r to restart, q to quit)",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "seed", Usage: "seed for the tile sequence (0 draws a fresh seed)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					seed := int64(cmd.Int("seed"))
					if seed == 0 {
						var err error
						if seed, err = engine.NewSeed(); err != nil {
							return err
						}
					}
					game, err := engine.NewEngine(engine.NewRandomSource(seed))
					if err != nil {
						return err
					}
					return runPlay(in, out, game)
				},
			},
		},
		DefaultCommand: "serve",
	}
}

// loadSettings reads the environment and applies flags that were set explicitly.
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("seed") {
		settings.Seed = int64(cmd.Int("seed"))
	}
	if cmd.IsSet("debug") {
		settings.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("otel-endpoint") {
		settings.OTelEndpoint = cmd.String("otel-endpoint")
	}
	if cmd.IsSet("ngrok") {
		settings.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		settings.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		settings.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	// Setup logging
	if settings.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	return settings, nil
}

// initializeServices wires the session manager and the game service.
func initializeServices(settings *config.Settings) (service.GameService, *session.Manager) {
	var opts []session.Option
	if seed, ok := settings.FixedSeed(); ok {
		log.Printf("Using fixed seed %d for new sessions", seed)
		opts = append(opts, session.WithSeed(seed))
	}

	sessionManager := session.NewManager(opts...)
	return service.NewGameService(sessionManager), sessionManager
}

// newHandler combines the API server with the /mcp endpoint.
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// loopbackURL returns the URL the server's own MCP proxy uses to reach it.
func loopbackURL(settings *config.Settings) string {
	host := settings.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(settings.Port)))
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, settings *config.Settings) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting %s v%s", AppName, Version)

	shutdownTracing, err := telemetry.Setup(ctx, "game2048", Version, settings.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}()
	if settings.OTelEndpoint != "" {
		log.Printf("Exporting traces to %s", settings.OTelEndpoint)
	}

	gameService, sessionManager := initializeServices(settings)

	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	addr := settings.Addr()
	handler := newHandler(api.NewServer(gameService, hub), mcp.NewClient(loopbackURL(settings)))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, sessionManager, settings.CleanupInterval, settings.SessionTTL)
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if settings.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, settings.Ngrok, handler)
		}()
	}

	// Wait for shutdown signal or a failed listener
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done.
func runNgrokTunnel(ctx context.Context, settings config.NgrokSettings, handler http.Handler) {
	if settings.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if settings.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
		log.Printf("Using custom ngrok domain: %s", settings.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within ttl. It returns when ctx is done.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// apiReachable reports whether a REST API answers at baseURL.
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", strings.TrimRight(baseURL, "/")+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves a private REST API on a random loopback port and
// returns its base URL and a shutdown function.
func startInternalAPI(settings *config.Settings) (string, func(context.Context) error, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen on loopback: %w", err)
	}

	gameService, _ := initializeServices(settings)
	hub := websocket.NewHub()
	go hub.Run()

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	shutdown := func(ctx context.Context) error {
		hub.Stop()
		return httpServer.Shutdown(ctx)
	}
	return "http://" + listener.Addr().String(), shutdown, nil
}

// runStdioMCP runs an MCP stdio server.
// It reuses the API at apiURL when it answers; otherwise it starts an
// internal API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, settings *config.Settings, apiURL string) error {
	baseURL := apiURL

	log.Printf("Checking for external API server at %s...", apiURL)
	if apiReachable(ctx, apiURL) {
		log.Printf("External API server found at %s, using it for MCP", apiURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		internalURL, shutdown, err := startInternalAPI(settings)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
		baseURL = internalURL
		log.Printf("Internal HTTP server for MCP stdio on %s", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// keyDirections maps terminal input to directions.
var keyDirections = map[string]engine.Direction{
	"w": engine.Up, "up": engine.Up,
	"a": engine.Left, "left": engine.Left,
	"s": engine.Down, "down": engine.Down,
	"d": engine.Right, "right": engine.Right,
}

const playHelp = "w/a/s/d (or up/left/down/right) to move, r to restart, q to quit"

// playTokens splits an input line into commands. Known words are kept
// whole, anything else is read one key at a time, so "wasd" is four moves.
func playTokens(line string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(line)) {
		switch field {
		case "up", "down", "left", "right", "quit", "reset":
			tokens = append(tokens, field)
			continue
		}
		for _, r := range field {
			tokens = append(tokens, string(r))
		}
	}
	return tokens
}

// runPlay runs an interactive game reading commands from in.
func runPlay(in io.Reader, out io.Writer, game *engine.GameEngine) error {
	r := render.Default()

	fmt.Fprint(out, r.Board(game.GetState()))
	fmt.Fprintln(out, playHelp)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		for _, token := range playTokens(scanner.Text()) {
			switch token {
			case "q", "quit":
				fmt.Fprintf(out, "Bye! Final score: %s\n", r.Score(game.GetScore()))
				return nil
			case "r", "reset":
				game.Reset()
			default:
				dir, ok := keyDirections[token]
				if !ok {
					fmt.Fprintf(out, "Unknown key %q (%s)\n", token, playHelp)
					continue
				}
				if game.IsGameOver() {
					fmt.Fprintln(out, "The game is over. Press r for a new game or q to quit.")
					continue
				}
				if !game.Step(dir).Moved {
					fmt.Fprintf(out, "Nothing moves %s\n", dir)
					continue
				}
			}
			fmt.Fprint(out, r.Board(game.GetState()))
		}
	}
	return scanner.Err()
}
