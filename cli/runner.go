// Command execution for CLI commands.
//
// Information Hiding:
// - Backend client and storage setup hidden
// - Stream consumption and output formatting hidden
// - Session persistence hidden

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/obiajulu/comply/api"
	"github.com/obiajulu/comply/config"
	jsonutil "github.com/obiajulu/comply/internal/json"
	"github.com/obiajulu/comply/internal/logging"
	"github.com/obiajulu/comply/model"
	"github.com/obiajulu/comply/storage"
	"github.com/obiajulu/comply/stream"
	"github.com/obiajulu/comply/tui"
	"github.com/obiajulu/comply/upload"
)

// Options holds CLI execution options.
type Options struct {
	APIURL  string
	Verbose bool
}

// setup builds the shared pieces every command needs: settings with flag
// overrides applied, a logger, and a backend client.
func setup(opts Options) (config.Settings, zerolog.Logger, *api.Client, error) {
	settings, err := config.New()
	if err != nil {
		return config.Settings{}, zerolog.Logger{}, nil, err
	}
	if opts.APIURL != "" {
		settings.API.BaseURL = strings.TrimRight(opts.APIURL, "/")
	}
	if opts.Verbose {
		settings.Log.Level = "debug"
	}

	log := logging.New(logging.Config{
		Level:  settings.Log.Level,
		Pretty: settings.Log.Pretty,
	})
	client := api.NewClient(settings.API.BaseURL, settings.API.Timeout, logging.NewComponent(log, "api"))
	return settings, log, client, nil
}

// Chat launches the interactive terminal interface. When sessionID is
// non-empty the conversation transcript is persisted to SQLite and restored
// on the next launch.
func Chat(ctx context.Context, sessionID, dbPath string, opts Options) error {
	settings, log, client, err := setup(opts)
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = settings.Storage.DBPath
	}

	var store storage.TranscriptStorage
	var history []storage.Record
	if sessionID != "" {
		s, err := storage.OpenSqlite(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()
		store = s

		history, err = s.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", sessionID, err)
		}
	}

	return tui.Run(tui.Config{
		Client:    client,
		Store:     store,
		SessionID: sessionID,
		History:   history,
		Log:       log,
	})
}

// Ask sends a single query and streams the answer to stdout. With
// opts.Verbose each agent and tool event is printed as it arrives.
func Ask(ctx context.Context, query, sessionID, dbPath string, opts Options) error {
	settings, _, client, err := setup(opts)
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = settings.Storage.DBPath
	}

	reducer := stream.NewReducer()
	if err := reducer.Begin(query); err != nil {
		return err
	}

	s, err := client.Chat(ctx, query)
	if err != nil {
		reducer.Fail(err)
		return err
	}
	defer s.Close()

	for {
		ev, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			reducer.Fail(err)
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("stream failed: %w", err)
		}

		reducer.Apply(ev)
		printEvent(ev, opts.Verbose)
	}
	reducer.Complete()
	fmt.Println()

	msg := reducer.Conversation()[len(reducer.Conversation())-1]
	if used := msg.AgentsUsed(); opts.Verbose && len(used) > 0 {
		fmt.Printf("\n(agents: %s)\n", strings.Join(used, ", "))
	}

	if sessionID != "" {
		if err := saveConversation(ctx, dbPath, sessionID, reducer.Conversation()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}
	}
	return nil
}

func printEvent(ev model.Event, verbose bool) {
	switch ev.Type {
	case model.EventAgentText:
		fmt.Print(ev.Content)
	case model.EventAgentStart, model.EventAgentActive:
		if verbose {
			fmt.Fprintf(os.Stderr, "[%s] active\n", ev.Agent)
		}
	case model.EventToolCall:
		if verbose {
			fmt.Fprintf(os.Stderr, "[tool] %s %s\n", ev.Tool, string(ev.Args))
		}
	case model.EventToolResult:
		if verbose {
			fmt.Fprintf(os.Stderr, "[tool] %s returned:\n%s\n", ev.Tool, jsonutil.Pretty(ev.Result))
		}
	case model.EventAgentComplete:
		if verbose {
			fmt.Fprintf(os.Stderr, "[%s] complete\n", ev.Agent)
		}
	case model.EventError:
		fmt.Fprintf(os.Stderr, "\nBackend error: %s\n", ev.Message)
	}
}

func saveConversation(ctx context.Context, dbPath, sessionID string, msgs []*model.Message) error {
	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records := make([]storage.Record, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, storage.Record{
			Role:       string(m.Role),
			Content:    m.Text,
			AgentsUsed: m.AgentsUsed(),
		})
	}
	return store.Save(ctx, sessionID, records)
}

// Upload sends the given document paths to the backend as one batch and
// prints the result banner.
func Upload(ctx context.Context, paths []string, opts Options) error {
	_, log, client, err := setup(opts)
	if err != nil {
		return err
	}

	coordinator := upload.NewCoordinator(client, logging.NewComponent(log, "upload"))
	result, err := coordinator.Run(ctx, paths)
	if err != nil {
		return err
	}

	fmt.Println(upload.Summary(result))
	for _, name := range result.FilesProcessed {
		fmt.Printf("  %s\n", name)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "  error: %s\n", e)
	}
	if result.Status == api.StatusError {
		return fmt.Errorf("upload failed: %s", result.Message)
	}
	return nil
}

// HealthCheck queries the backend and prints its status and agent roster.
func HealthCheck(ctx context.Context, opts Options) error {
	_, _, client, err := setup(opts)
	if err != nil {
		return err
	}

	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("backend unreachable at %s: %w", client.BaseURL(), err)
	}

	fmt.Printf("Backend: %s (%s)\n", client.BaseURL(), health.Status)
	if len(health.Agents) > 0 {
		fmt.Println("Agents:")
		for _, a := range health.Agents {
			fmt.Printf("  %s\n", a)
		}
	}

	if info, err := client.Info(ctx); err == nil && info.Service != "" {
		fmt.Printf("Service: %s %s\n", info.Service, info.Version)
	}
	return nil
}

// Sessions lists stored transcript sessions, most recently updated first.
func Sessions(ctx context.Context, dbPath string) error {
	settings, err := config.New()
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = settings.Storage.DBPath
	}

	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}
	for _, s := range sessions {
		fmt.Println(s)
	}
	return nil
}
