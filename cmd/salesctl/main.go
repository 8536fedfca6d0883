// main.go - Command line client for salesbi
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"salesbi/internal"
	"salesbi/internal/assistant"
	"salesbi/internal/charts"
	"salesbi/internal/config"
	"salesbi/internal/history"
	"salesbi/internal/intents"
)

const (
	defaultShutdownTimeout = 30 * time.Second
	shellPrompt            = "salesbi> "
	shellHistoryFile       = ".salesctl_history"
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&AskCommand{},
	&ShellCommand{},
	&HistoryCommand{},
	&MigrateCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs(os.Args[1:])

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Printf("Warning: Failed to initialize app: %v", err)
		log.Println("Proceeding with limited functionality...")
	}

	defer func() {
		if app != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				log.Printf("Warning: Cleanup error: %v", err)
			}
		}
	}()

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func newService(app *internal.Application) *assistant.Service {
	svc := &assistant.Service{
		Logger: slog.Default(),
		Config: config.GetConfig(),
		Source: assistant.SourceCLI,
	}
	if app != nil {
		svc.DB = app.DBManager.GetConnection()
	}
	return svc
}

// AskCommand answers a single question
type AskCommand struct{}

func (c *AskCommand) Name() string { return "ask" }
func (c *AskCommand) Description() string {
	return "Answers a question: ask [--png file] [--csv file] <question>"
}

func (c *AskCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	opts, err := parseAskArgs(args)
	if err != nil {
		return err
	}

	ans, err := newService(app).Ask(opts.question)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuestion) {
			return fmt.Errorf("usage: %s [--png file] [--csv file] <question>", c.Name())
		}
		return errors.New(assistant.LoadErrorMessage(err))
	}

	if !ans.Recognized() {
		fmt.Println(intents.MessageUnrecognized)
		return nil
	}

	printAnswer(os.Stdout, ans, terminalWidth())
	return writeArtifacts(ans, opts.pngPath, opts.csvPath)
}

type askOptions struct {
	question string
	pngPath  string
	csvPath  string
}

func parseAskArgs(args []string) (askOptions, error) {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pngPath := fs.String("png", "", "write the chart to this PNG file")
	csvPath := fs.String("csv", "", "write the data to this CSV file")
	// Flags may follow the question ("ask top 5 products --png out.png"), so parse
	// again after every question word. Everything after "--" is question text.
	var words []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return askOptions{}, err
		}
		rest := fs.Args()
		if consumed := args[:len(args)-len(rest)]; len(consumed) > 0 && consumed[len(consumed)-1] == "--" {
			words = append(words, rest...)
			break
		}
		if len(rest) == 0 {
			break
		}
		words = append(words, rest[0])
		args = rest[1:]
	}

	return askOptions{
		question: strings.Join(words, " "),
		pngPath:  *pngPath,
		csvPath:  *csvPath,
	}, nil
}

func writeArtifacts(ans *assistant.Answer, pngPath, csvPath string) error {
	if pngPath != "" {
		f, err := os.Create(pngPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", pngPath, err)
		}
		defer f.Close()
		if err := charts.Render(f, *ans.Chart, ans.Result); err != nil {
			return err
		}
		fmt.Printf("Chart written to %s\n", pngPath)
	}

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", csvPath, err)
		}
		defer f.Close()
		if err := intents.WriteCSV(f, ans.Result); err != nil {
			return err
		}
		fmt.Printf("Data written to %s\n", csvPath)
	}
	return nil
}

// ShellCommand runs an interactive question prompt
type ShellCommand struct{}

func (c *ShellCommand) Name() string        { return "shell" }
func (c *ShellCommand) Description() string { return "Starts an interactive question prompt" }

func (c *ShellCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	svc := newService(app)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeShellLine)

	historyPath := filepath.Join(config.GetConfig().DatabasePath, shellHistoryFile)
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("Ask a question about your sales data. Type :help for commands.")
	for ctx.Err() == nil {
		input, err := line.Prompt(shellPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := runShellLine(os.Stdout, svc, input); quit {
			return nil
		}
	}
	return nil
}

var shellCommands = []string{":help", ":examples", ":reload", ":quit"}

// runShellLine handles one line of shell input and reports whether the shell should exit.
func runShellLine(w io.Writer, svc *assistant.Service, input string) bool {
	switch input {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Fprintln(w, "  :examples  list example questions")
		fmt.Fprintln(w, "  :reload    reread the dataset")
		fmt.Fprintln(w, "  :quit      leave the shell")
		return false
	case ":examples":
		for _, q := range intents.Examples {
			fmt.Fprintf(w, "  %s\n", q)
		}
		return false
	case ":reload":
		t, err := svc.Reload()
		if err != nil {
			fmt.Fprintln(w, assistant.LoadErrorMessage(err))
			return false
		}
		fmt.Fprintf(w, "Loaded %d rows from %s\n", t.Len(), t.Path)
		return false
	}

	ans, err := svc.Ask(input)
	if err != nil {
		fmt.Fprintln(w, assistant.LoadErrorMessage(err))
		return false
	}
	if !ans.Recognized() {
		fmt.Fprintln(w, intents.MessageUnrecognized)
		return false
	}
	printAnswer(w, ans, terminalWidth())
	return false
}

func completeShellLine(line string) []string {
	var out []string
	lower := strings.ToLower(line)
	for _, c := range append(append([]string{}, shellCommands...), intents.Examples...) {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, c)
		}
	}
	return out
}

// HistoryCommand lists recent questions
type HistoryCommand struct{}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Description() string { return "Lists recently asked questions: history [limit]" }

func (c *HistoryCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot connect to database")
	}

	limit := history.DefaultLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid limit %q", args[0])
		}
		limit = n
	}

	logs, err := history.Recent(app.DBManager.GetConnection(), limit)
	if err != nil {
		return err
	}

	printHistory(os.Stdout, logs, terminalWidth())
	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

// Name returns the command name
func (c *HelpCommand) Name() string {
	return "help"
}

// Description returns the command description
func (c *HelpCommand) Description() string {
	return "Shows usage information"
}

// Execute implements the help command
func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage(os.Stdout)
	return nil
}

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot run migrations")
	}

	log.Println("Running database migrations...")
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully")
	return nil
}

// Helper functions

// parseArgs splits the command name from its arguments
func parseArgs(args []string) (string, []string) {
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: salesctl [command] [args...]")
	fmt.Fprintln(w, "Available commands:")

	for _, cmd := range commands {
		fmt.Fprintf(w, "  %s: %s\n", cmd.Name(), cmd.Description())
	}
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	printUsage(os.Stdout)
	os.Exit(1)
}
