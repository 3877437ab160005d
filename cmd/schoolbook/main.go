// ABOUTME: Entry point for the schoolbook command line
// ABOUTME: Loads config, opens the store, restores the session and dispatches subcommands

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/schoolbook/internal/app"
	"github.com/2389/schoolbook/internal/config"
)

// version is set at build time.
var version = "dev"

const banner = `
          _                 _ _                 _
 ___  ___| |__   ___   ___ | | |__   ___   ___ | | __
/ __|/ __| '_ \ / _ \ / _ \| | '_ \ / _ \ / _ \| |/ /
\__ \ (__| | | | (_) | (_) | | |_) | (_) | (_) |   <
|___/\___|_| |_|\___/ \___/|_|_.__/ \___/ \___/|_|\_\
`

// errUnknownCommand is returned for a subcommand run does not know
var errUnknownCommand = errors.New("unknown command")

// handler runs one subcommand with its remaining arguments
type handler func(c *cli, ctx context.Context, args []string) error

var commands = map[string]handler{
	"setup":      (*cli).cmdSetup,
	"login":      (*cli).cmdLogin,
	"register":   (*cli).cmdRegister,
	"logout":     (*cli).cmdLogout,
	"whoami":     (*cli).cmdWhoami,
	"school":     (*cli).cmdSchool,
	"teachers":   (*cli).cmdTeachers,
	"students":   (*cli).cmdStudents,
	"attendance": (*cli).cmdAttendance,
	"logs":       (*cli).cmdLogs,
	"chat":       (*cli).cmdChat,
	"staff":      (*cli).cmdStaff,
	"timetable":  (*cli).cmdTimetable,
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	// A missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, errUnknownCommand) {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stdout)
		os.Exit(1)
	}
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one subcommand. Logs go to stderr, command output to stdout.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return nil
	}

	name, rest := args[0], args[1:]
	switch name {
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	case "version", "--version":
		fmt.Fprintf(stdout, "schoolbook %s\n", version)
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return errUnknownCommand
	}

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, stderr)
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Error("closing app", "error", cerr)
		}
	}()

	ctx, _, err = a.Session(ctx)
	if err != nil {
		return err
	}

	c := &cli{app: a, in: stdin, out: stdout}
	return cmd(c, ctx, rest)
}

func printUsage(w io.Writer) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Fprint(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: schoolbook <command> [args]")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Getting started:")
	fmt.Fprintln(w, "  setup                        Create the school and its headmaster (first run)")
	fmt.Fprintln(w, "  login                        Sign in as staff or student")
	fmt.Fprintln(w, "  register                     Apply for a staff login (needs headmaster approval)")
	fmt.Fprintln(w, "  logout                       Sign out")
	fmt.Fprintln(w, "  whoami                       Show the signed-in principal")
	fmt.Fprintln(w, "  school                       Show the school profile")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Headmaster:")
	fmt.Fprintln(w, "  teachers pending|approved    List teachers by approval state")
	fmt.Fprintln(w, "  teachers approve <id>        Approve a registration")
	fmt.Fprintln(w, "  teachers reject <id>         Reject a registration or remove a teacher")
	fmt.Fprintln(w, "  teachers save                Add or edit a teacher directly")
	fmt.Fprintln(w, "  staff save|delete <id>       Manage non-teaching staff")
	fmt.Fprintln(w, "  timetable save|delete <id>   Manage timetable periods")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Staff:")
	fmt.Fprintln(w, "  students list|show|search    Browse the student directory")
	fmt.Fprintln(w, "  students add|edit|delete     Maintain the student directory")
	fmt.Fprintln(w, "  attendance toggle <id>       Flip a student's presence for a day")
	fmt.Fprintln(w, "  attendance roster            Show a section's attendance for a day")
	fmt.Fprintln(w, "  logs post                    Post a lesson log")
	fmt.Fprintln(w, "  staff list                   List non-teaching staff")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Everyone signed in:")
	fmt.Fprintln(w, "  attendance history [id]      Days present, newest first")
	fmt.Fprintln(w, "  logs list [--html]           Lesson logs visible to you")
	fmt.Fprintln(w, "  timetable list               Timetable (students see their own section)")
	fmt.Fprintln(w, "  chat peers|thread <id>       Classmates and conversations (students)")
	fmt.Fprintln(w, "  chat send <id> <text>        Message a classmate (students)")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SCHOOLBOOK_CONFIG            Config file (default: ~/.config/schoolbook/config.yaml)")
	fmt.Fprintln(w, "  SCHOOLBOOK_DB_PATH           Override the SQLite database path")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  schoolbook setup --school 'Hill School' --code 042017 --name 'A. Rahman' --email hm@hill.edu")
	fmt.Fprintln(w, "  schoolbook login --code 042017 --role student --id 1001")
	fmt.Fprintln(w, "  schoolbook attendance roster --class 6th --section K-shakha")
	fmt.Fprintln(w)
}

// setupLogger builds the process logger from the logging config.
func setupLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var h slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		h = &colorHandler{
			mu:    &sync.Mutex{},
			out:   w,
			level: level,
		}
	}

	return slog.New(h)
}

// colorHandler writes one colored line per record to out. Handlers
// derived through WithAttrs and WithGroup share the parent's lock.
type colorHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

var levelTags = map[slog.Level]string{
	slog.LevelDebug: color.MagentaString("DBG "),
	slog.LevelInfo:  color.CyanString("INF "),
	slog.LevelWarn:  color.YellowString("WRN "),
	slog.LevelError: color.New(color.FgRed, color.Bold).Sprint("ERR "),
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	line.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))
	if tag, ok := levelTags[r.Level]; ok {
		line.WriteString(tag)
	} else {
		line.WriteString(r.Level.String() + " ")
	}
	line.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&line, "", a)
	}
	// Record attrs sit under the groups opened so far
	group := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&line, group, a)
		return true
	})
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String())
	return err
}

func writeAttr(line *strings.Builder, group string, a slog.Attr) {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	line.WriteString(color.HiBlackString(" " + key + "="))
	line.WriteString(a.Value.String())
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *h
	child.attrs = append(slices.Clip(h.attrs), attrs...)
	return &child
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	child := *h
	child.groups = append(slices.Clip(h.groups), name)
	return &child
}
