// comercia - terminal client for the comercia sales backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/comercia-tui/internal/access"
	"github.com/jeranaias/comercia-tui/internal/api"
	"github.com/jeranaias/comercia-tui/internal/cli"
	"github.com/jeranaias/comercia-tui/internal/config"
	"github.com/jeranaias/comercia-tui/internal/history"
	"github.com/jeranaias/comercia-tui/internal/session"
	"github.com/jeranaias/comercia-tui/internal/ui/app"
	"github.com/jeranaias/comercia-tui/internal/ui/styles"
	"github.com/jeranaias/comercia-tui/internal/util"
	"github.com/jeranaias/comercia-tui/internal/validate"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdLogin:
		exitOnErr(handleLogin(args))
	case cli.CmdLogout:
		exitOnErr(handleLogout())
	case cli.CmdStatus:
		exitOnErr(handleStatus())
	case cli.CmdHistorial:
		exitOnErr(handleHistorial(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintHelp()
	}
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// env is the wired application state shared by the TUI and the CLI handlers.
type env struct {
	cfg    *config.Config
	store  *session.Store
	client *api.Client
	hist   *history.Log
}

// buildEnv loads config, hydrates the session store, and wires the client.
func buildEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	stateDir, err := cfg.StateDir()
	if err != nil {
		return nil, err
	}
	store := session.NewStore(stateDir)
	store.Hydrate()

	var hist *history.Log
	var recorder api.Recorder
	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, err
		}
		hist, err = history.Open(path)
		if err != nil {
			// A broken local log must not block sign-in.
			fmt.Fprintf(os.Stderr, "Warning: historial no disponible: %v\n", err)
			hist = nil
		} else {
			recorder = hist
			retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
			if _, err := hist.Prune(retention); err != nil {
				log.Printf("HISTORY | PRUNE_FAILED | %v", err)
			}
		}
	}

	client := api.New(api.Config{
		BaseURL:      cfg.Server.BaseURL,
		Store:        store,
		LoginTimeout: cfg.LoginTimeout(),
		History:      recorder,
	})

	return &env{cfg: cfg, store: store, client: client, hist: hist}, nil
}

func (e *env) close() {
	if e.hist != nil {
		e.hist.Close()
	}
}

// =============================================================================
// TUI
// =============================================================================

func runTUI() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: se requiere una terminal interactiva (usa `comercia help`)")
		os.Exit(1)
	}

	e, err := buildEnv()
	if err != nil {
		exitOnErr(err)
	}
	defer e.close()

	redirectLogs()

	watchdog := session.NewWatchdog(session.WatchdogConfig{
		IdleThreshold: e.cfg.IdleTimeout(),
		WarnBefore:    e.cfg.WarnBefore(),
	})

	var recorder api.Recorder
	if e.hist != nil {
		recorder = e.hist
	}

	root := app.New(app.Config{
		Theme:    styles.NewTheme(),
		Store:    e.store,
		Client:   e.client,
		Watchdog: watchdog,
		History:  recorder,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if e.cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(root, opts...)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running comercia: %v\n", err)
		os.Exit(1)
	}
	watchdog.Stop()
}

// redirectLogs sends the standard logger to a file so log lines never
// corrupt the alternate screen.
func redirectLogs() {
	dir, err := config.ConfigDir()
	if err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "comercia.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	log.SetOutput(f)
}

// =============================================================================
// CLI HANDLERS
// =============================================================================

func handleLogin(args cli.Args) error {
	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if _, ok := e.store.Current(); ok {
		return fmt.Errorf("ya hay una sesión activa; usa `comercia logout` primero")
	}

	email := args.Email
	if email == "" {
		fmt.Print("Correo: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	fmt.Print("Contraseña: ")
	password, err := readPassword()
	if err != nil {
		return err
	}

	if errs := validate.Credentials(email, password); !errs.Empty() {
		return fmt.Errorf("%v", errs)
	}

	sess, err := e.client.Login(context.Background(), email, password)
	if err != nil {
		notice := api.Message(err)
		return fmt.Errorf("%s: %s", notice.Title, notice.Body)
	}

	perms := access.NewSet(sess.User.Permisos)
	fmt.Printf("Sesión iniciada: %s (%s)\n", sess.User.Nombre, sess.User.Rol)
	fmt.Printf("Sección inicial: %s\n", access.ResolveLanding(perms))
	return nil
}

func handleLogout() error {
	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sess, ok := e.store.Current()
	if !ok {
		fmt.Println("No hay sesión activa.")
		return nil
	}

	e.store.Clear()
	if e.hist != nil {
		e.hist.Record(history.KindLogout, sess.User.Email, "cli")
	}
	fmt.Printf("Sesión cerrada: %s\n", sess.User.Email)
	return nil
}

func handleStatus() error {
	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sess, ok := e.store.Current()
	if !ok {
		fmt.Println("Sin sesión. Usa `comercia login` o inicia la interfaz.")
		return nil
	}

	perms := access.NewSet(sess.User.Permisos)
	fmt.Printf("Usuario:   %s <%s>\n", sess.User.Nombre, sess.User.Email)
	fmt.Printf("Rol:       %s\n", sess.User.Rol)
	fmt.Printf("Permisos:  %s\n", strings.Join(sess.User.Permisos, ", "))
	fmt.Printf("Sección:   %s\n", access.ResolveLanding(perms))
	fmt.Printf("Servidor:  %s\n", e.client.BaseURL())
	return nil
}

func handleHistorial(args cli.Args) error {
	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if e.hist == nil {
		return fmt.Errorf("el historial está desactivado")
	}

	events, err := e.hist.Recent(args.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("Sin eventos registrados.")
		return nil
	}

	for _, ev := range events {
		detail := ev.Detail
		if detail != "" {
			detail = " (" + util.TruncateRunes(detail, 60) + ")"
		}
		fmt.Printf("%s  %-13s %s%s\n", ev.At.Format("2006-01-02 15:04"), ev.Kind, ev.Email, detail)
	}
	return nil
}

// readPassword reads a password without echo.
func readPassword() (string, error) {
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	return strings.TrimSpace(string(passBytes)), nil
}
