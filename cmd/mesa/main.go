package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dmerreys/tickets-frontend/internal/config"
	"github.com/dmerreys/tickets-frontend/internal/logging"
	"github.com/dmerreys/tickets-frontend/internal/session"
	"github.com/dmerreys/tickets-frontend/internal/tui"
	"github.com/dmerreys/tickets-frontend/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("mesa " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "logout":
			return runLogout(cfg)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
			printHelp()
			os.Exit(2)
		}
	}

	logger, err := logging.NewLogger(cfg.LogFile(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	store := session.NewStore(cfg.StateDir)
	monitor := session.NewMonitor(store, logger)
	c := client.New(cfg.APIURL, monitor, logger)

	sess := store.Load()
	if sess.Valid() {
		c.SetToken(sess.Token)
		logger.Info("session restored", zap.String("user", sess.User.Name))
	}

	app := tui.NewApp(c, store, sess)
	p := tea.NewProgram(app, tea.WithAltScreen())
	monitor.SetProgram(p)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogout(cfg *config.Config) error {
	store := session.NewStore(cfg.StateDir)
	if !store.Load().Valid() {
		fmt.Println("No hay sesión activa.")
		// Half-written pairs still get swept.
		return store.Clear()
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Sesión cerrada.")
	return nil
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("M E S A")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Mesa de ayuda en tu terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"mesa", "Abrir la interfaz interactiva"},
		{"mesa logout", "Cerrar la sesión guardada"},
		{"mesa version", "Mostrar la versión"},
		{"mesa help", "Esta ayuda"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Comandos:\n", title, tagline)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-14s", c.cmd)), descStyle.Render(c.desc))
	}
	env := descStyle.Render("MESA_API_URL, MESA_STATE_DIR, LOG_LEVEL (también vía .env)")
	fmt.Printf("\n  Entorno: %s\n\n", env)
}
