// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the command line for the comercia client.
package cli

import (
	"fmt"
	"os"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies which handler runs.
type Command int

const (
	// CmdTUI launches the interactive terminal client. Default.
	CmdTUI Command = iota
	// CmdLogin authenticates from the command line.
	CmdLogin
	// CmdLogout clears the persisted session.
	CmdLogout
	// CmdStatus prints the current session state.
	CmdStatus
	// CmdHistorial prints recent auth events.
	CmdHistorial
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Args carries the flags shared by the handlers.
type Args struct {
	// Email pre-fills the login prompt.
	Email string
	// Limit bounds historial output.
	Limit int
	// Rest holds unparsed positional arguments.
	Rest []string
}

// Parse reads os.Args and returns the command and its arguments.
// Unknown commands fall back to help so typos never launch the TUI.
func Parse() (Command, Args) {
	args := Args{Limit: 20}
	argv := os.Args[1:]
	if len(argv) == 0 {
		return CmdTUI, args
	}

	cmd := CmdTUI
	switch argv[0] {
	case "login":
		cmd = CmdLogin
	case "logout":
		cmd = CmdLogout
	case "status":
		cmd = CmdStatus
	case "historial":
		cmd = CmdHistorial
	case "version", "--version", "-v":
		cmd = CmdVersion
	case "help", "--help", "-h":
		cmd = CmdHelp
	default:
		fmt.Fprintf(os.Stderr, "comercia: comando desconocido %q\n\n", argv[0])
		return CmdHelp, args
	}

	rest := argv[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--email":
			if i+1 < len(rest) {
				i++
				args.Email = rest[i]
			}
		case "--limit", "-n":
			if i+1 < len(rest) {
				i++
				fmt.Sscanf(rest[i], "%d", &args.Limit)
			}
		default:
			args.Rest = append(args.Rest, rest[i])
		}
	}
	return cmd, args
}

// PrintVersion writes the version line.
func PrintVersion() {
	fmt.Printf("comercia %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// PrintHelp writes usage to stdout.
func PrintHelp() {
	fmt.Print(`comercia - cliente de terminal para el sistema de ventas

Uso:
  comercia              Inicia la interfaz interactiva
  comercia login        Inicia sesión desde la línea de comandos
  comercia logout       Cierra la sesión persistida
  comercia status       Muestra el estado de la sesión
  comercia historial    Muestra los eventos de autenticación recientes
  comercia version      Muestra la versión
  comercia help         Muestra esta ayuda

Opciones:
  --email <correo>      Pre-llena el correo en login
  --limit <n>           Límite de eventos en historial (20 por defecto)

Variables de entorno:
  COMERCIA_BASE_URL     URL del backend
  COMERCIA_STATE_DIR    Directorio del estado de sesión
  COMERCIA_NO_HISTORY   Desactiva el historial local
`)
}
