package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"prunarr/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

// checkLines renders one status line per preflight result followed by a
// summary line.
func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results)+1)
	failed := 0
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
			failed++
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	if failed == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, "ready to run", colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d of %d checks failed", failed, len(results)), colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
