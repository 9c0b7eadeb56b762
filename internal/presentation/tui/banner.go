package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the startup banner with the build version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _ _                 _       ", "#818cf8"},
		{" (_) |_ ___ _ __ __ _| |_ ___ ", "#a78bfa"},
		{" | | __/ _ \\ '__/ _` | __/ _ \\", "#c084fc"},
		{" | | ||  __/ | | (_| | ||  __/", "#e879f9"},
		{" |_|\\__\\___|_|  \\__,_|\\__\\___|", "#f472b6"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Println(termenv.String("  v" + v).Foreground(p.Color("#9ca3af")))
	}
	fmt.Println()
}
