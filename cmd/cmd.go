package cmd

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/thiagokokada/diffy-go/internal/buildinfo"
	"github.com/thiagokokada/diffy-go/internal/tui"
	"github.com/thiagokokada/diffy-go/internal/web"
)

func Run() error {
	return run(os.Args[1:])
}

func run(args []string) error {
	fs := flag.NewFlagSet("diffy-go", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: diffy-go [flags] LEFT RIGHT\n\n")
		fs.PrintDefaults()
	}
	webMode := fs.Bool("web", false, "serve the comparison in a browser instead of the terminal")
	port := fs.Int("port", 3000, "web server port")
	open := fs.Bool("open", false, "open the browser once the web server is listening")
	includeIgnored := fs.Bool("include-ignored", false, "include files matched by .gitignore")
	exclude := fs.String("exclude", "", "comma-separated glob patterns to exclude")
	mode := fs.String("mode", tui.ThemeAuto.String(), "color mode: auto, light, or dark")
	view := fs.String("view", "unified", "initial diff view: unified or side-by-side")
	noWatch := fs.Bool("nowatch", false, "disable automatic reload when the compared paths change")
	noSyntax := fs.Bool("nosyntax", false, "disable syntax highlighting in the diff viewer")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println(buildinfo.VersionWithTags())
		return nil
	}

	remaining := fs.Args()
	if len(remaining) != 2 {
		fs.Usage()
		return fmt.Errorf("expected 2 paths to compare, got %d", len(remaining))
	}
	left, right := remaining[0], remaining[1]
	for _, p := range []string{left, right} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("cannot compare %s: %w", p, err)
		}
	}

	setupLogging(*verbose)

	if *webMode {
		return web.Run(web.Config{
			Left:           left,
			Right:          right,
			IncludeIgnored: *includeIgnored,
			Excludes:       parseExcludes(*exclude),
			Port:           *port,
			Open:           *open,
			Watch:          !*noWatch,
		})
	}
	return tui.Run(tui.Config{
		Left:           left,
		Right:          right,
		IncludeIgnored: *includeIgnored,
		Excludes:       parseExcludes(*exclude),
		Theme:          tui.ThemePreferenceFromString(*mode),
		Mode:           *view,
		Watch:          !*noWatch,
		Syntax:         !*noSyntax,
	})
}

func parseExcludes(raw string) []string {
	var patterns []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			patterns = append(patterns, part)
		}
	}
	return patterns
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
