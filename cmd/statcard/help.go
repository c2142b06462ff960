package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: statcard <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Export the visuals of a YAML file to JPEG")
	fmt.Fprintln(w, "  fonts      Print the font CSS an export would embed")
	fmt.Fprintln(w, "  doctor     Check the system for headless Chrome")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'statcard help <command>' for details on a specific command.")
}

// printExportFlags prints the flags shared by render and fonts.
func printExportFlags(w io.Writer) {
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Export timeout per visual (default 30s)")
	fmt.Fprintln(w, "      --fetch-timeout <d>   Timeout per background or font (default 10s)")
	fmt.Fprintln(w, "      --base-url <url>      Base URL for relative backgrounds and fonts")
	fmt.Fprintln(w, "      --font-embedding <s>  Font embedding: auto, always, never")
	fmt.Fprintln(w, "      --assets <dir>        Directory overriding styles and templates")
	fmt.Fprintln(w, "      --user-agent <s>      User-Agent of resource fetches")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timings and debug logs")
	fmt.Fprintln(w, "      --log-format <s>      Log format: console, json")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: statcard render <visuals.yaml> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export every visual of a YAML file to <name>.jpg.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  visuals.yaml    File with a \"visuals:\" list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Batch:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers (0 = auto)")
	fmt.Fprintln(w, "      --only <names>        Render only these visuals (comma-separated)")
	fmt.Fprintln(w, "      --no-watermark        Do not watermark free visuals")
	fmt.Fprintln(w, "      --upload              Store images through the configured store")
	fmt.Fprintln(w)
	printExportFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Periods:")
	fmt.Fprintln(w, "  this-month, last-month    Month names, e.g. \"March 2026\"")
	fmt.Fprintln(w, "  auto, auto:FORMAT         Date of the run, e.g. auto:MMMM YYYY")
}

// printFontsUsage prints usage for the fonts command.
func printFontsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: statcard fonts <visuals.yaml> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the @font-face rules an export of a visual would embed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -n, --name <s>            Visual to inspect (default: first)")
	fmt.Fprintln(w)
	printExportFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "fonts":
		printFontsUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: statcard doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that headless Chrome can run here.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: statcard version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: statcard help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
