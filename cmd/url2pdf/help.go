package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: url2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP PDF service")
	fmt.Fprintln(w, "  render     Print URLs to PDF files")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'url2pdf help <command>' for details on a specific command.")
}

// printSharedUsage prints the flags serve and render have in common.
func printSharedUsage(w io.Writer) {
	fmt.Fprintln(w, "Browser Pool:")
	fmt.Fprintln(w, "      --min-workers <n>     Browsers kept alive when idle (default 1)")
	fmt.Fprintln(w, "      --max-workers <n>     Maximum concurrent browsers (default 10)")
	fmt.Fprintln(w, "      --max-pages <n>       Maximum open pages per browser (default 10)")
	fmt.Fprintln(w, "      --max-life-span <d>   Recycle browsers older than this (default 10m, 0 = never)")
	fmt.Fprintln(w, "      --max-idle <d>        Close browsers idle longer than this (default 5m, 0 = never)")
	fmt.Fprintln(w, "      --max-page-wait <d>   Fail tasks queued longer than this (default 2m, 0 = never)")
	fmt.Fprintln(w, "      --close-grace <d>     Wait for open pages before closing (default 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome executable")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox (containers)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --width <n>           Viewport width (default 1280)")
	fmt.Fprintln(w, "      --height <n>          Viewport height (default 1696)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Navigation timeout (default 3m)")
	fmt.Fprintln(w, "      --wait-until <s>      load, domcontentloaded, networkidle0, networkidle2")
	fmt.Fprintln(w, "      --media <s>           Emulated media: screen, print")
	fmt.Fprintln(w, "      --wait-for <css>      Selector to wait for before printing")
	fmt.Fprintln(w, "      --no-cache-bust       Do not add a random query parameter")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "  -f, --format <s>          letter, legal, tabloid, ledger, a0-a6")
	fmt.Fprintln(w, "      --landscape           Landscape orientation")
	fmt.Fprintln(w, "      --background          Print background graphics")
	fmt.Fprintln(w, "      --scale <f>           Rendering scale (0.1-2)")
	fmt.Fprintln(w, "      --pages <s>           Page ranges, e.g. 1-3,5")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
	fmt.Fprintln(w, "      --log-format <s>      text, json")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: url2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP PDF service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  POST /save-as-pdf         {url, pdfOptions, pageOptions} -> application/pdf")
	fmt.Fprintln(w, "  GET  /activity-check      Workers, waiting tasks and limits as JSON")
	fmt.Fprintln(w, "  GET  /clean-browsers      Close every idle or busy browser")
	fmt.Fprintln(w, "  GET  /healthcheck         Version string")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :3001)")
	fmt.Fprintln(w, "      --allow-domain <d>    Allowed URL domain, repeatable (default: any)")
	fmt.Fprintln(w, "      --shutdown-timeout <d> Time to drain requests on shutdown (default 30s)")
	fmt.Fprintln(w, "      --warmup              Launch the minimum browsers before listening")
	fmt.Fprintln(w)
	printSharedUsage(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: url2pdf render <url>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print URLs to PDF files.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  url      One or more http(s) URLs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       PDF file (single URL) or directory (default: .)")
	fmt.Fprintln(w)
	printSharedUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: url2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: url2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
