// Command mcp serves the question-answering pipeline as an MCP tool over stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/PdfQA/internal/bootstrap"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "v1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(2)
	}
	// stdout is the MCP transport
	logger_i.InitWriter(os.Stderr, settings.Logging.Level, true)
	logger := logger_i.NewLogger("mcp")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := bootstrap.NewService(ctx, settings)
	if err != nil {
		logger.Error("Could not build the pipeline", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := mcp.NewServer(&mcp.Implementation{Name: "pdfqa", Version: version}, nil)
	tool := &askTool{service: service, timeout: settings.Workers.JobTimeout, logger: logger}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question using only the text of the given local PDF, DOCX, ODT, RTF or TXT files.",
	}, tool.handle)

	logger.Info("MCP server listening on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
