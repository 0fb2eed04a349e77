// Command ask answers one question about local documents and exits.
//
//	ask -q "What was the revenue in 2023?" report.pdf notes.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/akolanti/PdfQA/internal/adapter/utils"
	"github.com/akolanti/PdfQA/internal/bootstrap"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

func main() {
	os.Exit(run())
}

func run() int {
	question := flag.String("q", "", "question to answer")
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	showContext := flag.Bool("context", false, "also print the retrieved passages")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		return 2
	}
	// stdout carries the answer only
	logger_i.InitWriter(os.Stderr, settings.Logging.Level, settings.Logging.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := bootstrap.NewService(ctx, settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not start:", err)
		return 1
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, settings.Workers.JobTimeout)
	defer cancel()

	files := filesFrom(flag.Args())
	traceId := utils.GetNewUUID()
	ctx = context.WithValue(ctx, config.TRACE_ID_KEY, traceId)
	result := service.ProcessRequest(ctx, jobModel.NewJob(traceId, traceId, *question, files))

	if result.CurrentStep != jobModel.Done {
		fmt.Fprintf(os.Stderr, "%s (%s, step %s)\n", result.Error.Message, result.Error.Kind, result.FailedStep)
		return 1
	}
	fmt.Println(result.JobPayload.Answer)
	if *showContext {
		for _, c := range result.JobPayload.Context {
			fmt.Printf("\n--- chunk %d [%d:%d] score %.3f\n%s\n", c.Chunk.Index, c.Chunk.Start, c.Chunk.End, c.Score, c.Chunk.Text)
		}
	}
	return 0
}

// filesFrom wraps the paths as caller-owned sources, never deleted.
func filesFrom(paths []string) []commonModels.SourceFile {
	files := make([]commonModels.SourceFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, commonModels.SourceFile{Name: filepath.Base(p), Path: p})
	}
	return files
}
