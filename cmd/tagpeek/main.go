package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"tagpeek/internal/config"
	"tagpeek/internal/lsp"
)

func main() {
	configPath := flag.String("config", "", "path to the tagpeek config file")
	indexPath := flag.String("index", "", "path to the workspace tag index database")
	flag.Parse()

	// Set up logging
	commonlog.Configure(1, nil)

	stateDir := filepath.Join(os.TempDir(), "tagpeek")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		log.Fatalf("Failed to create state directory: %v", err)
	}

	logFile, err := os.OpenFile(
		filepath.Join(stateDir, "tagpeek.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	multiWriter := io.MultiWriter(os.Stderr, logFile)
	log.SetOutput(multiWriter)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Println("Starting tagpeek LSP server...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *indexPath == "" {
		*indexPath = filepath.Join(stateDir, "index.db")
	}

	server, err := lsp.NewServer(cfg, *indexPath)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.RunStdio(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
