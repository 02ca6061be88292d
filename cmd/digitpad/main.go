package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/drake/digitpad/config"
	"github.com/drake/digitpad/debug"
	"github.com/drake/digitpad/lua"
	"github.com/drake/digitpad/session"
	"github.com/drake/digitpad/transport"
	"github.com/drake/digitpad/ui/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	port := flag.String("port", cfg.Port, "serial device or tcp://host:port to connect at start")
	baud := flag.Int("baud", cfg.Baud, "serial baud rate")
	exportPath := flag.String("export", cfg.ExportPath, "text export path")
	logFile := flag.String("log", cfg.LogFile, "log file path")
	checksum := flag.Bool("checksum", cfg.Checksum, "append a sum:<n> trailer to sends")
	listPorts := flag.Bool("list-ports", false, "list serial ports and exit")
	flag.Parse()

	cfg.Port = *port
	cfg.Baud = *baud
	cfg.ExportPath = *exportPath
	cfg.LogFile = *logFile
	cfg.Checksum = *checksum

	if *listPorts {
		ports, err := transport.ListPorts()
		if err != nil {
			fmt.Fprintln(os.Stderr, "ports:", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	// The TUI owns the terminal, so logs go to a file.
	logOut, err := openLog(cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log:", err)
		os.Exit(1)
	}
	defer logOut.Close()
	logrus.SetOutput(logOut)
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	logrus.WithFields(logrus.Fields{
		"port":   cfg.Port,
		"baud":   cfg.Baud,
		"export": cfg.ExportPath,
	}).Info("Starting digitpad")

	device := transport.NewPort(transport.AutoOpener(cfg.Baud))
	display := tui.NewBubbleTeaUI()

	sess := session.New(device, display, session.Config{
		Settings:    cfg,
		CoreScripts: lua.CoreScripts,
		UserScripts: flag.Args(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	debug.NewMonitor(ctx, sess).Start()

	if err := sess.Run(); err != nil {
		logrus.WithError(err).Error("UI exited with error")
		fmt.Fprintln(os.Stderr, "UI error:", err)
		os.Exit(1)
	}
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
