package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"ballooner/internal/app"
	"ballooner/internal/config"
	"ballooner/internal/gdt"
	"ballooner/internal/logger"

	"github.com/spf13/cobra"
)

var version = "dev"

var cfgPath string

func main() {
	defaultCfg := os.Getenv("BALLOONER_CONFIG")
	if defaultCfg == "" {
		defaultCfg = "configs/config.yaml"
	}

	rootCmd := &cobra.Command{
		Use:           "ballooner",
		Short:         "Drawing ballooning and GD&T click analysis service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(cropCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP session service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			closers, err := setupLogging(cfg.App)
			if err != nil {
				return err
			}
			defer closeAll(closers)
			logger.Infof("config loaded (env=%s, path=%s)", cfg.App.Env, cfgPath)

			a, err := app.NewApp(cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			if !noWatch {
				w, err := config.NewWatcher(cfgPath, cfg)
				if err != nil {
					logger.Warnf("config hot reload disabled: %v", err)
				} else {
					a.Watch(w)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "disable config hot reload")
	return cmd
}

func cropCmd() *cobra.Command {
	var (
		x, y          int
		width, height int
		out           string
	)
	cmd := &cobra.Command{
		Use:   "crop [page-image]",
		Short: "Cut the GD&T analysis window around a point and write it as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			img, _, err := gdt.DecodePage(data)
			if err != nil {
				return err
			}
			png, win, err := gdt.NewCropper(width, height).CropPNG(img, x, y)
			if err != nil {
				return err
			}
			if out == "" {
				out = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])) + "_crop.png"
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (window %v)\n", out, win)
			return nil
		},
	}
	cmd.Flags().IntVar(&x, "x", 0, "click x in page pixels")
	cmd.Flags().IntVar(&y, "y", 0, "click y in page pixels")
	cmd.Flags().IntVar(&width, "width", gdt.DefaultCropWidth, "crop width")
	cmd.Flags().IntVar(&height, "height", gdt.DefaultCropHeight, "crop height")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG path")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ballooner", version)
		},
	}
}

func setupLogging(cfg config.AppConfig) ([]io.Closer, error) {
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormat(cfg.LogFormat)
	var closers []io.Closer
	logFile, err := openLogFile(cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		mw := io.MultiWriter(os.Stdout, logFile)
		log.SetOutput(mw)
		logger.SetOutput(mw)
		closers = append(closers, logFile)
	}
	logger.SetBackendWriter(nil)
	backendFile, err := openLogFile(cfg.BackendLog)
	if err != nil {
		log.SetOutput(os.Stdout)
		logger.SetOutput(os.Stdout)
		closeAll(closers)
		return nil, fmt.Errorf("open backend log: %w", err)
	}
	if backendFile != nil {
		logger.SetBackendWriter(backendFile)
		logger.EnableBackendPayloadDump(cfg.BackendDump)
		closers = append(closers, backendFile)
	}
	return closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func openLogFile(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
