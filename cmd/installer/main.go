package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/speedwagon-io/speedbot/internal/config"
	"github.com/speedwagon-io/speedbot/internal/install/crontab"
	"github.com/speedwagon-io/speedbot/internal/install/envfile"
	"github.com/speedwagon-io/speedbot/internal/install/privilege"
	"github.com/speedwagon-io/speedbot/internal/install/shellrc"
	"github.com/speedwagon-io/speedbot/internal/lib/logger/sl"
)

func main() {
	botPath := flag.String("bot", filepath.Join(config.ExecutableDir(), "speedbot"), "path to the speedbot binary")
	envPath := flag.String("env-file", "", "path of the .env file to write (default: next to the bot)")
	crontabPath := flag.String("crontab", crontab.DefaultPath, "system crontab to edit")
	schedule := flag.String("schedule", "", "schedule preset 1-5 (prompted when empty)")
	uninstall := flag.Bool("uninstall", false, "remove the scheduled task and exit")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := sl.SetupLogger(*logLevel, sl.FormatText)

	if err := privilege.RequireRoot(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if *envPath == "" {
		*envPath = filepath.Join(filepath.Dir(*botPath), config.DefaultFileName)
	}

	if *uninstall {
		removed, err := crontab.Remove(*crontabPath, *botPath)
		if err != nil {
			log.Error("failed to remove scheduled task", sl.Err(err))
			os.Exit(1)
		}
		log.Info("scheduled task removed", slog.String("crontab", *crontabPath), slog.Int("lines", removed))
		return
	}

	in := bufio.NewReader(os.Stdin)

	fmt.Println("Welcome to the speedtest Telegram bot installer.")

	token := prompt(in, os.Stdout, "Enter your Telegram Bot Token: ", "")
	chatID := prompt(in, os.Stdout, "Enter your Telegram Bot Chat ID: ", "")
	defaultHost, _ := os.Hostname()
	hostName := prompt(in, os.Stdout, fmt.Sprintf("Enter a host name label [%s]: ", defaultHost), defaultHost)

	if token == "" || chatID == "" {
		log.Error("bot token and chat id are required")
		os.Exit(1)
	}

	if err := envfile.Write(*envPath, map[string]string{
		envfile.KeyToken:    token,
		envfile.KeyChatID:   chatID,
		envfile.KeyHostName: hostName,
	}); err != nil {
		log.Error("failed to write env file", sl.Err(err))
	} else {
		log.Info("configuration saved", slog.String("path", *envPath))
	}

	if err := updateShellConfig(log, token, chatID); err != nil {
		log.Error("failed to update shell config", sl.Err(err))
	}

	fmt.Println("\nTo apply the changes immediately, run: source ~/.bashrc or source ~/.zshrc")
	fmt.Println("Alternatively, restart your terminal or shell session.")

	if *schedule == "" {
		fmt.Println("\nPlease choose the frequency for the cron job:")
		for _, p := range crontab.Presets {
			fmt.Printf("%s. %s\n", p.Key, p.Label)
		}
		*schedule = prompt(in, os.Stdout, "\nEnter the number corresponding to your choice: ", "")
	}

	preset, err := crontab.PresetByKey(*schedule)
	if err != nil {
		log.Warn("invalid choice, cron job will not be created", sl.Err(err))
		return
	}

	if err := scheduleTask(log, *crontabPath, *botPath, preset); err != nil {
		log.Error("failed to create cron job", sl.Err(err))
		return
	}
}

func updateShellConfig(log *slog.Logger, token, chatID string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to find home directory: %w", err)
	}

	shell := os.Getenv("SHELL")
	path, supported := shellrc.ConfigFile(shell, home)
	if !supported {
		log.Warn("unsupported shell detected, using .bashrc", slog.String("shell", shell))
	}

	if err := shellrc.AppendExports(path, token, chatID); err != nil {
		return err
	}

	log.Info("environment variables added", slog.String("path", path))
	for _, line := range shellrc.ExportLines(token, chatID) {
		fmt.Println(line)
	}
	return nil
}

// scheduleTask replaces any existing entry for the bot with one using preset.
func scheduleTask(log *slog.Logger, crontabPath, botPath string, preset crontab.Preset) error {
	entry, err := crontab.Entry(preset.Schedule, crontab.DefaultUser, shellrc.Quote(botPath))
	if err != nil {
		return err
	}

	removed, err := crontab.Remove(crontabPath, botPath)
	switch {
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to remove existing scheduled task: %w", err)
	case removed > 0:
		log.Info("replaced existing scheduled task", slog.Int("lines", removed))
	}

	if err := crontab.Install(crontabPath, entry); err != nil {
		return err
	}

	log.Info("cron job created",
		slog.String("schedule", preset.Schedule),
		slog.String("label", preset.Label),
	)
	return nil
}

func prompt(in *bufio.Reader, out io.Writer, question, def string) string {
	fmt.Fprint(out, question)
	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}
