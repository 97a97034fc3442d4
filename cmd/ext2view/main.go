package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	configpkg "ext2view/internal/config"
	"ext2view/internal/doctor"
	"ext2view/internal/logging"
	"ext2view/internal/remote"
	"ext2view/internal/session"
	themepkg "ext2view/internal/theme"
	"ext2view/internal/tui"
	"ext2view/internal/version"
)

var errRemoteFailure = errors.New("command reported failure")

type commandBackend interface {
	ChangeDirectory(ctx context.Context, target string) (remote.Result, error)
	Execute(ctx context.Context, name string, args []string) (remote.Result, error)
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		if err := runApp(ctx, os.Args[1:]); err != nil {
			fatal(err)
		}
		return
	}

	switch os.Args[1] {
	case "doctor":
		if err := runDoctor(ctx, os.Args[2:], os.Stdout); err != nil {
			fatal(err)
		}
	case "version":
		fmt.Println(version.String())
	case "exec":
		if err := runExecCommand(ctx, os.Args[2:], os.Stdout); err != nil {
			if errors.Is(err, errRemoteFailure) {
				os.Exit(1)
			}
			fatal(err)
		}
	case "theme":
		if err := runTheme(os.Args[2:], os.Stdout); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
}

// loadSettings reads config and environment, applies --url and starts the
// file logger.
func loadSettings(name string, args []string) (configpkg.Config, []string, error) {
	cfg, err := configpkg.LoadWithEnv()
	if err != nil {
		return configpkg.Config{}, nil, err
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	url := fs.String("url", "", "Backend base URL (overrides config and EXT2VIEW_BACKEND_URL)")
	if err := fs.Parse(args); err != nil {
		return configpkg.Config{}, nil, err
	}
	if *url != "" {
		cfg.Backend.URL = *url
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		return configpkg.Config{}, nil, err
	}
	if err := logging.Init(logging.Config{Level: cfg.Log.Level, Path: logPath}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	return cfg, fs.Args(), nil
}

func newClient(cfg configpkg.Config) *remote.Client {
	return remote.New(remote.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.BackendTimeout()})
}

func runApp(ctx context.Context, args []string) error {
	cfg, _, err := loadSettings("ext2view", args)
	if err != nil {
		return err
	}
	defer logging.Sync()

	palette, themeID, err := themepkg.ActivePalette(cfg)
	if err != nil {
		logging.Warn("theme load failed, using default", zap.String("theme", cfg.Theme.Active), zap.Error(err))
	}
	client := newClient(cfg)
	logging.Info("starting", zap.String("version", version.String()), zap.String("backend", client.BaseURL()), zap.String("theme", themeID))

	return tui.RunApp(tui.AppOptions{
		Context:     ctx,
		Backend:     client,
		BackendURL:  client.BaseURL(),
		Capacity:    cfg.Terminal.Capacity,
		DoubleClick: cfg.DoubleClickWindow(),
		Version:     version.String(),
		Theme:       tui.UITheme{PaletteResolved: palette},
	})
}

func runDoctor(ctx context.Context, args []string, out io.Writer) error {
	cfg, _, err := loadSettings("doctor", args)
	if err != nil {
		return err
	}
	defer logging.Sync()
	client := newClient(cfg)
	report, err := doctor.Check(ctx, client.BaseURL(), client)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "doctor: ok (%s, cwd %s, %d entries)\n", report.URL, report.Path, report.Entries)
	return nil
}

func runExecCommand(ctx context.Context, args []string, out io.Writer) error {
	cfg, rest, err := loadSettings("exec", args)
	if err != nil {
		return err
	}
	defer logging.Sync()
	return runExec(ctx, newClient(cfg), rest, out)
}

// runExec sends one command to the backend, routed the same way the
// interactive terminal routes it. Local-only commands have nothing to do here.
func runExec(ctx context.Context, backend commandBackend, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: ext2view exec <command> [args...]")
	}
	cmd := session.NewCommand(args[0], args[1:]...)
	var (
		res remote.Result
		err error
	)
	switch cmd.Route() {
	case session.RouteLocal:
		return fmt.Errorf("%s is only available in the interactive terminal", cmd.Display())
	case session.RouteChangeDir:
		res, err = backend.ChangeDirectory(ctx, cmd.Arg(0))
	default:
		res, err = backend.Execute(ctx, cmd.Name(), cmd.Args())
	}
	if err != nil {
		return err
	}
	if res.Output != "" {
		fmt.Fprintln(out, strings.TrimSuffix(res.Output, "\n"))
	}
	if !res.Success {
		return errRemoteFailure
	}
	return nil
}

func usage() {
	fmt.Println("ext2view")
	fmt.Println("Runs the interactive TUI when no command is provided.")
	fmt.Println("ext2view [--url URL] | ext2view <command>")
	fmt.Println("Commands: exec, theme, doctor, version")
}

func runTheme(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("theme subcommand required: list, current, apply, install, uninstall")
	}
	cfg, err := configpkg.Load()
	if err != nil {
		return err
	}
	switch args[0] {
	case "list":
		ids, err := themepkg.ListLocalThemeIDs()
		if err != nil {
			return err
		}
		active := cfg.Theme.Active
		fmt.Fprintf(out, "local themes (active: %s):\n", active)
		for _, id := range append([]string{themepkg.DefaultID}, ids...) {
			prefix := "-"
			if id == active {
				prefix = "*"
			}
			fmt.Fprintf(out, "%s %s\n", prefix, id)
		}
		return nil
	case "current":
		_, id, err := themepkg.LoadActivePaletteHex(cfg)
		if err != nil {
			fmt.Fprintf(out, "%s (configured %q failed to load: %v)\n", id, cfg.Theme.Active, err)
			return nil
		}
		fmt.Fprintln(out, id)
		return nil
	case "apply":
		id, err := themeArg(args, "apply <theme-id|default>")
		if err != nil {
			return err
		}
		if id != themepkg.DefaultID {
			probe := cfg
			probe.Theme.Active = id
			if _, _, err := themepkg.LoadActivePaletteHex(probe); err != nil {
				return fmt.Errorf("theme %q is not installed or invalid: %w", id, err)
			}
		}
		cfg.Theme.Active = id
		if err := configpkg.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "applied theme: %s\n", id)
		return nil
	case "install":
		path, err := themeArg(args, "install <theme-file.json>")
		if err != nil {
			return err
		}
		tf, err := themepkg.InstallFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "installed theme: %s (%s)\n", tf.ID, tf.Name)
		return nil
	case "uninstall":
		id, err := themeArg(args, "uninstall <theme-id>")
		if err != nil {
			return err
		}
		if id == themepkg.DefaultID {
			return errors.New("the default theme cannot be uninstalled")
		}
		if err := themepkg.RemoveLocalTheme(id); err != nil {
			return err
		}
		if cfg.Theme.Active == id {
			cfg.Theme.Active = themepkg.DefaultID
			if err := configpkg.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "uninstalled theme: %s (active theme reset to default)\n", id)
			return nil
		}
		fmt.Fprintf(out, "uninstalled theme: %s\n", id)
		return nil
	default:
		return fmt.Errorf("unknown theme subcommand %q", args[0])
	}
}

func themeArg(args []string, form string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("usage: ext2view theme %s", form)
	}
	v := strings.TrimSpace(args[1])
	if v == "" {
		return "", errors.New("theme id is required")
	}
	return v, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
