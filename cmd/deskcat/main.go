package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pawsd/deskcat/internal/config"
	"github.com/pawsd/deskcat/internal/daemon"
	"github.com/pawsd/deskcat/internal/device"
	"github.com/pawsd/deskcat/internal/events"
	"github.com/pawsd/deskcat/internal/settings"
	"github.com/pawsd/deskcat/internal/shutdown"
	"github.com/pawsd/deskcat/internal/sprites"
	"github.com/pawsd/deskcat/internal/tui"
)

var version = "dev"

// getDaemonClient creates a daemon client by finding daemon.json in the project.
func getDaemonClient() (*daemon.Client, error) {
	info, err := daemon.FindDaemonInfo("")
	if err != nil {
		return nil, fmt.Errorf("daemon not running: %w", err)
	}
	return daemon.NewClient(info.SocketPath), nil
}

// printEventLine prints a single JSONL event line in a human-readable format.
func printEventLine(line string) {
	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		fmt.Println(line)
		return
	}

	timestamp := ""
	if ts, ok := event["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			timestamp = t.Format("15:04:05")
		} else {
			timestamp = ts
		}
	}

	eventType := ""
	if t, ok := event["type"].(string); ok {
		eventType = t
	}

	var detail string
	switch eventType {
	case "command.received":
		if cmd, ok := event["command"].(string); ok {
			detail = cmd
			if arg, ok := event["arg"].(string); ok && arg != "" {
				detail += " " + arg
			}
		}
	case "anim.state":
		from, _ := event["from"].(string)
		to, _ := event["to"].(string)
		detail = fmt.Sprintf("%s -> %s", from, to)
	case "stats.updated":
		cpu, _ := event["cpu"].(float64)
		ram, _ := event["ram"].(float64)
		wpm, _ := event["wpm"].(float64)
		detail = fmt.Sprintf("cpu=%d ram=%d wpm=%d", int(cpu), int(ram), int(wpm))
	case "settings.updated":
		field, _ := event["field"].(string)
		value, _ := event["value"].(string)
		detail = fmt.Sprintf("%s=%s", field, value)
	case "error":
		if msg, ok := event["message"].(string); ok {
			detail = msg
		}
	default:
		if msg, ok := event["message"].(string); ok {
			detail = msg
		}
	}

	if detail != "" {
		fmt.Printf("[%s] %s: %s\n", timestamp, eventType, detail)
	} else {
		fmt.Printf("[%s] %s\n", timestamp, eventType)
	}
}

// resolveEventLogPath finds the event log, preferring a running daemon's
// recorded path over config defaults.
func resolveEventLogPath() string {
	if info, err := daemon.FindDaemonInfo(""); err == nil && info.EventLog != "" {
		return info.EventLog
	}

	path := config.Default().Paths.EventLog
	if viper.GetString(FlagEventLog) != "" {
		path = viper.GetString(FlagEventLog)
	}
	projectRoot := daemon.FindProjectRoot("")
	resolved, err := daemon.ResolvePaths(config.PathsConfig{EventLog: path}, projectRoot)
	if err != nil {
		return path
	}
	return resolved.EventLog
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	viper.SetEnvPrefix("DESKCAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "deskcat",
		Short: "A desk companion cat that reacts to your typing",
		Long: `deskcat is a software rendition of a bongo-cat desk companion device.

It runs an animation device loop that idles, sleeps, types along with you,
and celebrates streaks. Host tools feed it typing speed, system stats, and
clock updates over a unix socket, and the TUI plays the role of the LCD.`,
		SilenceUsage: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .deskcat/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Log file path")
	rootCmd.PersistentFlags().String(FlagEventLog, "", "Event log (JSONL) path")
	rootCmd.PersistentFlags().String(FlagSocketPath, "", "Unix socket path for daemon control")

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("deskcat %s\n", version)
		},
	}

	// Start command
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the deskcat device",
		Long: `Start the animation device loop.

On a TTY the cat is rendered in a terminal UI. Use --daemon to run headless
in the background; host tools then drive it over the unix socket.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			daemonMode := viper.GetBool(FlagDaemon)

			// Determine TUI mode: explicit flag > auto-detect from TTY
			tuiEnabled := viper.GetBool(FlagTUI)
			if !cmd.Flags().Changed(FlagTUI) && !daemonMode {
				tuiEnabled = term.IsTerminal(int(os.Stdout.Fd()))
			}

			if tuiEnabled && daemonMode {
				return fmt.Errorf("--tui and --daemon flags are incompatible")
			}

			if viper.GetBool(FlagVerbose) {
				logLevel.Set(slog.LevelDebug)
				logger.Debug("verbose logging enabled")
			}

			// Load config from files with defaults
			cfg, err := config.LoadConfig(viper.GetViper())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Apply CLI flag overrides (only if explicitly set)
			if cmd.Flags().Changed(FlagLogFile) {
				cfg.Paths.Log = viper.GetString(FlagLogFile)
			}
			if cmd.Flags().Changed(FlagEventLog) {
				cfg.Paths.EventLog = viper.GetString(FlagEventLog)
			}
			if cmd.Flags().Changed(FlagSocketPath) {
				cfg.Paths.Socket = viper.GetString(FlagSocketPath)
			}

			// Find project root for path resolution
			projectRoot := daemon.FindProjectRoot("")

			cfg.Paths, err = daemon.ResolvePaths(cfg.Paths, projectRoot)
			if err != nil {
				return fmt.Errorf("resolve paths: %w", err)
			}

			// Check if a device is already running
			if client := daemon.NewClient(cfg.Paths.Socket); client.IsRunning() {
				return fmt.Errorf("deskcat already running (socket: %s)", cfg.Paths.Socket)
			}

			if daemonMode {
				// Daemonize: fork and let parent exit
				shouldExit, _, err := daemon.Daemonize(cfg)
				if err != nil {
					return fmt.Errorf("daemonize: %w", err)
				}
				if shouldExit {
					return nil
				}
				// Child continues below
			}

			// Ensure .deskcat directory exists
			infoPath := daemon.DaemonInfoPath(projectRoot)
			if err := os.MkdirAll(infoPath[:len(infoPath)-len("/daemon.json")], 0755); err != nil {
				return fmt.Errorf("create .deskcat directory: %w", err)
			}

			// Lock the pid file, cleaning up leftovers from a crash first
			pidFile := daemon.NewPIDFile(cfg.Paths.PID)
			pidFile.CleanupStale(cfg.Paths.Socket)
			if err := pidFile.Write(); err != nil {
				return err
			}
			defer func() { _ = pidFile.Remove() }()

			logger.Info("deskcat starting",
				"version", version,
				"event_log", cfg.Paths.EventLog,
				"settings", cfg.Paths.Settings,
				"daemon_mode", daemonMode,
			)

			// Write daemon info for CLI discovery
			daemonInfo := &daemon.DaemonInfo{
				SocketPath: cfg.Paths.Socket,
				PIDPath:    cfg.Paths.PID,
				LogPath:    cfg.Paths.Log,
				EventLog:   cfg.Paths.EventLog,
				StartTime:  time.Now(),
				PID:        os.Getpid(),
			}
			if err := daemon.WriteDaemonInfo(infoPath, daemonInfo); err != nil {
				logger.Warn("failed to write daemon info", "error", err)
			}
			defer func() { _ = daemon.RemoveDaemonInfo(infoPath) }()

			// Load persisted settings
			store := settings.NewStore(cfg.Paths.Settings)
			if err := store.Load(); err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if cmd.Flags().Changed(FlagSleepTimeout) {
				if err := store.SetSleepTimeout(viper.GetInt(FlagSleepTimeout)); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed(FlagSensitivity) {
				if err := store.SetSensitivity(viper.GetFloat64(FlagSensitivity)); err != nil {
					return err
				}
			}

			// Create event router and the JSONL log sink
			router := events.NewRouter(events.DefaultBufferSize)

			logSink := events.NewLogSink(cfg.Paths.EventLog)
			ctx := cmd.Context()
			sinkCtx, sinkCancel := context.WithCancel(ctx)
			defer sinkCancel()

			if err := logSink.Start(sinkCtx, router.Subscribe()); err != nil {
				return fmt.Errorf("start event log: %w", err)
			}
			defer func() { _ = logSink.Stop() }()

			// TUI mode: redirect logging to a file before creating the device
			devLogger := logger
			var tuiLogResult *TUILoggerResult
			if tuiEnabled {
				tuiLogResult, err = SetupTUILogger(filepath.Dir(cfg.Paths.Log), logLevel, cfg.LogRotation)
				if err != nil {
					return err
				}
				defer func() { _ = tuiLogResult.Close() }()
				devLogger = tuiLogResult.Logger
				slog.SetDefault(devLogger)
			}

			// Create the device and its RPC surface
			dev := device.New(cfg, store, router, devLogger)
			dmn := daemon.New(cfg, dev, store, devLogger)

			// A remote shutdown closes the router, which ends the TUI's
			// event stream and with it the program.
			dmn.OnShutdown(router.Close)

			// Start daemon socket server in background; both TUI and
			// headless modes accept RPC.
			daemonCtx, daemonCancel := context.WithCancel(ctx)
			defer daemonCancel()
			daemonDone := make(chan struct{})
			go func() {
				defer close(daemonDone)
				if err := dmn.Start(daemonCtx); err != nil {
					devLogger.Error("daemon server error", "error", err)
				}
			}()

			if tuiEnabled {
				atlas, err := sprites.Load()
				if err != nil {
					return fmt.Errorf("load sprites: %w", err)
				}

				tuiEvents := router.SubscribeBuffered(1000)
				defer router.Unsubscribe(tuiEvents)

				tuiApp := tui.New(dev, store, atlas, tuiEvents,
					tui.WithOnPause(dev.Pause),
					tui.WithOnResume(dev.Resume),
					tui.WithOnLabels(func(showClock, showStats bool) {
						store.SetShowClock(showClock)
						store.SetShowStats(showStats)
					}),
					tui.WithOnQuit(dev.Stop),
				)

				// Run device in background, TUI in foreground
				devDone := make(chan error, 1)
				go func() {
					devDone <- dev.Run(ctx)
				}()

				tuiErr := tuiApp.Run()

				dev.Stop()
				<-devDone
				daemonCancel()
				<-daemonDone
				router.Close()

				return tuiErr
			}

			// Headless mode: run under signal-driven shutdown
			err = shutdown.Run(
				ctx,
				devLogger,
				10*time.Second,
				func(runCtx context.Context) error {
					return dev.Run(runCtx)
				},
				func(stopCtx context.Context) error {
					dev.Stop()
					daemonCancel()
					select {
					case <-daemonDone:
					case <-stopCtx.Done():
					}
					return nil
				},
			)

			router.Close()
			return err
		},
	}

	startCmd.Flags().Bool(FlagDaemon, false, "Run as a background daemon")
	startCmd.Flags().Bool(FlagTUI, false, "Enable terminal UI")
	startCmd.Flags().Int(FlagSleepTimeout, 0, "Sleep timeout in minutes (1-60)")
	startCmd.Flags().Float64(FlagSensitivity, 0, "Typing sensitivity multiplier (0.1-5.0)")

	startCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	// Status command
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show device status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}

			status, err := client.Status()
			if err != nil {
				return err
			}

			if viper.GetBool(FlagJSON) {
				data, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal status: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("State: %s\n", status.StateName)
			if status.Streak {
				fmt.Println("Streak: active")
			}
			if status.Paused {
				fmt.Println("Paused: yes")
			}
			if status.HostControl {
				fmt.Println("Control: host")
			} else {
				fmt.Println("Control: auto idle")
			}
			if status.Clock != "" {
				fmt.Printf("Clock: %s\n", status.Clock)
			}
			fmt.Printf("Stats: cpu %d%%  ram %d%%  wpm %d\n", status.CPU, status.RAM, status.WPM)
			fmt.Printf("Uptime: %s\n", status.Uptime)
			fmt.Printf("PID: %d\n", status.PID)
			return nil
		},
	}
	statusCmd.Flags().Bool(FlagJSON, false, "Output status as JSON")
	_ = viper.BindPFlag(FlagJSON, statusCmd.Flags().Lookup(FlagJSON))

	// Ping command
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the device is responding",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			if err := client.Ping(); err != nil {
				return err
			}
			fmt.Println("pong")
			return nil
		},
	}

	// Pause command
	pauseCmd := &cobra.Command{
		Use:   "pause",
		Short: "Freeze the animation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			if err := client.Pause(); err != nil {
				return err
			}
			fmt.Println("Animation paused")
			return nil
		},
	}

	// Resume command
	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Unfreeze the animation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			if err := client.Resume(); err != nil {
				return err
			}
			fmt.Println("Animation resumed")
			return nil
		},
	}

	// Stop command
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running device",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			if err := client.Shutdown(); err != nil {
				return err
			}
			fmt.Println("Stop requested")
			return nil
		},
	}

	// Send command group: the host side of the wire protocol
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send host updates to the device",
	}

	sendSpeedCmd := &cobra.Command{
		Use:   "speed <keys-per-minute>",
		Short: "Report typing speed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speed, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid speed %q", args[0])
			}
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.Speed(speed)
		},
	}

	sendStopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Report that typing stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.StopTyping()
		},
	}

	sendIdleCmd := &cobra.Command{
		Use:   "idle",
		Short: "Hand idle progression back to the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.StartIdle()
		},
	}

	sendStreakCmd := &cobra.Command{
		Use:   "streak <on|off>",
		Short: "Force streak mode on or off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch args[0] {
			case "on":
				on = true
			case "off":
				on = false
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.Streak(on)
		},
	}

	sendStatsCmd := &cobra.Command{
		Use:   "stats <cpu> <ram> <wpm>",
		Short: "Report system stats percentages and typing speed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals := make([]int, 3)
			for i, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid value %q", arg)
				}
				vals[i] = v
			}
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.Stats(vals[0], vals[1], vals[2])
		},
	}

	sendClockCmd := &cobra.Command{
		Use:   "clock <HH:MM>",
		Short: "Push the clock display string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.Clock(args[0])
		},
	}

	sendAnimCmd := &cobra.Command{
		Use:   "anim <state>",
		Short: "Force a named animation state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.Anim(args[0])
		},
	}

	sendSensitivityCmd := &cobra.Command{
		Use:   "sensitivity <value>",
		Short: "Set the typing sensitivity multiplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid sensitivity %q", args[0])
			}
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.Sensitivity(v)
		},
	}

	sendSleepTimeoutCmd := &cobra.Command{
		Use:   "sleep-timeout <minutes>",
		Short: "Set the sleep timeout in minutes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid minutes %q", args[0])
			}
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			return client.SleepTimeout(minutes)
		},
	}

	sendRawCmd := &cobra.Command{
		Use:   "raw <line>",
		Short: "Send one raw wire-protocol line",
		Long: `Send a raw device command exactly as a host program would write it to
the serial port, for example SPEED:120 or STATS:CPU:45,RAM:67,WPM:23.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			reply, err := client.Command(args[0])
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		},
	}

	sendCmd.AddCommand(sendSpeedCmd, sendStopCmd, sendIdleCmd, sendStreakCmd,
		sendStatsCmd, sendClockCmd, sendAnimCmd, sendSensitivityCmd,
		sendSleepTimeoutCmd, sendRawCmd)

	// Settings command group
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persisted device settings",
	}

	settingsShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			s, err := client.GetSettings()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal settings: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}

	settingsSaveCmd := &cobra.Command{
		Use:   "save",
		Short: "Persist current settings to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			if err := client.SaveSettings(); err != nil {
				return err
			}
			fmt.Println("Settings saved")
			return nil
		},
	}

	settingsResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore factory settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			if err := client.ResetSettings(); err != nil {
				return err
			}
			fmt.Println("Settings reset to defaults")
			return nil
		},
	}

	settingsCmd.AddCommand(settingsShowCmd, settingsSaveCmd, settingsResetCmd)

	// Events command
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "View recent device events",
		RunE: func(cmd *cobra.Command, args []string) error {
			logPath := resolveEventLogPath()
			reader := events.NewLogReader(logPath)

			if viper.GetBool(FlagFollow) {
				fmt.Println("Following events (Ctrl+C to stop)...")
				err := reader.Follow(cmd.Context(), printEventLine)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			lines, err := reader.Tail(viper.GetInt(FlagCount))
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("No events yet (log file does not exist)")
					return nil
				}
				return err
			}
			if len(lines) == 0 {
				fmt.Println("No events yet")
				return nil
			}
			for _, line := range lines {
				printEventLine(line)
			}
			return nil
		},
	}

	eventsCmd.Flags().Bool(FlagFollow, false, "Follow event stream (like tail -f)")
	eventsCmd.Flags().Int(FlagCount, 20, "Number of recent events to show")
	eventsCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	// Register all commands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(eventsCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
