package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AndreOF/whisper-writer/internal/bus"
	"github.com/AndreOF/whisper-writer/internal/daemon"
	"github.com/AndreOF/whisper-writer/internal/tui"
)

func main() {
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "whisperwriter",
	Short: "Hotkey-driven voice dictation",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		pressCmd(),
		releaseCmd(),
		toggleCmd(),
		statusCmd(),
		cancelCmd(),
		versionCmd(),
		stopCmd(),
		configureCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := daemon.New()
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

// send forwards one control byte to the daemon and prints its reply.
func send(cmd byte, action string) error {
	resp, err := bus.SendCommand(cmd)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	fmt.Print(resp)
	return nil
}

func pressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "press",
		Short: "Deliver a hotkey press (activation event)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdPress, "deliver press")
		},
	}
}

func releaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Deliver a hotkey release (deactivation event)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdRelease, "deliver release")
		},
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle recording (alias for press)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdToggle, "toggle recording")
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get the current session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdStatus, "get status")
		},
	}
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the current recording session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdCancel, "cancel session")
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Get protocol version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdVersion, "get version")
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdQuit, "stop daemon")
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunConfiguration()
		},
	}
}
