package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/qvmctl/qvm/internal/config"
	"github.com/qvmctl/qvm/internal/disk"
	"github.com/qvmctl/qvm/internal/proc"
	"github.com/qvmctl/qvm/internal/session"
	"github.com/qvmctl/qvm/internal/vm"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

var (
	cfgFile string
	debug   bool

	// toolCfg is loaded before any subcommand runs.
	toolCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "qvm",
	Short: "qvm - QEMU launch profiles and VM lifecycle",
	Long: `qvm keeps QEMU launch profiles for the VM of the current directory
and drives its lifecycle. The VM is named after the directory.

Set up a VM:
  qvm config
  qvm create 20G
  qvm install default ~/isos/debian.iso

Run it:
  qvm start default
  qvm status
  qvm ssh
  qvm stop --wait

Inspect profiles:
  qvm list
  qvm show default`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the string printed by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "VM config file (default is ./qvm.conf, or $QVM_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	toolCfg = cfg

	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(log.InfoLevel)
	if debug || cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Config loaded", "binary", cfg.QEMU.BinaryFor(runtime.GOOS), "img", cfg.QEMU.Img)
	return nil
}

// vmConfigPath resolves the VM config file: --config, then QVM_CONFIG,
// then qvm.conf in cwd.
func vmConfigPath(cwd string) string {
	path := cfgFile
	if path == "" && toolCfg != nil {
		path = toolCfg.ConfigFile
	}
	if path == "" {
		return filepath.Join(cwd, vmconfig.DefaultFile)
	}
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	return path
}

// loadVMConfig loads the VM config for the current directory.
func loadVMConfig() (*vmconfig.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	path := vmConfigPath(cwd)
	cfg, err := vmconfig.Load(path, cwd, runtime.GOOS)
	if err != nil {
		return nil, "", err
	}
	log.Debug("VM config loaded", "path", path, "name", cfg.Settings.Name, "profiles", len(cfg.Profiles()))
	return cfg, cwd, nil
}

// newManager wires a vm.Manager to the host.
func newManager(cmd *cobra.Command) (*vm.Manager, error) {
	vmCfg, cwd, err := loadVMConfig()
	if err != nil {
		return nil, err
	}

	history, err := session.NewStore()
	if err != nil {
		log.Warn("Launch history disabled", "error", err)
	}

	hostOS := runtime.GOOS
	return &vm.Manager{
		Config:  vmCfg,
		Tool:    toolCfg,
		WorkDir: cwd,
		Finder:  proc.NewLocator(proc.NewLister(hostOS), toolCfg.QEMU.BinaryFor(hostOS)),
		Runner:  vm.NewExecRunner(),
		Disk:    disk.NewImager(toolCfg.QEMU.Img, disk.ExecRunner),
		Signal:  unix.Kill,
		IsTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		History: history,
		Out:     cmd.OutOrStdout(),
	}, nil
}
