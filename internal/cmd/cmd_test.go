package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"syscall"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qvmctl/qvm/internal/vm"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

const testVMName = "qvm-cmd-testvm"

// execute runs the root command with args, starting from default flag
// values, and returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile, debug = "", false
	configForce, diskDryRun, launchDryRun, stopWait, pruneAll = false, false, false, false, false
	killSignal, outputFormat = "TERM", "table"

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// setupWorkDir moves the test into an empty VM directory with its own
// home directory.
func setupWorkDir(t *testing.T) string {
	t.Helper()

	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QVM_CONFIG", "")
	t.Setenv("QVM_DEBUG", "")

	dir := filepath.Join(t.TempDir(), testVMName)
	require.NoError(t, os.Mkdir(dir, 0o755))
	chdir(t, dir)
	return dir
}

func TestConfigAndList(t *testing.T) {
	dir := setupWorkDir(t)

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+filepath.Join(dir, "qvm.conf")+"\n", out)

	_, err = execute(t, "config")
	assert.ErrorIs(t, err, vm.ErrAlreadyExists)

	_, err = execute(t, "config", "--force")
	require.NoError(t, err)

	names := lo.Keys(vmconfig.StarterProfiles(runtime.GOOS))
	slices.Sort(names)

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(names, "\n")+"\n", out)
}

func TestShow(t *testing.T) {
	setupWorkDir(t)
	_, err := execute(t, "config")
	require.NoError(t, err)

	out, err := execute(t, "show", "default")
	require.NoError(t, err)
	assert.Equal(t, vmconfig.StarterProfiles(runtime.GOOS)["default"]+"\n", out)

	out, err = execute(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default:\n  ")

	_, err = execute(t, "show", "missing")
	assert.ErrorIs(t, err, vm.ErrProfileNotFound)
}

func TestListWithoutConfig(t *testing.T) {
	setupWorkDir(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = execute(t, "list", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, err = execute(t, "list", "-o", "xml")
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	setupWorkDir(t)
	_, err := execute(t, "config")
	require.NoError(t, err)

	out, err := execute(t, "set", "MEM", "8G")
	require.NoError(t, err)
	assert.Equal(t, "MEM=8G\n", out)

	out, err = execute(t, "set")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, len(vmconfig.Keys))
	assert.Contains(t, lines, "MEM=8G")
	assert.Contains(t, lines, "NAME="+testVMName)
	assert.Contains(t, lines, "DISK="+testVMName+".qcow2")

	// No FOO line in the file: nothing changes.
	out, err = execute(t, "set", "FOO", "bar")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSetWithoutConfigFile(t *testing.T) {
	setupWorkDir(t)

	_, err := execute(t, "set", "MEM", "8G")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCreateDryRun(t *testing.T) {
	setupWorkDir(t)

	out, err := execute(t, "create", "12G", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "qemu-img create -f qcow2 "+testVMName+".qcow2 12G\n", out)
	assert.NoFileExists(t, testVMName+".qcow2")

	_, err = execute(t, "create")
	assert.ErrorIs(t, err, vm.ErrMissingArgument)
}

func TestStartDryRun(t *testing.T) {
	setupWorkDir(t)
	_, err := execute(t, "config")
	require.NoError(t, err)

	out, err := execute(t, "start", "default", "--dry-run")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "qemu-system-"), out)
	assert.Contains(t, out, "-name "+testVMName)
	assert.NotContains(t, out, "$")

	out, err = execute(t, "install", "default", "/isos/debian.iso", "--dry-run")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "-cdrom /isos/debian.iso -boot d -no-reboot\n"), out)

	_, err = execute(t, "start", "missing")
	assert.ErrorIs(t, err, vm.ErrProfileNotFound)
}

func TestNotRunning(t *testing.T) {
	setupWorkDir(t)

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Equal(t, "Not Running\n", out)

	out, err = execute(t, "status", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"running": false`)

	out, err = execute(t, "pid")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, "kill")
	assert.ErrorIs(t, err, vm.ErrNotRunning)
}

func TestHistoryEmpty(t *testing.T) {
	setupWorkDir(t)

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Equal(t, "No launches recorded\n", out)

	out, err = execute(t, "history", "prune", "--all")
	require.NoError(t, err)
	assert.Equal(t, "No launches to remove.\n", out)
}

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in      string
		want    syscall.Signal
		wantErr bool
	}{
		{"TERM", syscall.SIGTERM, false},
		{"SIGKILL", syscall.SIGKILL, false},
		{"int", syscall.SIGINT, false},
		{"9", syscall.SIGKILL, false},
		{"BOGUS", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSignal(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVMConfigPath(t *testing.T) {
	setupWorkDir(t)
	t.Cleanup(func() { cfgFile, toolCfg = "", nil })

	_, err := execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/vms/a", "qvm.conf"), vmConfigPath("/vms/a"))

	toolCfg.ConfigFile = "/etc/qvm/env.conf"
	assert.Equal(t, "/etc/qvm/env.conf", vmConfigPath("/vms/a"))

	cfgFile = "/tmp/flag.conf"
	assert.Equal(t, "/tmp/flag.conf", vmConfigPath("/vms/a"))
}
