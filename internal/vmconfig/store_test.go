package vmconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vmDir creates <tmp>/<name> and returns it with the config path inside.
func vmDir(t *testing.T, name string) (string, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir, filepath.Join(dir, DefaultFile)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir, path := vmDir(t, "testvm")

	cfg, err := Load(path, dir, "linux")
	require.NoError(t, err)

	assert.Equal(t, Defaults(dir, "linux"), cfg.Settings)
	assert.Equal(t, "testvm", cfg.Settings.Name)
	assert.Equal(t, "testvm.qcow2", cfg.Settings.Disk)
	assert.Empty(t, cfg.Profiles())
}

func TestLoadOverridesAndIgnoresUnknownKeys(t *testing.T) {
	dir, path := vmDir(t, "testvm")
	content := `#MAC=52:54:00:12:34:56
MEM=8G
CORES=6
UNKNOWN=whatever
export PORT=2200
DISK=$NAME-root.qcow2
profile small 'qemu-system-x86_64 -name $NAME -m $MEM'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dir, "linux")
	require.NoError(t, err)

	assert.Equal(t, "8G", cfg.Settings.Mem)
	assert.Equal(t, "6", cfg.Settings.Cores)
	assert.Equal(t, "2200", cfg.Settings.Port)
	assert.Equal(t, "testvm-root.qcow2", cfg.Settings.Disk)
	assert.Equal(t, "52:54:00:12:34:56", cfg.Settings.MAC)
	assert.Equal(t, "br0", cfg.Settings.Bridge)

	tmpl, err := cfg.Profile("small")
	require.NoError(t, err)
	assert.Equal(t, "qemu-system-x86_64 -name $NAME -m $MEM", tmpl)
}

func TestLoadDiskFollowsOverriddenName(t *testing.T) {
	dir, path := vmDir(t, "testvm")
	require.NoError(t, os.WriteFile(path, []byte("NAME=other\n"), 0o644))

	cfg, err := Load(path, dir, "linux")
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Settings.Name)
	assert.Equal(t, "other.qcow2", cfg.Settings.Disk)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir, path := vmDir(t, "testvm")
	require.NoError(t, os.WriteFile(path, []byte("profile broken 'unterminated\n"), 0o644))

	_, err := Load(path, dir, "linux")
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoadRejectsProfileWithoutTemplate(t *testing.T) {
	dir, path := vmDir(t, "testvm")
	require.NoError(t, os.WriteFile(path, []byte("profile lonely\n"), 0o644))

	_, err := Load(path, dir, "linux")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile takes a name and a template")
}

func TestGenerateRoundTrip(t *testing.T) {
	for _, hostOS := range []string{"linux", "darwin"} {
		t.Run(hostOS, func(t *testing.T) {
			dir, path := vmDir(t, "testvm")
			require.NoError(t, Generate(path, dir, hostOS, false))

			cfg, err := Load(path, dir, hostOS)
			require.NoError(t, err)

			// Every setting is commented out, so defaults stay in effect.
			assert.Equal(t, Defaults(dir, hostOS), cfg.Settings)

			starters := StarterProfiles(hostOS)
			require.Len(t, cfg.Profiles(), len(starters))
			for name, tmpl := range starters {
				got, err := cfg.Profile(name)
				require.NoError(t, err)
				assert.Equal(t, tmpl, got)
			}
			assert.Contains(t, cfg.Profiles(), "default")
		})
	}
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	dir, path := vmDir(t, "testvm")
	require.NoError(t, os.WriteFile(path, []byte("MEM=1G\n"), 0o644))

	err := Generate(path, dir, "linux", false)
	require.ErrorIs(t, err, ErrAlreadyExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MEM=1G\n", string(data))

	require.NoError(t, Generate(path, dir, "linux", true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#MEM=4G")
}

func TestSetThenLoad(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MEM", "12G"},
		{"NAME", "renamed"},
		{"MEMDIR", "/var/lib/qvm/mem dir"},
		{"BIOS", "/usr/share/edk2/x64/OVMF_CODE.fd"},
		{"MAC", "de:ad:be:ef:00:01"},
		{"IP", "192.168.122.50"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			dir, path := vmDir(t, "testvm")
			require.NoError(t, Generate(path, dir, "linux", false))

			changed, err := Set(path, tt.key, tt.value)
			require.NoError(t, err)
			assert.True(t, changed)

			cfg, err := Load(path, dir, "linux")
			require.NoError(t, err)
			got, ok := cfg.Settings.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestSetRewritesOnlyFirstMatch(t *testing.T) {
	dir, path := vmDir(t, "testvm")
	content := "#MEM=4G\nMEM=6G\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	changed, err := Set(path, "MEM", "2G")
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MEM=2G\nMEM=6G\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = Load(path, dir, "linux")
	require.NoError(t, err)
}

func TestSetMissingLineIsNoop(t *testing.T) {
	_, path := vmDir(t, "testvm")
	content := "MEM=4G\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	changed, err := Set(path, "CORES", "8")
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSetWithoutFile(t *testing.T) {
	_, path := vmDir(t, "testvm")
	_, err := Set(path, "MEM", "8G")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDumpPrintsEveryKeyInOrder(t *testing.T) {
	dir, path := vmDir(t, "testvm")
	cfg, err := Load(path, dir, "linux")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cfg.Dump(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(Keys))
	for i, key := range Keys {
		assert.True(t, strings.HasPrefix(lines[i], key+"="), "line %d: %s", i, lines[i])
	}
	assert.Equal(t, "NAME=testvm", lines[len(lines)-2])
}

func TestProfilesAreSorted(t *testing.T) {
	cfg := New("", Settings{}, map[string]string{
		"zeta":  "z",
		"alpha": "a",
		"mid":   "m",
	})

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, cfg.Profiles())

	templates := cfg.Templates()
	require.Len(t, templates, 3)
	assert.Equal(t, Profile{Name: "alpha", Template: "a"}, templates[0])
	assert.Equal(t, Profile{Name: "zeta", Template: "z"}, templates[2])
}

func TestProfileNotFound(t *testing.T) {
	cfg := New("", Settings{}, nil)
	_, err := cfg.Profile("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
