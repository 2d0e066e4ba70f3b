package idf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIDF writes a stand-in for idf.py that echoes its arguments and exits
// with $FAKE_IDF_EXIT.
func fakeIDF(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell runner requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "idf.py")
	script := "#!/bin/sh\necho \"args: $*\"\necho \"to stderr\" 1>&2\nexit ${FAKE_IDF_EXIT:-0}\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestActionArgv(t *testing.T) {
	assert.Equal(t, []string{"build"}, Build.Argv())
	assert.Equal(t, []string{"flash"}, Flash.Argv())
	assert.Equal(t, []string{"set-target", "esp32s3"}, SetTarget("esp32s3").Argv())
	assert.Equal(t, "set-target esp32s3", SetTarget("esp32s3").String())
}

func TestToolCommand(t *testing.T) {
	tool := Tool{ExportScript: "/opt/esp/esp-idf/export.sh"}
	got := tool.Command("/srv/ej/boards/esp32s3", SetTarget("esp32s3"))
	assert.Equal(t, ". /opt/esp/esp-idf/export.sh && idf.py -C /srv/ej/boards/esp32s3 set-target esp32s3", got)

	got = Tool{IDF: "idf.py"}.Command("/path with space/it's", Build)
	assert.Equal(t, `idf.py -C '/path with space/it'\''s' build`, got)
}

func TestShellRunnerSuccessStreamsOutput(t *testing.T) {
	r := NewShellRunner(Tool{Shell: "sh", IDF: fakeIDF(t)})
	var lines []string
	r.OnLine = func(line string) { lines = append(lines, line) }

	out, err := r.Run(context.Background(), "/work/esp32s3", SetTarget("esp32s3"))
	require.NoError(t, err)
	assert.True(t, out.Success())
	assert.Equal(t, SetTarget("esp32s3"), out.Action)
	assert.Contains(t, lines, "args: -C /work/esp32s3 set-target esp32s3")
	assert.Contains(t, lines, "to stderr")
}

func TestShellRunnerNonZeroExitIsNotAnError(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FAKE_IDF_EXIT=3\n"), 0o644))

	r := NewShellRunner(Tool{Shell: "sh", IDF: fakeIDF(t), EnvFile: envFile})
	out, err := r.Run(context.Background(), t.TempDir(), Build)
	require.NoError(t, err)
	assert.False(t, out.Success())
	assert.Equal(t, 3, out.ExitCode)
}

func TestShellRunnerLaunchFailure(t *testing.T) {
	r := NewShellRunner(Tool{Shell: filepath.Join(t.TempDir(), "no-such-shell")})
	_, err := r.Run(context.Background(), t.TempDir(), Build)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLaunch))
}

func TestShellRunnerMissingEnvFile(t *testing.T) {
	r := NewShellRunner(Tool{Shell: "sh", EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	_, err := r.Run(context.Background(), t.TempDir(), Build)
	require.ErrorIs(t, err, ErrLaunch)
}

func TestBuildEnvOverrides(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("IDF_PATH=/opt/esp-idf\nB=2\n"), 0o644))

	got, err := buildEnv([]string{"PATH=/usr/bin", "IDF_PATH=/old"}, envFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"PATH=/usr/bin", "B=2", "IDF_PATH=/opt/esp-idf"}, got)

	same, err := buildEnv([]string{"A=1"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A=1"}, same)
	assert.False(t, strings.Contains(strings.Join(same, ","), "IDF"))
}
