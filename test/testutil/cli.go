// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutil

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// BinaryVersion is linked into the test binary as its version string.
const BinaryVersion = "v0.0.0-test"

const versionVar = "github.com/sirseerhq/sirseer-projectsync/pkg/version.Version"

var buildBinary = sync.OnceValues(func() (string, error) {
	out, err := exec.Command("go", "env", "GOMOD").Output()
	if err != nil {
		return "", err
	}
	root := filepath.Dir(strings.TrimSpace(string(out)))

	dir, err := os.MkdirTemp("", "sirseer-projectsync-test")
	if err != nil {
		return "", err
	}
	binary := filepath.Join(dir, "sirseer-projectsync")

	build := exec.Command("go", "build", "-ldflags", "-X "+versionVar+"="+BinaryVersion, "-o", binary, "./cmd/projectsync")
	build.Dir = root
	if combined, err := build.CombinedOutput(); err != nil {
		return "", errors.New(err.Error() + ": " + string(combined))
	}
	return binary, nil
})

// BuildBinary builds the CLI once per test process and returns its path.
func BuildBinary(t *testing.T) string {
	t.Helper()

	binary, err := buildBinary()
	if err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}
	return binary
}

// CLIResult is the outcome of one CLI invocation.
type CLIResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// cliEnv returns the process environment without variables the CLI reads,
// so a developer's own token or state directory never leaks into a test.
func cliEnv(overrides map[string]string) []string {
	var env []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "SIRSEER_") || strings.HasPrefix(name, "GITHUB_") {
			continue
		}
		env = append(env, kv)
	}
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}

// RunCLI runs the CLI with args. env is applied on top of a cleaned
// environment.
func RunCLI(t *testing.T, args []string, env map[string]string) CLIResult {
	t.Helper()

	cmd := exec.Command(BuildBinary(t), args...)
	cmd.Env = cliEnv(env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	result := CLIResult{Err: cmd.Run()}
	result.Stdout, result.Stderr = stdout.String(), stderr.String()

	var exitErr *exec.ExitError
	switch {
	case errors.As(result.Err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case result.Err != nil:
		result.ExitCode = -1
	}
	return result
}

// RunWithBoardServer runs the CLI against server with a test token and
// isolated home and state directories.
func RunWithBoardServer(t *testing.T, server *BoardServer, args ...string) CLIResult {
	t.Helper()

	return RunCLI(t, args, map[string]string{
		"GITHUB_TOKEN":            "test-token",
		"GITHUB_GRAPHQL_ENDPOINT": server.Endpoint(),
		"SIRSEER_STATE_DIR":       t.TempDir(),
		"HOME":                    t.TempDir(),
	})
}

// AssertCLISuccess fails the test unless the run exited 0.
func AssertCLISuccess(t *testing.T, result CLIResult) {
	t.Helper()

	if result.Err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", result.Err, result.Stderr)
	}
}

// AssertCLIError fails the test unless the run failed and, when
// expectedError is set, printed it on stderr.
func AssertCLIError(t *testing.T, result CLIResult, expectedError string) {
	t.Helper()

	if result.Err == nil {
		t.Fatalf("Expected command to fail, but it succeeded\nStdout: %s", result.Stdout)
	}
	if expectedError != "" && !strings.Contains(result.Stderr, expectedError) {
		t.Errorf("Expected error containing %q, got: %s", expectedError, result.Stderr)
	}
}

// AssertExitCode checks the run's exit code.
func AssertExitCode(t *testing.T, result CLIResult, expected int) {
	t.Helper()

	if result.ExitCode != expected {
		t.Errorf("Expected exit code %d, got %d\nStderr: %s", expected, result.ExitCode, result.Stderr)
	}
}
