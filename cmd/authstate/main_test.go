package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd, globalOptions := newRootCmd()
	defer globalOptions.close()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLISessionRoundTrip(t *testing.T) {
	t.Setenv("AUTHSTATE_LOG_LEVEL", "disabled")
	mr := miniredis.RunT(t)
	addr := "--redis-addr=" + mr.Addr()

	out, err := runCLI(t, addr, "new")
	require.NoError(t, err)
	require.Equal(t, "1\n", out)
	require.True(t, mr.Exists("baileys:session:1:creds"))

	out, err = runCLI(t, addr, "show", "1")
	require.NoError(t, err)
	require.Equal(t, "{}\n", out)

	mr.HSet("baileys:session:1:pre-key", "5", `{"public":{"type":"Buffer","data":"AQI="}}`)
	out, err = runCLI(t, addr, "get", "1", "pre-key", "7", "5")
	require.NoError(t, err)
	require.Equal(t, "5\t{\"public\":{\"type\":\"Buffer\",\"data\":\"AQI=\"}}\n7\tnull\n", out)

	_, err = runCLI(t, addr, "clear", "1")
	require.NoError(t, err)
	require.False(t, mr.Exists("baileys:session:1:pre-key"))

	out, err = runCLI(t, addr, "delete", "1")
	require.NoError(t, err)
	require.Equal(t, "1\n", out)
}

func TestCLINewRejectsExistingSession(t *testing.T) {
	t.Setenv("AUTHSTATE_LOG_LEVEL", "disabled")
	mr := miniredis.RunT(t)
	addr := "--redis-addr=" + mr.Addr()

	_, err := runCLI(t, addr, "--namespace=wa", "new", "--id=abc")
	require.NoError(t, err)
	require.True(t, mr.Exists("wa:session:abc:creds"))

	_, err = runCLI(t, addr, "--namespace=wa", "new", "--id=abc")
	require.Error(t, err)
}

func TestCLIRejectsUnknownCategory(t *testing.T) {
	t.Setenv("AUTHSTATE_LOG_LEVEL", "disabled")

	_, err := runCLI(t, "--memory", "get", "1", "identity-key", "x")
	require.ErrorContains(t, err, "unknown key category")
}

func TestCLIShowMissingSession(t *testing.T) {
	t.Setenv("AUTHSTATE_LOG_LEVEL", "disabled")

	_, err := runCLI(t, "--memory", "show", "42")
	require.Error(t, err)
}
