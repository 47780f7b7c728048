package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-files-must-flow/internal/dedupe"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/scan"
)

func TestRootCommandWiring(t *testing.T) {
	expected := []string{"organize", "scan", "learn", "categories", "history", "version"}
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %s not registered", name)
	}
}

func TestOrganizeFlags(t *testing.T) {
	cmd := organizeCmd()

	for _, flag := range []string{"copy", "dry-run", "yes", "scan-mode", "dup-key"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}

	assert.Error(t, cmd.Args(cmd, []string{}), "source argument should be required")
	assert.NoError(t, cmd.Args(cmd, []string{"/src"}))
	assert.NoError(t, cmd.Args(cmd, []string{"/src", "/dst"}))
	assert.Error(t, cmd.Args(cmd, []string{"/src", "/dst", "/extra"}))
}

func TestPlannerConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := plannerConfig(false)
	require.NoError(t, err)
	assert.Equal(t, model.OperationMove, cfg.Operation)
	assert.Equal(t, scan.ModeTopLevel, cfg.ScanMode)
	assert.Equal(t, []dedupe.KeyPart{dedupe.KeyName, dedupe.KeySize}, cfg.KeyParts)
}

func TestPlannerConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("scan.mode", "recurse")
	viper.Set("duplicates.key", "name,hash")

	cfg, err := plannerConfig(true)
	require.NoError(t, err)
	assert.Equal(t, model.OperationCopy, cfg.Operation)
	assert.Equal(t, scan.ModeRecurse, cfg.ScanMode)
	assert.Equal(t, []dedupe.KeyPart{dedupe.KeyName, dedupe.KeyHash}, cfg.KeyParts)
}

func TestPlannerConfigRejectsBadMode(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("scan.mode", "sideways")

	_, err := plannerConfig(false)
	assert.Error(t, err)
}

func TestResolveTarget(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := resolveTarget("")
	assert.Error(t, err, "no argument and no config should fail")

	got, err := resolveTarget("/some/target")
	require.NoError(t, err)
	assert.Equal(t, "/some/target", got)

	viper.Set("target.root", "/config/target")
	got, err = resolveTarget("")
	require.NoError(t, err)
	assert.Equal(t, "/config/target", got)
}
