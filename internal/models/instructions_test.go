package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallInstructions_DecodeFull(t *testing.T) {
	doc := `{
		"downloads": [
			{"url": "https://example.com/node.tar.gz", "destination_directory": "node",
			 "platform_filters": [{"os": "linux", "arch": "x86_64"}]}
		],
		"environment_variables": [
			{"name": "PATH", "relative_path": "node/bin"},
			{"name": "NODE_ENV", "value": "production"}
		],
		"templates": [
			{"name": "github-release", "variables": {"version": "1.2.3"}}
		],
		"install_commands": [
			{"command": "npm install -g yarn", "when_to_run_rules": {"file_does_not_exist": "node/bin/yarn"}}
		]
	}`

	var inst InstallInstructions
	require.NoError(t, json.Unmarshal([]byte(doc), &inst))

	require.Len(t, inst.Downloads, 1)
	assert.Equal(t, "node", inst.Downloads[0].DestinationDirectory)
	assert.Equal(t, []Platform{{OS: "linux", Arch: "x86_64"}}, inst.Downloads[0].Filters())

	require.Len(t, inst.EnvironmentVariables, 2)
	require.NotNil(t, inst.EnvironmentVariables[0].RelativePath)
	assert.Equal(t, "node/bin", *inst.EnvironmentVariables[0].RelativePath)
	assert.Nil(t, inst.EnvironmentVariables[0].Value)
	require.NotNil(t, inst.EnvironmentVariables[1].Value)
	assert.Equal(t, "production", *inst.EnvironmentVariables[1].Value)

	require.Len(t, inst.Templates, 1)
	assert.Equal(t, "1.2.3", inst.Templates[0].Variables["version"])

	require.Len(t, inst.InstallCommands, 1)
	assert.Equal(t, WhenToRunRules{{Kind: RuleFileDoesNotExist, Path: "node/bin/yarn"}}, inst.InstallCommands[0].WhenToRun)
}

func TestInstallInstructions_AbsentKeysAreEmpty(t *testing.T) {
	var inst InstallInstructions
	require.NoError(t, json.Unmarshal([]byte(`{}`), &inst))

	assert.Empty(t, inst.Downloads)
	assert.Empty(t, inst.EnvironmentVariables)
	assert.Empty(t, inst.Templates)
	assert.Empty(t, inst.InstallCommands)
}

func TestWhenToRunRules_UnknownRule(t *testing.T) {
	var cmd InstallCommand
	err := json.Unmarshal([]byte(`{"command": "true", "when_to_run_rules": {"file_exists": "x"}}`), &cmd)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRule))
	assert.Contains(t, err.Error(), "file_exists")
}

func TestWhenToRunRules_RoundTrip(t *testing.T) {
	rules := WhenToRunRules{{Kind: RuleFileDoesNotExist, Path: "marker"}}

	data, err := json.Marshal(rules)
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_does_not_exist": "marker"}`, string(data))
}

func TestSolipathError(t *testing.T) {
	inner := errors.New("boom")
	err := NewError(ErrDownload, Dependency{Name: "node", Version: "20"}, inner)

	assert.Equal(t, "[Download] node@20: boom", err.Error())
	assert.True(t, errors.Is(err, inner))
	assert.True(t, IsType(err, ErrDownload))
	assert.False(t, IsType(err, ErrExtract))

	bare := &SolipathError{Type: ErrInvalidConfig, Err: inner}
	assert.Equal(t, "[InvalidConfig] boom", bare.Error())
}
