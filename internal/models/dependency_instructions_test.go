package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloads_GroupingOrder(t *testing.T) {
	d1 := Dependency{Name: "d1", Version: "1"}
	d2 := Dependency{Name: "d2", Version: "2"}
	x := DownloadInstruction{URL: "x"}
	y := DownloadInstruction{URL: "y"}
	z := DownloadInstruction{URL: "z"}

	list := []DependencyInstructions{
		{Dependency: d1, Instructions: InstallInstructions{Downloads: []DownloadInstruction{x, y}}},
		{Dependency: d2, Instructions: InstallInstructions{Downloads: []DownloadInstruction{z}}},
	}

	got := Downloads(list)
	assert.Equal(t, []Owned[DownloadInstruction]{
		{Dependency: d1, Item: x},
		{Dependency: d1, Item: y},
		{Dependency: d2, Item: z},
	}, got)
}

func TestFlatten_OtherCollections(t *testing.T) {
	dep := Dependency{Name: "java", Version: "21"}
	value := "1"
	list := []DependencyInstructions{{
		Dependency: dep,
		Instructions: InstallInstructions{
			EnvironmentVariables: []EnvironmentVariable{{Name: "A", Value: &value}, {Name: "B", Value: &value}},
			Templates:            []Template{{Name: "t"}},
			InstallCommands:      []InstallCommand{{Command: "echo hi"}},
		},
	}}

	envs := EnvironmentVariables(list)
	assert.Len(t, envs, 2)
	assert.Equal(t, "A", envs[0].Item.Name)
	assert.Equal(t, "B", envs[1].Item.Name)

	assert.Len(t, Templates(list), 1)
	assert.Len(t, InstallCommands(list), 1)
	assert.Empty(t, Downloads(list))
}

func TestOwned_FiltersDelegate(t *testing.T) {
	filters := []Platform{{OS: "windows"}}
	owned := Owned[Template]{Item: Template{Name: "t", Platforms: filters}}
	assert.Equal(t, filters, owned.Filters())

	di := DependencyInstructions{Dependency: Dependency{Platforms: filters}}
	assert.Equal(t, filters, di.Filters())
}
