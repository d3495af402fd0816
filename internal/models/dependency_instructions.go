package models

// DependencyInstructions pairs a dependency with the instructions resolved for it.
type DependencyInstructions struct {
	Dependency   Dependency
	Instructions InstallInstructions
}

// Filters delegates to the owning dependency
func (d DependencyInstructions) Filters() []Platform {
	return d.Dependency.Platforms
}

// Owned is an instruction item tagged with the dependency it came from.
type Owned[T Filterable] struct {
	Dependency Dependency
	Item       T
}

// Filters delegates to the wrapped item
func (o Owned[T]) Filters() []Platform {
	return o.Item.Filters()
}

func flatten[T Filterable](list []DependencyInstructions, pick func(InstallInstructions) []T) []Owned[T] {
	var out []Owned[T]
	for _, di := range list {
		for _, item := range pick(di.Instructions) {
			out = append(out, Owned[T]{Dependency: di.Dependency, Item: item})
		}
	}
	return out
}

// Downloads flattens every download, keeping dependency order then declaration order.
func Downloads(list []DependencyInstructions) []Owned[DownloadInstruction] {
	return flatten(list, func(i InstallInstructions) []DownloadInstruction { return i.Downloads })
}

// EnvironmentVariables flattens every environment variable in declaration order.
func EnvironmentVariables(list []DependencyInstructions) []Owned[EnvironmentVariable] {
	return flatten(list, func(i InstallInstructions) []EnvironmentVariable { return i.EnvironmentVariables })
}

// Templates flattens every template reference.
func Templates(list []DependencyInstructions) []Owned[Template] {
	return flatten(list, func(i InstallInstructions) []Template { return i.Templates })
}

// InstallCommands flattens every install command in declaration order.
func InstallCommands(list []DependencyInstructions) []Owned[InstallCommand] {
	return flatten(list, func(i InstallInstructions) []InstallCommand { return i.InstallCommands })
}
