// Package environment builds the variable block handed to child processes.
package environment

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// PathVariable is the search-path variable extended by instructions.
const PathVariable = "PATH"

// Variable is one name/value pair
type Variable struct {
	Name  string
	Value string
}

// Environment is an ordered copy of a process environment. It is never
// written back to the current process.
type Environment struct {
	vars    []Variable
	changes []Variable
	fold    bool
}

// New parses KEY=VALUE entries such as those returned by os.Environ.
func New(base []string) *Environment {
	e := &Environment{fold: runtime.GOOS == "windows"}
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i == 0 {
			// Windows keeps per-drive entries like "=C:=C:\dir"
			i = strings.IndexByte(kv[1:], '=') + 1
		}
		if i <= 0 {
			continue
		}
		e.vars = append(e.vars, Variable{Name: kv[:i], Value: kv[i+1:]})
	}
	return e
}

func (e *Environment) index(name string) int {
	for i, v := range e.vars {
		if v.Name == name || (e.fold && strings.EqualFold(v.Name, name)) {
			return i
		}
	}
	return -1
}

// Get returns the value of name
func (e *Environment) Get(name string) (string, bool) {
	if i := e.index(name); i >= 0 {
		return e.vars[i].Value, true
	}
	return "", false
}

// Set overwrites name, or appends it when absent.
func (e *Environment) Set(name, value string) {
	e.changes = append(e.changes, Variable{Name: name, Value: value})
	if i := e.index(name); i >= 0 {
		e.vars[i].Value = value
		return
	}
	e.vars = append(e.vars, Variable{Name: name, Value: value})
}

// PrependPath puts dir at the front of PATH.
func (e *Environment) PrependPath(dir string) {
	current, ok := e.Get(PathVariable)
	value := dir
	if ok && current != "" {
		value = dir + string(os.PathListSeparator) + current
	}

	name := PathVariable
	if i := e.index(PathVariable); i >= 0 {
		name = e.vars[i].Name
	}
	e.Set(name, value)
}

// Path returns the entries of PATH in order
func (e *Environment) Path() []string {
	value, _ := e.Get(PathVariable)
	return filepath.SplitList(value)
}

// Environ returns KEY=VALUE entries suitable for exec.Cmd.Env
func (e *Environment) Environ() []string {
	out := make([]string, 0, len(e.vars))
	for _, v := range e.vars {
		out = append(out, v.Name+"="+v.Value)
	}
	return out
}

// Changes lists every Set in the order it happened, with the resulting value.
func (e *Environment) Changes() []Variable {
	return append([]Variable(nil), e.changes...)
}
