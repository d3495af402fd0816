package command

import (
	"io"
	"os"
)

// IO holds the streams handed to child processes
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdIO inherits the streams of this process
func StdIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}
