package io

import (
	"io"
	"log"
	"os"
	"os/exec"
)

// Pipe streams output to the standard input of an external process, for
// example an audio player.
type Pipe struct {
	Verbose bool      // If set, logs process start and exit.
	Command []string  // Program and arguments.
	Output  io.Writer // Process standard output; os.Stdout if nil.

	cmd   *exec.Cmd
	stdin io.WriteCloser
}

var _ Channel = (*Pipe)(nil)

// Open starts the process.
func (pipe *Pipe) Open() (err error) {
	if len(pipe.Command) == 0 {
		err = ErrPipeCommand
		return
	}

	cmd := exec.Command(pipe.Command[0], pipe.Command[1:]...)
	cmd.Stdout = pipe.Output
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return
	}

	err = cmd.Start()
	if err != nil {
		return
	}

	if pipe.Verbose {
		log.Printf("pipe: started %v (pid %d)", pipe.Command, cmd.Process.Pid)
	}

	pipe.cmd = cmd
	pipe.stdin = stdin

	return
}

// Rewind is not possible on a pipe.
func (pipe *Pipe) Rewind() {
}

// Write sends data to the process.
func (pipe *Pipe) Write(data []byte) (n int, err error) {
	if pipe.stdin == nil {
		err = ErrPipeClosed
		return
	}

	return pipe.stdin.Write(data)
}

// Close closes the process input, and waits for it to exit.
func (pipe *Pipe) Close() (err error) {
	if pipe.cmd == nil {
		return
	}

	err = pipe.stdin.Close()
	werr := pipe.cmd.Wait()
	if err == nil {
		err = werr
	}

	if pipe.Verbose {
		log.Printf("pipe: %v exited: %v", pipe.Command, pipe.cmd.ProcessState)
	}

	pipe.cmd = nil
	pipe.stdin = nil

	return
}
