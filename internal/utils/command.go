package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"text/template"

	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/models"
)

// Command an external program invocation
type Command struct {
	Name string
	Args []string
	Dir  string
	// Stream receives output while the command runs, output is still captured
	Stream io.Writer
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes external commands
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

/**
 * Run a command and capture its combined output
 * @param {Context} ctx - Cancels the child process
 * @param {Command} cmd - Program, arguments and working directory
 * @returns {string} Returns trimmed combined output
 * @throws
 * - CommandError when the program is missing or exits non-zero
 */
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var buf bytes.Buffer
	var out io.Writer = &buf
	if cmd.Stream != nil {
		out = io.MultiWriter(&buf, cmd.Stream)
	}
	c.Stdout = out
	c.Stderr = out

	logger.Debugf("exec: %s (dir=%s)", cmd.String(), cmd.Dir)
	err := c.Run()
	output := strings.TrimSpace(buf.String())
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return output, &models.CommandError{
			Command:  cmd.String(),
			ExitCode: exitCode,
			Output:   output,
			Err:      err,
		}
	}
	return output, nil
}

/**
 * Check that the given programs are on PATH
 * @param {[]string} names - Program names
 * @returns {error} Returns an error naming every missing program
 */
func RequireCommands(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required command not found: %s: %w", strings.Join(missing, ", "), models.ErrNotFound)
	}
	return nil
}

// ShellQuote quotes s for a POSIX shell
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

var commandFuncs = template.FuncMap{
	"quote": ShellQuote,
}

/**
 * Expand a command template and its argument templates
 * @param {string} command - Command template
 * @param {[]string} args - Argument templates
 * @param {any} data - Template data
 * @returns {string} Returns the expanded command
 * @returns {[]string} Returns the expanded arguments
 */
func GetCommandLine(command string, args []string, data interface{}) (string, []string, error) {
	cmdTemplate, err := template.New("command").Funcs(commandFuncs).Parse(command)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse command template: %w", err)
	}

	var cmdBuf bytes.Buffer
	if err := cmdTemplate.Execute(&cmdBuf, data); err != nil {
		return "", nil, fmt.Errorf("failed to execute command template: %w", err)
	}

	var processedArgs []string
	for _, arg := range args {
		argTemplate, err := template.New("arg").Funcs(commandFuncs).Parse(arg)
		if err != nil {
			return "", nil, fmt.Errorf("failed to parse arg template '%s': %w", arg, err)
		}

		var argBuf bytes.Buffer
		if err := argTemplate.Execute(&argBuf, data); err != nil {
			return "", nil, fmt.Errorf("failed to execute arg template '%s': %w", arg, err)
		}

		processedArgs = append(processedArgs, strings.TrimSpace(argBuf.String()))
	}

	return cmdBuf.String(), processedArgs, nil
}
