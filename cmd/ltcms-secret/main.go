// Command ltcms-secret generates JWT_SECRET / CSRF_SECRET values and checks
// candidates against the rules the server enforces at startup.
//
//	ltcms-secret generate [--length N]
//	ltcms-secret check --kind bearer|csrf [--env VAR]
//
// check reads the candidate from stdin unless --env names a variable, and
// exits 1 with the first rule the value breaks.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aussiebroadwan/ltcms/pkg/secretx"
	"github.com/spf13/pflag"
)

const usage = `usage:
  ltcms-secret generate [--length N]
  ltcms-secret check --kind bearer|csrf [--env VAR]
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.LookupEnv))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "generate":
		return generate(args[1:], stdout, stderr)
	case "check":
		return check(args[1:], stdin, stdout, stderr, lookupEnv)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}
}

func generate(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	length := fs.IntP("length", "n", 48, "bytes of entropy (minimum 32)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	s, err := secretx.Generate(*length)
	if err != nil {
		fmt.Fprintf(stderr, "generate: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, s)
	return 0
}

func check(args []string, stdin io.Reader, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	kind := fs.StringP("kind", "k", string(secretx.KindBearer), "secret kind: bearer or csrf")
	env := fs.String("env", "", "read the candidate from this environment variable instead of stdin")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	raw, err := readCandidate(*env, stdin, lookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "check: %v\n", err)
		return 1
	}

	if _, err := secretx.Validate(secretx.Kind(strings.ToLower(*kind)), raw); err != nil {
		fmt.Fprintf(stderr, "rejected: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "ok")
	return 0
}

func readCandidate(env string, stdin io.Reader, lookupEnv func(string) (string, bool)) (string, error) {
	if env != "" {
		v, ok := lookupEnv(env)
		if !ok {
			return "", fmt.Errorf("%s is not set", env)
		}
		return v, nil
	}

	b, err := io.ReadAll(io.LimitReader(stdin, 4<<10))
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errors.New("no input on stdin")
	}
	return string(b), nil
}
