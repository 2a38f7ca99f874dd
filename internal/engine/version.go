package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/mesh-intelligence/relink/pkg/types"
)

// TimestampLayout is the layout of timestamp versions (YYYYMMDDHHMMSS).
const TimestampLayout = "20060102150405"

// stdin and isTerminal are replaced in tests.
var (
	stdin      = os.Stdin
	isTerminal = func(fd uintptr) bool {
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

// GenerateVersion returns a new version string of the given kind
// (types.VersionTimestamp, types.VersionAutoIncrement or
// types.VersionUserInput).
//
// Auto-increment fails with types.ErrInvalidVersionFormat when the last
// stored version is not a base-10 integer. User input blocks on the prompt
// reader; without one it reads stdin and fails with types.ErrNotInteractive
// when stdin is not a terminal.
func (e *Engine) GenerateVersion(ctx context.Context, kind string) (string, error) {
	switch kind {
	case types.VersionTimestamp:
		return e.now().Format(TimestampLayout), nil
	case types.VersionAutoIncrement:
		return e.nextVersion(ctx)
	case types.VersionUserInput:
		return e.promptVersion()
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnknownVersionKind, kind)
	}
}

func (e *Engine) nextVersion(ctx context.Context) (string, error) {
	last, err := e.store.LastVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("read last version: %w", err)
	}
	n, ok := new(big.Int).SetString(last, 10)
	if !ok {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidVersionFormat, last)
	}
	return n.Add(n, big.NewInt(1)).String(), nil
}

func (e *Engine) promptVersion() (string, error) {
	in, out := e.promptIn, e.promptOut
	if in == nil {
		if !isTerminal(stdin.Fd()) {
			return "", types.ErrNotInteractive
		}
		in = stdin
	}
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprint(out, "Enter a version name: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read version name: %w", err)
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", fmt.Errorf("%w: empty version name", types.ErrInvalidVersion)
	}
	return name, nil
}
