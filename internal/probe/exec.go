package probe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
)

// pagerFreeEnv keeps tools from paging, colouring or wrapping their help
var pagerFreeEnv = []string{
	"PAGER=cat",
	"GIT_PAGER=cat",
	"MANPAGER=cat",
	"TERM=dumb",
	"NO_COLOR=1",
	"COLUMNS=200",
}

// ExecProber runs "<path> --help" (then the next help flag) and captures the output
type ExecProber struct {
	helpFlags  []string
	strictExit bool
	maxBytes   int64
}

// NewExecProber creates a prober from the probe configuration
func NewExecProber(cfg model.ProbeConfig) *ExecProber {
	flags := cfg.HelpFlags
	if len(flags) == 0 {
		flags = []string{"--help", "-h"}
	}
	maxBytes := cfg.MaxOutputBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return &ExecProber{
		helpFlags:  flags,
		strictExit: cfg.StrictExit,
		maxBytes:   maxBytes,
	}
}

// Probe tries each help flag in order and returns the first usable output.
// A non-zero exit with output is accepted unless strict exit is configured,
// since many tools exit 1 or 2 after printing help.
func (p *ExecProber) Probe(ctx context.Context, path []string, timeout time.Duration) (model.RawHelpText, error) {
	if len(path) == 0 {
		return model.RawHelpText{}, NewError(KindNotFound, path, errors.New("empty command path"))
	}

	var lastErr *Error
	for _, flag := range p.helpFlags {
		text, err := p.run(ctx, path, flag, timeout)
		if err == nil {
			return newRaw(path, flag, text), nil
		}
		lastErr = err
		logging.Debug().Strs("path", path).Str("flag", flag).Str("kind", string(err.Kind)).Msg("help probe attempt failed")

		// A timed-out attempt uses the whole budget of the probe
		switch err.Kind {
		case KindNotFound, KindCancelled, KindTimeout:
			return model.RawHelpText{}, err
		}
	}
	return model.RawHelpText{}, lastErr
}

func (p *ExecProber) run(ctx context.Context, path []string, flag string, timeout time.Duration) (string, *Error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := append(append([]string(nil), path[1:]...), flag)
	cmd := exec.CommandContext(runCtx, path[0], args...)
	cmd.Env = append(os.Environ(), pagerFreeEnv...)
	cmd.Stdin = nil

	out := &limitedBuffer{max: p.maxBytes}
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	err := cmd.Run()
	logging.Debug().Strs("path", path).Str("flag", flag).Dur("elapsed", time.Since(start)).Int("bytes", out.Len()).Msg("help probe")

	fail := func(kind ErrorKind, cause error) *Error {
		e := NewError(kind, path, cause)
		e.Flag = flag
		return e
	}

	switch {
	case ctx.Err() != nil:
		return "", fail(KindCancelled, ctx.Err())
	case runCtx.Err() == context.DeadlineExceeded:
		return "", fail(KindTimeout, runCtx.Err())
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return "", fail(KindNotFound, err)
	}

	text := CleanOutput(out.String())
	empty := strings.TrimSpace(text) == ""

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if p.strictExit || empty {
			e := fail(KindNonZeroExit, err)
			e.ExitCode = exitErr.ExitCode()
			return "", e
		}
	} else if err != nil {
		return "", fail(KindNotFound, err)
	}

	if empty {
		return "", fail(KindEmptyOutput, nil)
	}
	return text, nil
}

// limitedBuffer keeps at most max bytes and silently discards the rest
type limitedBuffer struct {
	buf bytes.Buffer
	max int64
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - int64(b.buf.Len()); room > 0 {
		if int64(len(p)) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) Len() int       { return b.buf.Len() }
func (b *limitedBuffer) String() string { return b.buf.String() }
