// Package probe captures help text from commands, saved files or memory.
package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/helpscan/internal/model"
)

// Prober obtains the help text of one command path, e.g. ["git", "remote"].
// Errors are *Error values.
type Prober interface {
	Probe(ctx context.Context, path []string, timeout time.Duration) (model.RawHelpText, error)
}

// StaticProber serves help text from memory, keyed by the space-joined path
type StaticProber struct {
	Texts map[string]string
}

// NewStaticProber creates a prober over texts, keyed like "git remote"
func NewStaticProber(texts map[string]string) *StaticProber {
	return &StaticProber{Texts: texts}
}

// Probe returns the stored text for path
func (p *StaticProber) Probe(ctx context.Context, path []string, timeout time.Duration) (model.RawHelpText, error) {
	if err := ctx.Err(); err != nil {
		return model.RawHelpText{}, NewError(KindCancelled, path, err)
	}
	text, ok := p.Texts[strings.Join(path, " ")]
	if !ok {
		return model.RawHelpText{}, NewError(KindNotFound, path, nil)
	}
	if strings.TrimSpace(text) == "" {
		return model.RawHelpText{}, NewError(KindEmptyOutput, path, nil)
	}
	return newRaw(path, "", text), nil
}

// DirProber reads saved help files from a directory. The file for
// ["git", "remote"] is "git_remote.txt", or "git remote.txt".
type DirProber struct {
	dir string
}

// NewDirProber creates a prober reading from dir
func NewDirProber(dir string) *DirProber {
	return &DirProber{dir: dir}
}

// FileNames returns the candidate file names for path, in lookup order
func FileNames(path []string) []string {
	base := []string{strings.Join(path, "_"), strings.Join(path, " "), strings.Join(path, "-")}
	var names []string
	for _, b := range base {
		names = append(names, b+".txt", b+".help", b)
	}
	return names
}

// Probe reads the saved help file for path
func (p *DirProber) Probe(ctx context.Context, path []string, timeout time.Duration) (model.RawHelpText, error) {
	if err := ctx.Err(); err != nil {
		return model.RawHelpText{}, NewError(KindCancelled, path, err)
	}
	if len(path) > 0 {
		path = append([]string{filepath.Base(path[0])}, path[1:]...)
	}
	for _, name := range FileNames(path) {
		data, err := os.ReadFile(filepath.Join(p.dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return model.RawHelpText{}, NewError(KindNotFound, path, fmt.Errorf("read %s: %w", name, err))
		}
		text := CleanOutput(string(data))
		if strings.TrimSpace(text) == "" {
			return model.RawHelpText{}, NewError(KindEmptyOutput, path, nil)
		}
		return newRaw(path, "", text), nil
	}
	return model.RawHelpText{}, NewError(KindNotFound, path, fmt.Errorf("no help file in %s", p.dir))
}

func newRaw(path []string, flag, text string) model.RawHelpText {
	raw := model.RawHelpText{Path: append([]string(nil), path...), Flag: flag, Text: text}
	if len(path) > 0 {
		raw.Tool = filepath.Base(path[0])
	}
	return raw
}
