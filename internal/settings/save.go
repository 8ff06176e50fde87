package settings

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mcncl/jsettings/internal/errors"
	"github.com/mcncl/jsettings/internal/notify"
)

const (
	commentPrefix = "// "
	defaultMode   = os.FileMode(0644)
)

// renameFile publishes a staged file over its destination.
var renameFile = os.Rename

// destination is an open write target for one save.
type destination interface {
	io.Writer
	// Commit finishes the write: closes a direct file, or syncs, closes
	// and renames a staged one.
	Commit() error
	// Cancel abandons the write and releases the file.
	Cancel()
}

// Save writes the document to path, or to the source path when path is
// empty. With atomic set the content is staged next to the destination and
// renamed over it, so the destination holds either the old or the new
// content. Without it the destination is truncated and written in place.
func (d *Document) Save(path string, atomic bool) error {
	target := path
	if target == "" {
		target = d.path
	}
	if target == "" {
		d.hasError = true
		return errors.NewNoPathError()
	}

	content, err := d.render()
	if err != nil {
		d.hasError = true
		return errors.NewEncodeError("failed to serialize settings", err)
	}

	var dest destination
	if atomic {
		dest, err = openStaged(target)
	} else {
		dest, err = openDirect(target)
	}
	if err != nil {
		d.hasError = true
		return errors.NewOpenError(target, err)
	}

	d.hasError = false

	if _, err := dest.Write(content); err != nil {
		dest.Cancel()
		d.hasError = true
		if atomic {
			return errors.NewCommitError(target, err)
		}
		return errors.NewWriteError(target, err)
	}

	if err := dest.Commit(); err != nil {
		d.hasError = true
		if atomic {
			return errors.NewCommitError(target, err)
		}
		return errors.NewWriteError(target, err)
	}

	d.notifier.Notify(notify.Change{Type: notify.ChangeSaved, Path: target})
	return nil
}

// render produces the complete file content: the comment block, a blank
// separator line and the tab-indented JSON.
func (d *Document) render() ([]byte, error) {
	body, err := d.formatter.Format(d.value)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if d.comment != "" {
		for _, line := range strings.Split(d.comment, "\n") {
			buf.WriteString(commentPrefix)
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	buf.Write(body)
	return buf.Bytes(), nil
}

type directFile struct {
	file *os.File
}

func openDirect(target string) (*directFile, error) {
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, defaultMode)
	if err != nil {
		return nil, err
	}
	return &directFile{file: file}, nil
}

func (f *directFile) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

func (f *directFile) Commit() error {
	return f.file.Close()
}

func (f *directFile) Cancel() {
	_ = f.file.Close()
}

// stagedFile is written beside its destination and renamed over it on
// commit. The destination is never opened.
type stagedFile struct {
	file   *os.File
	target string
}

func openStaged(target string) (*stagedFile, error) {
	target, err := resolveLink(target)
	if err != nil {
		return nil, err
	}

	mode := defaultMode
	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return nil, &os.PathError{Op: "open", Path: target, Err: syscall.EISDIR}
	case err == nil:
		mode = info.Mode().Perm()
	case !os.IsNotExist(err):
		return nil, err
	}

	file, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, err
	}

	staged := &stagedFile{file: file, target: target}
	if err := file.Chmod(mode); err != nil {
		staged.Cancel()
		return nil, fmt.Errorf("failed to set staging file mode: %w", err)
	}
	return staged, nil
}

// resolveLink follows symlinks so the staged file replaces the link's target
// rather than the link. A destination that does not exist yet is kept as
// given.
func resolveLink(target string) (string, error) {
	resolved, err := filepath.EvalSymlinks(target)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	// A dangling link is written through to the file it names.
	if link, linkErr := os.Readlink(target); linkErr == nil {
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(target), link)
		}
		return link, nil
	}
	return target, nil
}

func (f *stagedFile) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

func (f *stagedFile) Commit() error {
	if err := f.file.Sync(); err != nil {
		f.Cancel()
		return err
	}
	if err := f.file.Close(); err != nil {
		_ = os.Remove(f.file.Name())
		return err
	}
	if err := renameFile(f.file.Name(), f.target); err != nil {
		_ = os.Remove(f.file.Name())
		return err
	}
	return nil
}

func (f *stagedFile) Cancel() {
	_ = f.file.Close()
	_ = os.Remove(f.file.Name())
}
