package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/staticbuilder/internal/pathsafe"
)

const (
	reasonEscapes        = "destination escapes output directory"
	reasonSourceNotFound = "source not found"
	reasonSourceOverlaps = "source contains output directory"
)

// CopyAsset copies the file or directory from into the output tree at to and
// reports what happened. from is taken as-is when absolute and relative to
// projectRoot otherwise; to is always relative to outputRoot. Without write
// only the source classification is reported.
func CopyAsset(fs afero.Fs, outputRoot, projectRoot, from, to string, write bool) Entry {
	e := Entry{Kind: KindAsset, Source: from}

	source := from
	if !pathsafe.IsAbsolute(from) {
		source = pathsafe.Join(pathsafe.Sep, projectRoot, from)
	}
	source = pathsafe.Normalize(source, pathsafe.Sep)

	if source == pathsafe.Normalize(outputRoot, pathsafe.Sep) || pathsafe.Contains(source, outputRoot, pathsafe.Sep) {
		e.Status = StatusIgnore
		e.Reason = reasonSourceOverlaps
		return e
	}

	target := pathsafe.Join(pathsafe.Sep, outputRoot, to)
	if !pathsafe.Contains(outputRoot, target, pathsafe.Sep) {
		e.Status = StatusIgnore
		e.Reason = reasonEscapes
		return e
	}
	target = pathsafe.Normalize(target, pathsafe.Sep)
	e.Dest = target

	info, err := fs.Stat(source)
	if err != nil {
		e.Status = StatusIgnore
		e.Reason = reasonSourceNotFound
		return e
	}
	if info.IsDir() {
		e.AssetType = AssetDir
	} else {
		e.AssetType = AssetFile
	}

	if !write {
		e.Status = StatusReady
		return e
	}

	if e.AssetType == AssetDir {
		if err := fs.RemoveAll(target); err != nil {
			return failed(e, err)
		}
		if err := copyDir(fs, source, target); err != nil {
			return failed(e, err)
		}
	} else {
		if err := copyFile(fs, source, target, info.Mode()); err != nil {
			return failed(e, err)
		}
	}
	e.Status = StatusDone
	return e
}

func failed(e Entry, err error) Entry {
	e.Status = StatusFailed
	e.Reason = err.Error()
	return e
}

// copyDir recursively copies the directory tree at src to dst.
func copyDir(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if info.IsDir() {
			return fs.MkdirAll(out, 0o755)
		}
		return copyFile(fs, p, out, info.Mode())
	})
}

// copyFile copies a single file from src to dst, creating parent directories.
func copyFile(fs afero.Fs, src, dst string, mode os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	if err := fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
