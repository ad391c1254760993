// Package cache implements the content-addressed build-cache gate (spec
// §4.6): a combined hash of every input path's bytes (or mtime) plus the
// command-line arguments, compared against a stored digest to decide
// whether a build can be skipped.
package cache

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/crunchpack/crunch/internal/xhash"
)

// Hash combines every input path (file or directory, recursively) and
// every CLI argument into one 64-bit digest. If last is true, files are
// hashed by (path, mtime_utc_seconds) instead of their contents.
func Hash(inputs []string, args []string, last bool) (uint64, error) {
	d := xhash.New()
	for _, in := range inputs {
		if err := hashPath(d, in, last); err != nil {
			return 0, err
		}
	}
	for _, a := range args {
		d.String(a)
	}
	return d.Sum(), nil
}

func hashPath(d *xhash.Digest, path string, last bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "hash input %s", path)
	}
	if info.IsDir() {
		return hashDir(d, path, last)
	}
	return hashFile(d, path, info, last)
}

func hashDir(d *xhash.Digest, dir string, last bool) error {
	var files []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "walk %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return errors.Wrapf(err, "stat %s", f)
		}
		if err := hashFile(d, f, info, last); err != nil {
			return err
		}
	}
	return nil
}

func hashFile(d *xhash.Digest, path string, info os.FileInfo, last bool) error {
	if last {
		d.String(path)
		d.Uint64(uint64(info.ModTime().UTC().Unix()))
		return nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	d.Bytes(data)
	return nil
}

// HashPath is the stored-hash sidecar file for a given output name.
func HashPath(outputDir, name string) string {
	return filepath.Join(outputDir, name+".hash")
}

// LoadStored reads a previously saved hash, returning ok=false if no
// sidecar file exists yet.
func LoadStored(outputDir, name string) (hash uint64, ok bool, err error) {
	data, err := ioutil.ReadFile(HashPath(outputDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "read stored hash")
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, false, errors.Wrap(err, "parse stored hash")
	}
	return v, true, nil
}

// SaveStored writes the new hash to the sidecar file.
func SaveStored(outputDir, name string, hash uint64) error {
	return errors.Wrap(
		ioutil.WriteFile(HashPath(outputDir, name), []byte(fmt.Sprintf("%d", hash)), 0o644),
		"write stored hash",
	)
}

// Sweep removes stale outputs from a previous build before a rebuild:
// the .hash file, the binary manifest, .xml/.json manifests, and every
// <name><page>.png (plus the bare <name>.png for the single-page case).
func Sweep(outputDir, name string) error {
	patterns := []string{
		name + ".hash",
		name + ".crch",
		name + ".xml",
		name + ".json",
		name + ".png",
	}
	for i := 0; i < 16; i++ {
		patterns = append(patterns, fmt.Sprintf("%s%d.png", name, i))
	}
	for _, p := range patterns {
		path := filepath.Join(outputDir, p)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove stale output %s", path)
		}
	}
	return nil
}
