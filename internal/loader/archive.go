package loader

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// Archive serves files out of a .tar.gz source archive. When every entry sits
// under one top-level directory, as in an sdist or a GitHub tarball, that
// directory is stripped.
type Archive struct {
	files map[string]string
}

// OpenArchive reads every regular file of the archive into memory.
func OpenArchive(tarballPath string) (*Archive, error) {
	file, err := os.Open(tarballPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("decompressing archive: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	files := make(map[string]string)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", header.Name, err)
		}
		files[cleanPath(header.Name)] = string(data)
	}

	return &Archive{files: stripTopDir(files)}, nil
}

// Load returns the content of path inside the archive.
func (a *Archive) Load(p string) (string, error) {
	content, ok := a.files[cleanPath(p)]
	if !ok {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return content, nil
}

// Paths lists the archive's files, sorted.
func (a *Archive) Paths() []string {
	paths := make([]string, 0, len(a.files))
	for p := range a.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func stripTopDir(files map[string]string) map[string]string {
	top := ""
	for name := range files {
		dir, _, ok := strings.Cut(name, "/")
		if !ok || (top != "" && dir != top) {
			return files
		}
		top = dir
	}
	if top == "" {
		return files
	}

	stripped := make(map[string]string, len(files))
	for name, content := range files {
		stripped[strings.TrimPrefix(name, top+"/")] = content
	}
	return stripped
}
