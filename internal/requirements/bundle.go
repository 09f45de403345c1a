package requirements

// Bundle is an ordered set of parsed files. Callers keep paths unique; the
// bundle itself neither deduplicates nor validates.
type Bundle struct {
	files []*File
}

// NewBundle returns a bundle holding files in order.
func NewBundle(files ...*File) *Bundle {
	return &Bundle{files: files}
}

// Add appends f.
func (b *Bundle) Add(f *File) {
	b.files = append(b.files, f)
}

// HasFile reports whether a file with exactly this path is present. The empty
// path never matches.
func (b *Bundle) HasFile(path string) bool {
	return b.File(path) != nil
}

// File returns the first file with the given path, or nil.
func (b *Bundle) File(path string) *File {
	if path == "" {
		return nil
	}
	for _, f := range b.files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// Files returns the files in insertion order.
func (b *Bundle) Files() []*File {
	return b.files
}

// Requirements returns every requirement of every file, file by file.
func (b *Bundle) Requirements() []*Requirement {
	var out []*Requirement
	for _, f := range b.files {
		out = append(out, f.Requirements...)
	}
	return out
}
