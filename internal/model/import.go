package model

// ImportRef is a single import reference located in a file's content.
// It only lives for the duration of one scan pass.
type ImportRef struct {
	Prefix  string // `from "` or `import("` including the opening quote
	Package Package
	SubPath string // without the leading slash, empty for package-level imports
	Quote   string
	Start   int // byte offset of the match start
	End     int // byte offset one past the match end
}

// IsDeep reports whether the reference points inside the package.
func (r ImportRef) IsDeep() bool {
	return r.SubPath != ""
}
