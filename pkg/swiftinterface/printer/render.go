package printer

import (
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/coreglyph/swiftsection/pkg/swift"
)

// RenderOptions controls the final text-assembly pass over a chunk stream,
// independent of how the chunks themselves were produced.
type RenderOptions struct {
	// Color runs the joined text through chroma's "swift" lexer before
	// writing, matching the reference tool's quick.Highlight usage
	// (other_examples/blacktop-ipsw__swift.go).
	Color bool
	Theme string

	// DemangleBlob runs the joined text through a second demangling sweep
	// for any leftover mangled tokens, matching Dump()'s own post-hoc
	// demangling pass (pkg/swift.DemangleBlob). Only useful when stripped-symbolic
	// placeholders are turned off.
	DemangleBlob bool
}

// Render writes chunks to w as plain or syntax-highlighted text, per opts.
func Render(w io.Writer, chunks []Chunk, opts RenderOptions) error {
	text := Join(chunks)
	if opts.DemangleBlob {
		text = swift.DemangleBlob(text)
	}
	if !opts.Color {
		_, err := io.WriteString(w, text)
		return err
	}
	theme := opts.Theme
	if theme == "" {
		theme = "nord"
	}
	return quick.Highlight(w, text, "swift", "terminal256", theme)
}
