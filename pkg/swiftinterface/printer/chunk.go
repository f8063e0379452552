package printer

// Chunk is one (text, semanticType) pair in the output stream.
type Chunk struct {
	Text string
	Type SemanticType
}

// stream accumulates chunks, coalescing adjacent chunks sharing a Type
// (adjacent chunks of the same type are coalesced).
type stream struct {
	chunks []Chunk
}

func (s *stream) emit(text string, t SemanticType) {
	if text == "" {
		return
	}
	if n := len(s.chunks); n > 0 && s.chunks[n-1].Type == t {
		s.chunks[n-1].Text += text
		return
	}
	s.chunks = append(s.chunks, Chunk{Text: text, Type: t})
}

func (s *stream) nl() {
	s.emit("\n", standard())
}

func (s *stream) take() []Chunk {
	out := s.chunks
	s.chunks = nil
	return out
}

// Join concatenates a chunk stream back into plain text, discarding
// semantic type information. Used as input to the demangle-blob post-pass
// and to --color rendering.
func Join(chunks []Chunk) string {
	var n int
	for _, c := range chunks {
		n += len(c.Text)
	}
	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c.Text...)
	}
	return string(out)
}
