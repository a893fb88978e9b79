package cite

// Segment is one piece of a linkified text: either a literal run or a
// recognized citation. Exactly one of Literal/Match is meaningful,
// discriminated by IsCitation.
type Segment struct {
	IsCitation bool   `json:"is_citation"`
	Literal    string `json:"literal,omitempty"`
	Match      *Match `json:"match,omitempty"`
}

// Linkify partitions text into an ordered list of literal and citation
// segments. Concatenating the underlying text of every segment in order
// reproduces the input exactly; rendering surfaces rely on this to
// display annotated decision text without loss.
func Linkify(text string) []Segment {
	matches := Extract(text)
	if len(matches) == 0 {
		if text == "" {
			return nil
		}
		return []Segment{{Literal: text}}
	}

	segments := make([]Segment, 0, 2*len(matches)+1)
	pos := 0
	for i := range matches {
		m := &matches[i]
		if m.Start > pos {
			segments = append(segments, Segment{Literal: text[pos:m.Start]})
		}
		segments = append(segments, Segment{IsCitation: true, Match: m})
		pos = m.End
	}
	if pos < len(text) {
		segments = append(segments, Segment{Literal: text[pos:]})
	}
	return segments
}
