package info

// Styles decorates report text. Each field maps plain text to its styled
// form; nil fields leave text unchanged. The CLI fills these from lipgloss
// when writing to a terminal.
type Styles struct {
	Bold       func(string) string
	Gray       func(string) string
	Italic     func(string) string
	ItalicGray func(string) string
	Red        func(string) string
	RedBold    func(string) string
}

// PlainStyles returns styles that leave text unchanged.
func PlainStyles() Styles {
	return Styles{}.withDefaults()
}

func (s Styles) withDefaults() Styles {
	for _, f := range []*func(string) string{&s.Bold, &s.Gray, &s.Italic, &s.ItalicGray, &s.Red, &s.RedBold} {
		if *f == nil {
			*f = plain
		}
	}
	return s
}

func plain(s string) string { return s }
