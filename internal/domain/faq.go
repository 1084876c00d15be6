package domain

// FAQ is a curated question/answer pair the assistant suggests from.
type FAQ struct {
	ID       int64
	Question string
	Answer   string
	Active   bool
}
