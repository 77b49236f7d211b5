package domain

// Article is the readable content resolved from a URL before scoring.
type Article struct {
	URL   string
	Title string
	Text  string
}
