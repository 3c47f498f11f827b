package session

// Input is the current image selection. A nil Input means nothing is
// selected.
type Input interface {
	isInput()
	// Kind is "file" or "url".
	Kind() string
}

// FileInput is a local image held in memory.
type FileInput struct {
	Name     string
	Data     []byte
	MIMEHint string
}

// URLInput is a pasted image URL.
type URLInput struct {
	URL string
}

func (FileInput) isInput()     {}
func (FileInput) Kind() string { return "file" }
func (URLInput) isInput()      {}
func (URLInput) Kind() string  { return "url" }
