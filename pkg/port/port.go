// Package port holds the definition of a sampled input line
package port

// Reader returns the current level of a line.
// Read is called once per sampling tick and must not block.
type Reader interface {
	Read() bool
}

// ReaderFunc adapts a function to a Reader.
type ReaderFunc func() bool

func (f ReaderFunc) Read() bool { return f() }

// activeLow inverts the level of a line.
type activeLow struct {
	r Reader
}

func (a activeLow) Read() bool { return !a.r.Read() }

// ActiveLow returns a reader reporting true while the line of r is low.
// Most receiver modules pull their open collector output low during the carrier reduction.
func ActiveLow(r Reader) Reader {
	return activeLow{r: r}
}
