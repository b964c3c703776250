// Package pdfdoc is the PDF document capability used by the merge and split
// engines. It hides the PDF object model behind a small interface so engines
// only deal with page counts and page lists.
package pdfdoc

import (
	"errors"
)

var (
	// ErrNotPDF is returned by Open when the file content is not a PDF.
	ErrNotPDF = errors.New("not a PDF document")
	// ErrUnreadable is returned by Open when the decoder rejects the file.
	ErrUnreadable = errors.New("unreadable PDF document")
	// ErrEmptyDocument is returned by Save for a document without pages.
	ErrEmptyDocument = errors.New("document has no pages")
	// ErrForeignDocument is returned when a Document from another
	// Capability is passed in.
	ErrForeignDocument = errors.New("document belongs to another capability")
)

// Document is an in-memory PDF.
type Document interface {
	PageCount() int
}

// Capability opens, slices, concatenates and saves documents.
type Capability interface {
	// Open loads the whole document at path.
	Open(path string) (Document, error)
	// Extract returns a new document holding pages (1-based, in the given
	// order, duplicates allowed) of doc.
	Extract(doc Document, pages []int) (Document, error)
	// Empty returns a document with no pages to accumulate into.
	Empty() Document
	// Append adds every page of src to the end of dst.
	Append(dst, src Document) error
	// Save writes doc to path atomically, creating parent directories.
	Save(doc Document, path string) error
}
