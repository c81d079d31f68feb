package library

// BorrowLimit is the maximum number of books a client may hold at once.
const BorrowLimit = 3

// Book is a lendable title. ID is its identity.
type Book struct {
	ID    string `json:"id" toml:"id"`
	Title string `json:"title" toml:"title"`
}

// Client identifies the person whose books are shown.
type Client struct {
	ID   string `json:"id" toml:"id"`
	Name string `json:"name" toml:"name"`
}

// Snapshot pairs a client's borrowed and available books.
type Snapshot struct {
	Borrowed  []Book `json:"borrowed"`
	Available []Book `json:"available"`
}

// Clone returns a copy that shares no backing arrays with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Borrowed:  CloneBooks(s.Borrowed),
		Available: CloneBooks(s.Available),
	}
}

// CloneBooks copies books into a fresh non-nil slice.
func CloneBooks(books []Book) []Book {
	dup := make([]Book, len(books))
	copy(dup, books)
	return dup
}

// IndexOf returns the position of the book with id, or -1.
func IndexOf(books []Book, id string) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether a book with id is in books.
func Contains(books []Book, id string) bool {
	return IndexOf(books, id) >= 0
}

// Without returns a new slice holding every book except those with id.
func Without(books []Book, id string) []Book {
	kept := make([]Book, 0, len(books))
	for _, b := range books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	return kept
}
