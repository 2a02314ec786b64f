// Package book contains the book model, the seed catalog and the schema
// that request inputs are checked against before a handler sees them.
package book

// Book is a catalog record. Ids are not unique; lookups act on the first match.
type Book struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Author string  `json:"author"`
	ISBN   string  `json:"isbn"`
	Price  float64 `json:"price"`
}

// Draft is a book as submitted by a client. Any id in the body is ignored;
// the id always comes from the path.
type Draft struct {
	Name   string
	Author string
	ISBN   string
	Price  float64
}

// WithID builds the stored record for the draft.
func (d Draft) WithID(id int) Book {
	return Book{ID: id, Name: d.Name, Author: d.Author, ISBN: d.ISBN, Price: d.Price}
}

// Seed returns the catalog every process starts with.
func Seed() []Book {
	return []Book{
		{ID: 1, Name: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "978-0-7432-7356-5", Price: 12.99},
		{ID: 2, Name: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "978-0-06-112008-4", Price: 14.50},
		{ID: 3, Name: "1984", Author: "George Orwell", ISBN: "978-0-452-28423-4", Price: 13.25},
	}
}
