package entity

import "time"

// Book is a catalog entry. AverageRating and ReviewCount are derived from the
// book's reviews and are only ever written by the rating aggregator.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre"`
	PublicationYear int       `json:"publicationYear"`
	OwnerID         string    `json:"createdBy"`
	OwnerUsername   string    `json:"createdByUsername,omitempty"`
	AverageRating   float64   `json:"averageRating"`
	ReviewCount     int       `json:"reviewCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// BookWithReviews is the detail projection served by GET /books/{id}.
type BookWithReviews struct {
	Book
	Reviews []Review `json:"reviews"`
}

// BookQuery defines filters and pagination for listing books.
type BookQuery struct {
	Author string
	Genre  string
	Limit  int
	Offset int
}

// RatingSummary is the aggregate pair stored on a book.
type RatingSummary struct {
	BookID        string  `json:"bookId"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}
