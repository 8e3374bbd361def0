package entity

import "time"

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// Review is one user's rating and comment for one book.
type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewPatch holds the fields an update may change. A zero Rating or an
// empty Comment leaves the stored value untouched.
type ReviewPatch struct {
	Rating  int
	Comment string
}

// Apply returns r with the supplied patch fields overwritten.
func (p ReviewPatch) Apply(r Review) Review {
	if p.Rating != 0 {
		r.Rating = p.Rating
	}
	if p.Comment != "" {
		r.Comment = p.Comment
	}
	return r
}
