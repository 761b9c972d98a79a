package models

import (
	"time"
)

// Post represents a site publication
type Post struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Text       string    `json:"text" db:"text"`
	Category   string    `json:"category" db:"category"`
	EventDate  time.Time `json:"date" db:"event_date"`
	Author     string    `json:"author" db:"author"`
	Images     []string  `json:"images" db:"-"` // Stored as JSON string in DB
	ImagesJSON string    `json:"-" db:"images"` // For DB storage
	Active     bool      `json:"active" db:"active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Categories is the fixed category enumeration, in display order
var Categories = []string{
	"Eventos",
	"SAF",
	"Ensaios",
	"Visitas",
	"Clube do Livro",
	"Aniversariantes",
}

// ValidCategories defines the allowed post categories
var ValidCategories = map[string]bool{
	"Eventos":         true,
	"SAF":             true,
	"Ensaios":         true,
	"Visitas":         true,
	"Clube do Livro":  true,
	"Aniversariantes": true,
}

// CategoryAll is the list filter sentinel meaning "no category filter"
const CategoryAll = "all"

// PostRequest is the payload for POST /posts and PUT /posts/:id.
// Author is never taken from the client.
type PostRequest struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Date     string   `json:"date"`
	Images   []string `json:"images"`
}

// PlaceholderPost is the single synthetic post returned by list reads while
// the backing store is unreachable, so public pages keep rendering.
func PlaceholderPost(now time.Time) *Post {
	return &Post{
		ID:        "00000000-0000-0000-0000-000000000000",
		Title:     "Conteúdo temporariamente indisponível",
		Text:      "Estamos com uma instabilidade no momento. Tente novamente em alguns minutos.",
		Category:  "Eventos",
		EventDate: now,
		Author:    "Sistema",
		Images:    []string{},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
