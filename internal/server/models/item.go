package models

import "time"

// Item is a catalog entry owned by the user who created it.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	LargeImage  string    `json:"largeImage,omitempty"`
	Price       int64     `json:"price"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ItemUpdate carries the fields of a partial item update. Nil means unchanged.
type ItemUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	LargeImage  *string `json:"largeImage,omitempty"`
	Price       *int64  `json:"price,omitempty"`
}

// CartItem is one line of a user's cart.
type CartItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	ItemID   string `json:"itemId"`
	UserID   string `json:"userId"`
	Item     *Item  `json:"item,omitempty"`
}
