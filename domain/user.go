package domain

import "time"

type User struct {
	Id        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type Playlist struct {
	Id        string    `json:"id"`
	OwnerId   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Songs     []Song    `json:"songs"`
	CreatedAt time.Time `json:"createdAt"`
}
