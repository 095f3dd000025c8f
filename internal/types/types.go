package types

import (
	"time"
)

const (
	StatusOnline  = "Online"
	StatusOffline = "Offline"
)

type User struct {
	Id           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	ImageUrl     string    `json:"imageUrl,omitempty"`
	Status       string    `json:"status,omitempty"`
	LastActive   time.Time `json:"lastActive,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// UserProfile is the public projection of a User embedded in
// relayed group messages and board member lists.
type UserProfile struct {
	Id        string `json:"_id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	ImageUrl  string `json:"imageUrl,omitempty"`
}

func (u User) Profile() UserProfile {
	return UserProfile{
		Id:        u.Id,
		FirstName: u.FirstName,
		Email:     u.Email,
		ImageUrl:  u.ImageUrl,
	}
}

type Message struct {
	Id         string    `json:"id"`
	SenderId   string    `json:"senderId"`
	ReceiverId string    `json:"receiverId"`
	Text       string    `json:"text"`
	Read       bool      `json:"read"`
	Timestamp  time.Time `json:"timestamp"`
}

type GroupMessage struct {
	Id        string    `json:"id"`
	GroupId   string    `json:"groupId"`
	SenderId  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Board struct {
	Id          string        `json:"id"`
	Title       string        `json:"title"`
	Status      string        `json:"status"`
	OwnerId     string        `json:"ownerId"`
	Members     []UserProfile `json:"members"`
	Comments    []Comment     `json:"comments"`
	Attachments []Attachment  `json:"attachments"`
	CreatedAt   time.Time     `json:"created_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

type Comment struct {
	Id        string    `json:"id"`
	BoardId   string    `json:"boardId"`
	AuthorId  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Attachment struct {
	Id      string `json:"id"`
	BoardId string `json:"boardId"`
	Name    string `json:"name"`
	Url     string `json:"url"`
}
