package store

type CreateAccountParams struct {
	Email        string
	FirstName    string
	ImageUrl     string
	PasswordHash string
}

type CreateMessageParams struct {
	SenderId   string
	ReceiverId string
	Text       string
}

type CreateGroupMessageParams struct {
	GroupId  string
	SenderId string
	Content  string
}

type CreateBoardParams struct {
	Title     string
	Status    string
	OwnerId   string
	MemberIds []string
}
