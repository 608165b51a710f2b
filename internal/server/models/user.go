package models

type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	Salt         string
}
