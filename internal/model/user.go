package model

// User is the single persisted entity: an email address and the opaque
// one-way hash of the user's password. Email is the primary key, so the
// database itself guarantees at most one record per address.
type User struct {
	Email        string `json:"email" gorm:"primaryKey;size:255"`
	PasswordHash string `json:"password_hash" gorm:"size:255;not null"`
}
