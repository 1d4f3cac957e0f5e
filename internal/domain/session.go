package domain

import "time"

// Session representa una sesion de login. El ID es el hash SHA-256 en hex del
// token opaco que viaja en la cookie; el token crudo nunca se persiste.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
