package player

// User describes who is behind a connection.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	ClubID      string `json:"club_id,omitempty"` // question affinity key
	IsGuest     bool   `json:"is_guest"`
}

// Profile is the public view of a user shared with an opponent.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	ClubID      string `json:"club_id,omitempty"`
	IsGuest     bool   `json:"is_guest"`
}

// Profile returns the public part of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		ClubID:      u.ClubID,
		IsGuest:     u.IsGuest,
	}
}

// Ref binds a user to the connection they are playing on. Refs only live as
// long as a queue entry, room or match holds them.
type Ref struct {
	ConnID string
	User   User
}
