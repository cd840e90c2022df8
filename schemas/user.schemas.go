package schemas

import "strconv"

// UserInfo struct
type UserInfo struct {
	ID          int64   `json:"id" validate:"required"`
	Username    string  `json:"username" validate:"required"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	ImageID     *int64  `json:"image_id"`
}

// Name resolves what to show for the user: display name, then username, then a placeholder.
func (u UserInfo) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return Placeholder(u.ID)
}

// Placeholder is shown for a user whose info has not arrived yet.
func Placeholder(id int64) string {
	return "U" + strconv.FormatInt(id, 10)
}
