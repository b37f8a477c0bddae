package ws

import "strconv"

// UserChannel is the private feed of one owner's live connections.
func UserChannel(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// CalendarChannel is the public feed of a shared calendar.
func CalendarChannel(slug string) string {
	return "calendar:" + slug
}
