package dto

// SharingUpdateRequest is the JSON body for PUT /sharing.
type SharingUpdateRequest struct {
	ShareMode  string  `json:"share_mode" binding:"required,oneof=private public_view public_edit"`
	PublicSlug *string `json:"public_slug" binding:"omitempty,min=1,max=255"`
	EditToken  *string `json:"edit_token" binding:"omitempty,max=255"`
}

// SharingResponse echoes the stored sharing settings.
type SharingResponse struct {
	ShareMode  string  `json:"share_mode"`
	PublicSlug *string `json:"public_slug"`
	EditToken  *string `json:"edit_token"`
}
