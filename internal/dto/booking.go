package dto

// BookAppointmentRequest books one slot for the signed-in user.
type BookAppointmentRequest struct {
	SlotID string  `json:"slotId" form:"slotId" validate:"required,uuid"`
	Notes  *string `json:"notes" form:"notes" validate:"omitempty,max=500"`
}

// GenerateSlotsRequest asks for a week of slots starting at Date (YYYY-MM-DD).
type GenerateSlotsRequest struct {
	Date string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
}

// MutationResponse reports a completed store mutation together with the resynced state.
// Error carries a failed re-fetch; the mutation itself still succeeded.
type MutationResponse struct {
	Status   string  `json:"status"`
	Error    *string `json:"error,omitempty"`
	Version  uint64  `json:"version"`
	Redirect string  `json:"redirect,omitempty"`
}

// GenerateSlotsResponse summarises a bulk slot generation.
type GenerateSlotsResponse struct {
	Created int      `json:"created"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Error   *string  `json:"error,omitempty"`
	Days    []string `json:"days"`
}
