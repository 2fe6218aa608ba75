package dto

import "github.com/google/uuid"

type BlockUserRequest struct {
	BlockedID uuid.UUID `json:"blocked_id"`
	Reason    string    `json:"reason"`
}

type ReportRideRequest struct {
	Reason string `json:"reason"`
}

type ReportMessageRequest struct {
	Reason string `json:"reason"`
}

type ActionReportRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
	// When true and the report targets a ride or message, actioning also
	// sets the global hidden flag on the content row.
	HideContent bool `json:"hide_content"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}
