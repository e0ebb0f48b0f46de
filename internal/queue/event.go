// Package queue defines message payloads exchanged over the message broker.
package queue

// AdoptionApprovedEvent is published after an adoption request is
// approved and its cascade committed. It carries enough denormalized
// data for downstream consumers to log or notify without querying the
// primary database.
type AdoptionApprovedEvent struct {
	RequestID     uint64 `json:"request_id"`
	UserID        uint64 `json:"user_id"`
	AnimalID      uint64 `json:"animal_id"`
	AnimalName    string `json:"animal_name"`
	AnimalType    string `json:"animal_type"`
	ShelterID     uint64 `json:"shelter_id"`
	ShelterName   string `json:"shelter_name"`
	CanceledCount int    `json:"canceled_count"`
	ApprovedAt    string `json:"approved_at"`
}
