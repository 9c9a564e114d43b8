package domain

import "encoding/json"

// SignalRequest is the payload of an inbound signal event. Data is relayed
// verbatim and never inspected.
type SignalRequest struct {
	To   string          `json:"to" validate:"required"`
	Data json.RawMessage `json:"data" validate:"truthy"`
}

// SignalDelivery is what the addressed connection receives.
type SignalDelivery struct {
	Data json.RawMessage `json:"data"`
	From string          `json:"from"`
}
