package models

type IntentAction string

const (
	ActionAddOrder        IntentAction = "ADD_ORDER"
	ActionCheckout        IntentAction = "CHECKOUT"
	ActionNavigateBooking IntentAction = "NAVIGATE_BOOKING"
	ActionNone            IntentAction = "NONE"
)

func (a IntentAction) Valid() bool {
	switch a {
	case ActionAddOrder, ActionCheckout, ActionNavigateBooking, ActionNone:
		return true
	}
	return false
}

type IntentLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Intent is the structured result of parsing one customer utterance.
type Intent struct {
	Response        string       `json:"response"`
	Action          IntentAction `json:"action"`
	Orders          []IntentLine `json:"orders,omitempty"`
	People          int          `json:"people,omitempty"`
	Time            string       `json:"time,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
}
