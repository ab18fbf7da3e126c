package session

// AmountRequest carries the raw source amount text. An empty text clears
// the amount.
type AmountRequest struct {
	Text string `json:"text" validate:"max=64"`
}

// SelectRequest names the asset to put into a slot.
type SelectRequest struct {
	Symbol string `json:"symbol" validate:"required,max=32"`
}
