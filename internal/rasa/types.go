package rasa

import "encoding/json"

// Fragment is one element of a multi-part Rasa reply.
type Fragment struct {
	Text    string           `json:"text"`
	Buttons []FragmentButton `json:"buttons"`
	Custom  *CustomPayload   `json:"custom"`
	Image   string           `json:"image"`
}

// FragmentButton is a quick-reply button as Rasa emits it.
type FragmentButton struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// CustomPayload is a channel-specific structured response passed through to
// the platform untouched.
type CustomPayload struct {
	Type     string          `json:"type"`
	Elements json.RawMessage `json:"elements"`
}

// Button is a normalized outbound button.
type Button struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Reply is the normalized form of a Rasa response, whatever shape it arrived
// in.
type Reply struct {
	Text    string
	Buttons []Button
	Custom  *CustomPayload
	Image   []byte
}

// IsEmpty reports whether the reply carries nothing worth posting. The bot
// returns such replies while it has not matched an intent yet.
func (r Reply) IsEmpty() bool {
	return r.Text == "" && len(r.Buttons) == 0 && r.Custom == nil && len(r.Image) == 0
}
