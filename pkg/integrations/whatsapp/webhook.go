package whatsapp

// WebhookPayload mirrors the Meta Cloud API webhook envelope for inbound
// messages and status updates.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         WebhookMetadata  `json:"metadata"`
	Contacts         []WebhookContact `json:"contacts,omitempty"`
	Messages         []WebhookMessage `json:"messages,omitempty"`
}

type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookContact struct {
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
	WaID string `json:"wa_id"`
}

type WebhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
}

// InboundMessage is a flattened inbound text message extracted from a webhook
// payload.
type InboundMessage struct {
	MessageID   string
	From        string
	ProfileName string
	Body        string
	Timestamp   string
}

// InboundMessages flattens the webhook envelope into the text messages it
// carries. Non-message changes and non-text messages are ignored.
func (p *WebhookPayload) InboundMessages() []InboundMessage {
	var inbound []InboundMessage

	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}

			names := make(map[string]string, len(change.Value.Contacts))
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}

			for _, msg := range change.Value.Messages {
				if msg.Type != "text" {
					continue
				}

				inbound = append(inbound, InboundMessage{
					MessageID:   msg.ID,
					From:        msg.From,
					ProfileName: names[msg.From],
					Body:        msg.Text.Body,
					Timestamp:   msg.Timestamp,
				})
			}
		}
	}

	return inbound
}
