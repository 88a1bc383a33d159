package contracts

// LanguagePTBR is the only template language the relay sends.
const LanguagePTBR = "pt_BR"

// TemplateMessage is the Graph API body for a WhatsApp Business template message.
type TemplateMessage struct {
	MessagingProduct string   `json:"messaging_product"` // always "whatsapp"
	To               string   `json:"to"`
	Type             string   `json:"type"` // always "template"
	Template         Template `json:"template"`
}

// Template names a pre-approved template and fills its placeholders.
type Template struct {
	Name       string      `json:"name"`
	Language   Language    `json:"language"`
	Components []Component `json:"components"`
}

type Language struct {
	Code string `json:"code"`
}

// Component carries positional parameters for one template section ("body").
type Component struct {
	Type       string      `json:"type"`
	Parameters []Parameter `json:"parameters"`
}

type Parameter struct {
	Type string `json:"type"` // "text"
	Text string `json:"text"`
}

// NewTemplateMessage builds a pt_BR template message whose body placeholders are bound,
// in order, to params.
func NewTemplateMessage(to, templateName string, params []string) TemplateMessage {
	parameters := make([]Parameter, len(params))
	for i, p := range params {
		parameters[i] = Parameter{Type: "text", Text: p}
	}

	return TemplateMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: Template{
			Name:     templateName,
			Language: Language{Code: LanguagePTBR},
			Components: []Component{
				{Type: "body", Parameters: parameters},
			},
		},
	}
}

// SendResponse is the subset of the Graph API reply the relay logs.
type SendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// OrderCompletedNotification is posted to the email automation webhook.
type OrderCompletedNotification struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	ActivationCode string `json:"activation_code"`
}
