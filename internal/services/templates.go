package services

import (
	"fmt"
)

// TemplateIntakeReminder asks an idle farmer to continue the intake. Its
// single variable is the pending question.
const TemplateIntakeReminder = "intake_reminder"

// TemplateSender delivers approved WhatsApp Content templates
type TemplateSender interface {
	SendWhatsAppTemplate(to string, contentSID string, contentVariables map[string]string) error
}

// TemplateConfig holds template configuration
type TemplateConfig struct {
	SID         string
	Description string
	Parameters  []string
}

// TemplateService handles WhatsApp template operations
type TemplateService struct {
	sender    TemplateSender
	templates map[string]TemplateConfig
}

// NewTemplateService creates a new template service. Templates with an empty
// Content SID are not registered.
func NewTemplateService(sender TemplateSender, reminderSID string) *TemplateService {
	ts := &TemplateService{
		sender:    sender,
		templates: map[string]TemplateConfig{},
	}
	if reminderSID != "" {
		ts.templates[TemplateIntakeReminder] = TemplateConfig{
			SID:         reminderSID,
			Description: "Reminder for an abandoned intake",
			Parameters:  []string{"question"},
		}
	}
	return ts
}

// Has reports whether a template is registered
func (ts *TemplateService) Has(templateName string) bool {
	if ts == nil {
		return false
	}
	_, ok := ts.templates[templateName]
	return ok
}

// SendTemplate sends a WhatsApp template with parameters
func (ts *TemplateService) SendTemplate(to string, templateName string, params map[string]string) error {
	template, exists := ts.templates[templateName]
	if !exists {
		return fmt.Errorf("template '%s' not found", templateName)
	}

	// Validate required parameters
	for _, requiredParam := range template.Parameters {
		if _, ok := params[requiredParam]; !ok {
			return fmt.Errorf("missing required parameter: %s", requiredParam)
		}
	}

	// Twilio uses {{1}}, {{2}}, etc.
	contentVariables := make(map[string]string, len(template.Parameters))
	for i, paramName := range template.Parameters {
		contentVariables[fmt.Sprintf("%d", i+1)] = params[paramName]
	}

	return ts.sender.SendWhatsAppTemplate(to, template.SID, contentVariables)
}
