package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReminderRoute binds an inbound webhook path to a single-placeholder template.
type ReminderRoute struct {
	Path     string `yaml:"path"`
	Template string `yaml:"template"`
}

// reservedPaths are served by the order pipeline and cannot be reminders.
var reservedPaths = map[string]bool{
	"/webhook/pedido":           true,
	"/webhook/pedido_concluido": true,
}

// DefaultReminders is the built-in reminder table.
func DefaultReminders() []ReminderRoute {
	return []ReminderRoute{
		{Path: "/webhook/lembrete_27_dias", Template: "lembrete_vencimento_3_dias"}, // 3 days before expiry
		{Path: "/webhook/expira_hoje", Template: "aviso_expiracao_hoje"},
		{Path: "/webhook/lembrete_35_dias", Template: "lembrete_pos_vencimento_35_dias"},
		{Path: "/webhook/lembrete_40_dias", Template: "cupom_desconto_40_dias"},
		{Path: "/webhook/lembrete_57_dias", Template: "lembrete_pos_vencimento_57_dias"},
		{Path: "/webhook/lembrete_60_dias", Template: "cupom_desconto_60_dias"},
	}
}

// LoadReminders reads a reminder table from a YAML file of the form:
//
//	reminders:
//	  - path: /webhook/expira_hoje
//	    template: aviso_expiracao_hoje
func LoadReminders(path string) ([]ReminderRoute, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reminders file: %w", err)
	}

	var doc struct {
		Reminders []ReminderRoute `yaml:"reminders"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse reminders file: %w", err)
	}
	if len(doc.Reminders) == 0 {
		return nil, errors.New("reminders file declares no reminders")
	}

	for i := range doc.Reminders {
		doc.Reminders[i].Path = strings.TrimSpace(doc.Reminders[i].Path)
		doc.Reminders[i].Template = strings.TrimSpace(doc.Reminders[i].Template)
	}
	return doc.Reminders, nil
}

// validateReminders checks every route is a distinct, non-reserved /webhook/ path with a template.
func validateReminders(routes []ReminderRoute) error {
	var problems []string
	seen := make(map[string]bool, len(routes))

	for i, r := range routes {
		switch {
		case !strings.HasPrefix(r.Path, "/webhook/") || len(r.Path) == len("/webhook/"):
			problems = append(problems, fmt.Sprintf("reminder %d: path must be /webhook/<name>", i+1))
		case reservedPaths[r.Path]:
			problems = append(problems, fmt.Sprintf("reminder %d: path %s is reserved", i+1, r.Path))
		case seen[r.Path]:
			problems = append(problems, fmt.Sprintf("reminder %d: duplicate path %s", i+1, r.Path))
		}
		seen[r.Path] = true

		if r.Template == "" {
			problems = append(problems, fmt.Sprintf("reminder %d: template is required", i+1))
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
