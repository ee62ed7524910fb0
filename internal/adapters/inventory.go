package adapters

import "github.com/irgordon/kari-preview/internal/core/domain"

// ruleDocument is the wire and file shape of a listener rule inventory:
//
//	rules:
//	  - priority: 23590
//	    host: pr-1.preview.example.com
type ruleDocument struct {
	Rules []domain.ListenerRule `json:"rules" yaml:"rules"`
}
