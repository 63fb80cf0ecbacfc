package ws

import (
	"fmt"

	"github.com/ignatzorin/directory-backend/internal/browser"
	"github.com/ignatzorin/directory-backend/internal/models"
)

// Типы сообщений от клиента.
const (
	CommandSetTab      = "set_tab"
	CommandSetSearch   = "set_search"
	CommandSetCategory = "set_category"
	CommandSetLocation = "set_location"
	CommandRefresh     = "refresh"
)

// Типы сообщений от сервера.
const (
	EventState = "directory.state"
	EventError = "error"
)

// Command сообщение клиента.
type Command struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Message сообщение сервера.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func errorMessage(text string) Message {
	return Message{Type: EventError, Data: map[string]string{"message": text}}
}

// Dispatch применяет команду клиента к сессии.
func Dispatch(s *browser.Session, cmd Command) error {
	switch cmd.Type {
	case CommandSetTab:
		domain, err := models.ParseDomain(cmd.Value)
		if err != nil {
			return err
		}
		s.SetTab(domain)
	case CommandSetSearch:
		s.SetSearchTerm(cmd.Value)
	case CommandSetCategory:
		s.SetCategory(models.ParseCategory(cmd.Value))
	case CommandSetLocation:
		id, err := models.ParseLocation(cmd.Value)
		if err != nil {
			return err
		}
		s.SetLocation(id)
	case CommandRefresh:
		s.Refresh()
	default:
		return fmt.Errorf("неизвестная команда %q", cmd.Type)
	}
	return nil
}
