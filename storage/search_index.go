package storage

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const previewWidth = 100

type SessionMessageMatch struct {
	SessionID    string
	SessionName  string
	MessageIndex int
	Role         string
	Preview      string
	Timestamp    time.Time
}

// SearchIndex does case-insensitive substring search over saved sessions.
type SearchIndex struct {
	storage *SessionStorage
}

func NewSearchIndex(storage *SessionStorage) *SearchIndex {
	return &SearchIndex{storage: storage}
}

// SearchAllSessions returns matching user and assistant messages across all
// sessions, newest session first. Tool results are not searched.
func (si *SearchIndex) SearchAllSessions(query string) ([]SessionMessageMatch, error) {
	if strings.TrimSpace(query) == "" {
		return []SessionMessageMatch{}, nil
	}

	sessionList, err := si.storage.List()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []SessionMessageMatch

	for _, meta := range sessionList {
		session, err := si.storage.Load(meta.ID)
		if err != nil {
			continue
		}

		for i, msg := range session.Messages {
			if msg.Role != "user" && msg.Role != "assistant" {
				continue
			}
			if !strings.Contains(strings.ToLower(msg.Content), queryLower) {
				continue
			}
			matches = append(matches, SessionMessageMatch{
				SessionID:    session.ID,
				SessionName:  session.Name,
				MessageIndex: i,
				Role:         msg.Role,
				Preview:      Preview(msg.Content, previewWidth),
				Timestamp:    msg.Timestamp,
			})
		}
	}

	return matches, nil
}

// Preview flattens content to one line and truncates it to width display
// cells, so wide runes never overflow a terminal column.
func Preview(content string, width int) string {
	flat := strings.Join(strings.Fields(content), " ")
	return runewidth.Truncate(flat, width, "...")
}
