/*
messages.go - Response flavor lines for morning clock-ins

PURPOSE:
  The AM IN response gets a random line matched to the classification
  bucket (morning person / late / normal), loaded from a JSON file shaped:

    {"morning_person": [...], "normal": [...], "late": [...]}

  A missing or unreadable file degrades to no flavor line at all; flavor
  is decoration, never a failure.
*/
package api

import (
	"encoding/json"
	"math/rand"
	"os"
	"sync"

	"github.com/hawks/dtr-engine/dtr"
)

// Messages holds the flavor lines per classification bucket.
type Messages struct {
	mu      sync.Mutex
	buckets map[dtr.Classification][]string
}

type messagesFile struct {
	MorningPerson []string `json:"morning_person"`
	Normal        []string `json:"normal"`
	Late          []string `json:"late"`
}

// LoadMessages reads the flavor file. Any error yields an empty set.
func LoadMessages(path string) *Messages {
	m := &Messages{buckets: make(map[dtr.Classification][]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		return m
	}
	var f messagesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return m
	}
	m.buckets[dtr.MorningPerson] = f.MorningPerson
	m.buckets[dtr.OnTime] = f.Normal
	m.buckets[dtr.Late] = f.Late
	return m
}

// Pick returns a random line for the bucket, or "" when it is empty.
func (m *Messages) Pick(c dtr.Classification) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.buckets[c]
	if len(lines) == 0 {
		return ""
	}
	return lines[rand.Intn(len(lines))]
}
