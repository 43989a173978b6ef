package event

import (
	"encoding/json"
	"time"
)

// Type classifies a visitor event.
type Type int

const (
	Pageview Type = iota
	Click
	SessionEnd
)

var typeNames = map[Type]string{
	Pageview:   "pageview",
	Click:      "click",
	SessionEnd: "session_end",
}

var typeFromName = map[string]Type{
	"pageview":    Pageview,
	"click":       Click,
	"session_end": SessionEnd,
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseType maps a wire-format type string onto a Type. The second return
// value is false for anything outside the closed pageview/click/session_end set.
func ParseType(s string) (Type, bool) {
	t, ok := typeFromName[s]
	return t, ok
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, ok := typeFromName[s]; ok {
		*t = v
	}
	return nil
}

// VisitorEvent is a single reported visitor action. Events are immutable once
// created: the log owns them and every other component only reads them.
type VisitorEvent struct {
	ID        string            `json:"id"`
	Type      Type              `json:"type"`
	Country   string            `json:"country"`
	Page      string            `json:"page"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	SessionID string            `json:"sessionId"`
}
