package domain

import "fmt"

// Mode decides whether mutations reach the server or stay local.
type Mode int

const (
	Online Mode = iota
	Offline
)

func (m Mode) String() string {
	switch m {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "online":
		return Online, nil
	case "offline":
		return Offline, nil
	default:
		return Online, fmt.Errorf("unknown mode %q", s)
	}
}
