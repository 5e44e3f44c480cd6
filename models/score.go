package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Score holds one point total per game for each side. Index i of P1 and P2 is game i.
type Score struct {
	P1 []int `json:"p1"`
	P2 []int `json:"p2"`
}

// Games returns the number of games recorded on the longer side.
func (s Score) Games() int {
	return max(len(s.P1), len(s.P2))
}

// Normalized pads the shorter sequence with zeros so both sides have equal length.
func (s Score) Normalized() Score {
	n := s.Games()
	out := Score{P1: make([]int, n), P2: make([]int, n)}
	copy(out.P1, s.P1)
	copy(out.P2, s.P2)
	return out
}

// IsZero reports whether no points were recorded at all.
func (s Score) IsZero() bool {
	for _, v := range s.P1 {
		if v != 0 {
			return false
		}
	}
	for _, v := range s.P2 {
		if v != 0 {
			return false
		}
	}
	return true
}

// Value stores the score as JSON text so it can be bound to a jsonb column.
func (s Score) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Score) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Score{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("score: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		return errors.New("score: empty value")
	}
	return json.Unmarshal(raw, s)
}
