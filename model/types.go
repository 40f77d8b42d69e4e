package model

import (
	"database/sql"
	"database/sql/driver"
	"strings"
	"time"
)

// NullTime - an alias for sql.NullTime data type
type NullTime sql.NullTime

// Scan implements the Scanner interface for NullTime
func (nt *NullTime) Scan(value interface{}) error {
	var t sql.NullTime
	if err := t.Scan(value); err != nil {
		return err
	}
	*nt = NullTime{t.Time, t.Valid}
	return nil
}

// Value implements the Valuer interface for NullTime
func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return driver.Value(nil), nil
	}
	return driver.Value(nt.Time), nil
}

// MarshalJSON for NullTime
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return []byte("\"" + nt.Time.Format(time.RFC3339) + "\""), nil
}

// UnmarshalJSON for NullTime
func (nt *NullTime) UnmarshalJSON(b []byte) error {
	s := strings.ReplaceAll(string(b), "\"", "")
	if s == "null" {
		nt.Valid = false
		return nil
	}

	x, err := time.Parse(time.RFC3339, s)
	if err != nil {
		nt.Valid = false
		return err
	}

	nt.Time = x
	nt.Valid = true
	return nil
}

// NullString - an alias for sql.NullString data type
type NullString sql.NullString

// Scan implements the Scanner interface for NullString
func (ns *NullString) Scan(value interface{}) error {
	var s sql.NullString
	if err := s.Scan(value); err != nil {
		return err
	}
	*ns = NullString{s.String, s.Valid}
	return nil
}

// Value implements the Valuer interface for NullString
func (ns NullString) Value() (driver.Value, error) {
	if !ns.Valid {
		return driver.Value(nil), nil
	}
	return driver.Value(ns.String), nil
}

// MarshalJSON for NullString
func (ns NullString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return []byte("\"" + ns.String + "\""), nil
}

// UnmarshalJSON for NullString
func (ns *NullString) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		ns.Valid = false
		return nil
	}
	ns.String = strings.Trim(s, "\"")
	ns.Valid = true
	return nil
}
