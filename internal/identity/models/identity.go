// Package models defines identity records as the search pipeline reads them.
// The records are owned by the identity store; nothing here writes them.
package models

import (
	"math"
	"strconv"

	id "usersearch/pkg/domain"
)

// Identity is a hydrated local or federated user record.
type Identity struct {
	UID            id.UID `json:"uid"`
	Username       string `json:"username"`
	Userslug       string `json:"userslug"`
	Fullname       string `json:"fullname,omitempty"`
	Nickname       string `json:"nickname,omitempty"`
	Picture        string `json:"picture,omitempty"`
	Status         string `json:"status"`
	LastOnline     int64  `json:"lastonline"`
	JoinDate       int64  `json:"joindate"`
	PostCount      int64  `json:"postcount"`
	Reputation     int64  `json:"reputation"`
	Flags          int64  `json:"flags"`
	EmailConfirmed bool   `json:"email:confirmed"`

	// IsBlocked is set only when the requester has a non-empty block list.
	IsBlocked *bool `json:"isBlocked,omitempty"`
}

// Field names a stored identity attribute.
type Field string

const (
	FieldUID            Field = "uid"
	FieldUsername       Field = "username"
	FieldUserslug       Field = "userslug"
	FieldFullname       Field = "fullname"
	FieldNickname       Field = "nickname"
	FieldPicture        Field = "picture"
	FieldStatus         Field = "status"
	FieldLastOnline     Field = "lastonline"
	FieldJoinDate       Field = "joindate"
	FieldPostCount      Field = "postcount"
	FieldReputation     Field = "reputation"
	FieldFlags          Field = "flags"
	FieldEmailConfirmed Field = "email:confirmed"
)

// AllFields lists every field a full record carries, in hash order.
var AllFields = []Field{
	FieldUID, FieldUsername, FieldUserslug, FieldFullname, FieldNickname, FieldPicture,
	FieldStatus, FieldLastOnline, FieldJoinDate, FieldPostCount, FieldReputation,
	FieldFlags, FieldEmailConfirmed,
}

var sortable = map[Field]struct{}{
	FieldUID: {}, FieldUsername: {}, FieldUserslug: {}, FieldFullname: {}, FieldNickname: {},
	FieldStatus: {}, FieldLastOnline: {}, FieldJoinDate: {}, FieldPostCount: {},
	FieldReputation: {}, FieldFlags: {}, FieldEmailConfirmed: {},
}

// Sortable reports whether results may be ordered by f.
func (f Field) Sortable() bool {
	_, ok := sortable[f]
	return ok
}

// Value returns the stored string form of f.
func (i *Identity) Value(f Field) string {
	switch f {
	case FieldUID:
		return i.UID.String()
	case FieldUsername:
		return i.Username
	case FieldUserslug:
		return i.Userslug
	case FieldFullname:
		return i.Fullname
	case FieldNickname:
		return i.Nickname
	case FieldPicture:
		return i.Picture
	case FieldStatus:
		return i.Status
	case FieldLastOnline:
		return strconv.FormatInt(i.LastOnline, 10)
	case FieldJoinDate:
		return strconv.FormatInt(i.JoinDate, 10)
	case FieldPostCount:
		return strconv.FormatInt(i.PostCount, 10)
	case FieldReputation:
		return strconv.FormatInt(i.Reputation, 10)
	case FieldFlags:
		return strconv.FormatInt(i.Flags, 10)
	case FieldEmailConfirmed:
		if i.EmailConfirmed {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

// FromFields builds an Identity from a stored field map (a Redis hash or a
// Postgres row rendered as strings). Unparseable numbers read as zero.
func FromFields(uid id.UID, fields map[string]string) *Identity {
	return &Identity{
		UID:            uid,
		Username:       fields[string(FieldUsername)],
		Userslug:       fields[string(FieldUserslug)],
		Fullname:       fields[string(FieldFullname)],
		Nickname:       fields[string(FieldNickname)],
		Picture:        fields[string(FieldPicture)],
		Status:         statusOrDefault(fields[string(FieldStatus)]),
		LastOnline:     parseInt(fields[string(FieldLastOnline)]),
		JoinDate:       parseInt(fields[string(FieldJoinDate)]),
		PostCount:      parseInt(fields[string(FieldPostCount)]),
		Reputation:     parseInt(fields[string(FieldReputation)]),
		Flags:          parseInt(fields[string(FieldFlags)]),
		EmailConfirmed: Truthy(fields[string(FieldEmailConfirmed)]),
	}
}

// Fields renders the record as a stored field map.
func (i *Identity) Fields() map[string]string {
	out := make(map[string]string, len(AllFields))
	for _, f := range AllFields {
		out[string(f)] = i.Value(f)
	}
	return out
}

// Partial is a record hydrated with only the requested fields.
type Partial struct {
	UID    id.UID
	Fields map[Field]string
}

// Value returns the raw value of f, or "" when absent.
func (p *Partial) Value(f Field) string {
	if p == nil || p.Fields == nil {
		return ""
	}
	return p.Fields[f]
}

// Number parses f as a number. ok is false when the value is not numeric.
func (p *Partial) Number(f Field) (float64, bool) {
	return ParseNumber(p.Value(f))
}

// Project copies the requested fields of a full record into a Partial.
func Project(i *Identity, fields []Field) *Partial {
	p := &Partial{UID: i.UID, Fields: make(map[Field]string, len(fields))}
	for _, f := range fields {
		p.Fields[f] = i.Value(f)
	}
	return p
}

// ParseNumber reports whether s is a finite decimal number.
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Truthy mirrors how stored flags are written: "1"/"true" are set, anything
// else (including absent) is not.
func Truthy(s string) bool {
	switch s {
	case "1", "true", "TRUE", "True":
		return true
	default:
		return false
	}
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func statusOrDefault(s string) string {
	if s == "" {
		return "online"
	}
	return s
}
