package domain

import (
	"net/url"
	"strconv"
	"strings"

	dErrors "usersearch/pkg/domain-errors"
)

// maxUIDLength bounds identifiers accepted at trust boundaries.
const maxUIDLength = 2048

// UID identifies a local or federated identity.
//
// Local identities are positive base-10 integers; federated identities are
// http(s) actor URIs. Anything else is not a valid UID, but the type can still
// hold it so that corrupt index entries can be detected and dropped downstream.
type UID string

// LocalUID builds the UID of a local identity.
func LocalUID(n int64) UID {
	return UID(strconv.FormatInt(n, 10))
}

// ParseUID validates raw input as a UID.
func ParseUID(s string) (UID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "uid is required")
	}
	if len(s) > maxUIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "uid is too long")
	}
	u := UID(s)
	if !u.Valid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "uid must be a positive integer or an http(s) URI")
	}
	return u, nil
}

// Local returns the numeric id of a local identity.
func (u UID) Local() (int64, bool) {
	s := string(u)
	if s == "" || len(s) > 19 {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IsLocal reports whether u is a positive integer id.
func (u UID) IsLocal() bool {
	_, ok := u.Local()
	return ok
}

// IsURI reports whether u is an absolute http(s) URI.
func (u UID) IsURI() bool {
	return IsURI(string(u))
}

// Valid reports whether u is either a local id or an actor URI.
func (u UID) Valid() bool {
	return u.IsLocal() || u.IsURI()
}

// IsNil returns true if the UID is empty.
func (u UID) IsNil() bool {
	return u == ""
}

func (u UID) String() string {
	return string(u)
}

// MarshalJSON renders local ids as numbers and everything else as strings.
func (u UID) MarshalJSON() ([]byte, error) {
	if n, ok := u.Local(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return []byte(strconv.Quote(string(u))), nil
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (u *UID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		*u = UID(unquoted)
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "uid must be a number or a string")
	}
	*u = UID(s)
	return nil
}

// IsURI reports whether s parses as an absolute http or https URL with a host.
func IsURI(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// UIDStrings converts a slice of UIDs into raw strings.
func UIDStrings(uids []UID) []string {
	out := make([]string, len(uids))
	for i, u := range uids {
		out[i] = string(u)
	}
	return out
}
