package domain

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// Kind names an entity type addressable by a Key.
type Kind string

const (
	KindProfile    Kind = "Profile"
	KindConference Kind = "Conference"
	KindSession    Kind = "Session"
	KindSpeaker    Kind = "Speaker"
)

func (k Kind) valid() bool {
	switch k {
	case KindProfile, KindConference, KindSession, KindSpeaker:
		return true
	}
	return false
}

var keyEncoding = base64.RawURLEncoding.Strict()

// Key is the store identity of an entity: its kind, its id and the key of its parent.
// A Session id is only unique within its Conference, so the parent is part of the identity.
type Key struct {
	Kind   Kind
	ID     string
	Parent *Key
}

// NewKey returns a key of the given kind and id under parent (which may be nil).
func NewKey(kind Kind, id string, parent *Key) *Key {
	return &Key{Kind: kind, ID: id, Parent: parent}
}

// ProfileKey returns the key of the profile owned by userID.
func ProfileKey(userID string) *Key {
	return NewKey(KindProfile, userID, nil)
}

// Encode returns the websafe form of the key.
func (k *Key) Encode() string {
	var segments []string
	for cur := k; cur != nil; cur = cur.Parent {
		segments = append(segments, string(cur.Kind)+"/"+url.QueryEscape(cur.ID))
	}
	// outermost ancestor first
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return keyEncoding.EncodeToString([]byte(strings.Join(segments, "|")))
}

func (k *Key) String() string {
	return k.Encode()
}

// Equal reports whether both keys name the same entity.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.Kind == other.Kind && k.ID == other.ID && k.Parent.Equal(other.Parent)
}

// DecodeKey parses a websafe key produced by Encode.
func DecodeKey(websafe string) (*Key, error) {
	if websafe == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidInput)
	}
	raw, err := keyEncoding.DecodeString(websafe)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed key", ErrInvalidInput)
	}
	var key *Key
	for _, segment := range strings.Split(string(raw), "|") {
		kind, escaped, ok := strings.Cut(segment, "/")
		if !ok || !Kind(kind).valid() {
			return nil, fmt.Errorf("%w: malformed key", ErrInvalidInput)
		}
		id, err := url.QueryUnescape(escaped)
		if err != nil || id == "" {
			return nil, fmt.Errorf("%w: malformed key", ErrInvalidInput)
		}
		key = NewKey(Kind(kind), id, key)
	}
	return key, nil
}

// DecodeKeyOfKind parses a websafe key and checks that it names an entity of the given kind.
func DecodeKeyOfKind(websafe string, kind Kind) (*Key, error) {
	key, err := DecodeKey(websafe)
	if err != nil {
		return nil, err
	}
	if key.Kind != kind {
		return nil, fmt.Errorf("%w: key is not a %s key", ErrInvalidInput, kind)
	}
	return key, nil
}
