package model

import (
	"github.com/pkg/errors"

	"github.com/oakwood-net/routeros-client/proto"
)

// activeUserRaw is the literal wire shape of /user/active/print and
// /user/active/listen replies: every field but .id and .dead is optional,
// because a logout event only carries an id.
type activeUserRaw struct {
	ID     string  `ros:".id"`
	Dead   bool    `ros:".dead"`
	When   *string `ros:"when"`
	Name   *string `ros:"name"`
	Addr   *string `ros:"address"`
	Via    *string `ros:"via"`
	Group  *string `ros:"group"`
	Radius *bool   `ros:"radius"`
}

// ActiveUser projects an activeUserRaw onto one of two shapes depending on
// the .dead flag: a bare logout event, or a fully populated login event.
// ID is set on both shapes; the remaining fields are meaningful only on a
// login event. Callers switch on IsDead.
type ActiveUser struct {
	IsDead bool

	// Set for both dead and active events.
	ID string

	// Active event fields, valid when !IsDead.
	When    string
	Name    string
	Address string
	Via     string
	Group   string
	Radius  bool
}

// DecodeActiveUser decodes a single /user/active reply sentence, applying
// the .dead-flag object-level polymorphism: a dead user carries only its
// id, a live one carries the full login record.
func DecodeActiveUser(s *proto.Sentence) (*ActiveUser, error) {
	var raw activeUserRaw
	if err := proto.Decode(s, &raw, false); err != nil {
		return nil, err
	}

	if raw.Dead {
		return &ActiveUser{IsDead: true, ID: raw.ID}, nil
	}

	missing := func(field string) error {
		return errors.Errorf("active user %s: missing field %q for a live session", raw.ID, field)
	}
	switch {
	case raw.When == nil:
		return nil, missing("when")
	case raw.Name == nil:
		return nil, missing("name")
	case raw.Addr == nil:
		return nil, missing("address")
	case raw.Via == nil:
		return nil, missing("via")
	case raw.Group == nil:
		return nil, missing("group")
	case raw.Radius == nil:
		return nil, missing("radius")
	}

	return &ActiveUser{
		ID:      raw.ID,
		When:    *raw.When,
		Name:    *raw.Name,
		Address: *raw.Addr,
		Via:     *raw.Via,
		Group:   *raw.Group,
		Radius:  *raw.Radius,
	}, nil
}
